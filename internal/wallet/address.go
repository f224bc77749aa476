package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// SyntheticAddressPrefix marks addresses owned by no account; transactions
// sent from such an address were injected by pool replenishment.
const SyntheticAddressPrefix = "dummy_address_"

// IsSyntheticAddress classifies an address by prefix. It is the default
// tangle.AddressClassifier.
func IsSyntheticAddress(address string) bool {
	return strings.HasPrefix(address, SyntheticAddressPrefix)
}

// NewSyntheticAddress generates a fresh address in the synthetic namespace.
func NewSyntheticAddress() string {
	return SyntheticAddressPrefix + randomHex(9)
}

// NewAccountAddress generates an address for a registered account.
func NewAccountAddress() string {
	return "addr_" + randomHex(16)
}

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// the system entropy source is gone; nothing sensible to do
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}
