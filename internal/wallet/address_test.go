package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntheticAddressClassification(t *testing.T) {
	addr := NewSyntheticAddress()

	assert.True(t, IsSyntheticAddress(addr))
	assert.Len(t, addr, len(SyntheticAddressPrefix)+9)
	assert.NotEqual(t, addr, NewSyntheticAddress())
}

func TestAccountAddressIsNotSynthetic(t *testing.T) {
	addr := NewAccountAddress()

	assert.False(t, IsSyntheticAddress(addr))
	assert.Len(t, addr, len("addr_")+16)
	assert.NotEqual(t, addr, NewAccountAddress())
}
