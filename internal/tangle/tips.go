package tangle

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Ssnowzx/Wallet-0201N/internal/models"
)

// MaxTips is the number of references a new transaction tries to collect.
const MaxTips = 2

// AddressClassifier reports whether an address belongs to the synthetic
// namespace used by pool replenishment.
type AddressClassifier func(address string) bool

// Selector chooses which pending transactions a new transaction references.
// Implementations must be pure: no store access, no mutation of pool.
type Selector interface {
	// SelectTips returns 0 to MaxTips distinct IDs, each present in pool.
	// An empty or fully confirmed pool yields an empty result, never an
	// error.
	SelectTips(pool []models.Transaction) []string
}

// PrioritySelector picks tips uniformly at random without replacement,
// preferring transactions sent from real addresses over synthetic ones.
// Synthetic tips are only used to fill slots the real class cannot.
type PrioritySelector struct {
	isSynthetic AddressClassifier

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPrioritySelector(isSynthetic AddressClassifier) *PrioritySelector {
	return &PrioritySelector{
		isSynthetic: isSynthetic,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *PrioritySelector) SelectTips(pool []models.Transaction) []string {
	pending := Pending(pool)
	if len(pending) == 0 {
		return []string{}
	}

	var real, synthetic []string
	for _, tx := range pending {
		if s.isSynthetic(tx.From) {
			synthetic = append(synthetic, tx.ID)
		} else {
			real = append(real, tx.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle(real)
	s.shuffle(synthetic)

	selected := make([]string, 0, MaxTips)
	for _, class := range [][]string{real, synthetic} {
		for _, id := range class {
			if len(selected) == MaxTips {
				return selected
			}
			selected = append(selected, id)
		}
	}
	// Fewer than MaxTips candidates existed; a sparse reference list is
	// preferred over recycling the same tip twice.
	return selected
}

func (s *PrioritySelector) shuffle(ids []string) {
	s.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
