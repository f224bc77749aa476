package tangle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ssnowzx/Wallet-0201N/internal/models"
)

func TestIsConfirmed(t *testing.T) {
	assert.False(t, IsConfirmed(models.Transaction{ID: "a"}))
	assert.False(t, IsConfirmed(models.Transaction{ID: "a", ValidatedBy: []string{"b"}}))
	assert.True(t, IsConfirmed(models.Transaction{ID: "a", ValidatedBy: []string{"b", "c"}}))
	assert.True(t, IsConfirmed(models.Transaction{ID: "a", ValidatedBy: []string{"b", "c", "d"}}))
}

func TestPendingFiltersConfirmed(t *testing.T) {
	pool := []models.Transaction{
		{ID: "a"},
		{ID: "b", ValidatedBy: []string{"x", "y"}},
		{ID: "c", ValidatedBy: []string{"x"}},
	}

	pending := Pending(pool)

	assert.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "c", pending[1].ID)
}

func TestPendingEmptyPool(t *testing.T) {
	assert.Empty(t, Pending(nil))
	assert.Empty(t, Pending([]models.Transaction{}))
}
