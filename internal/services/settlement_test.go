package services

import (
	"testing"

	"lendbook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSettlementType(t *testing.T) {
	tests := []struct {
		name       string
		netBalance float64
		want       models.TransactionType
	}{
		{"debtor pays down", -100, models.TransactionTypeLent},
		{"barely negative", -0.01, models.TransactionTypeLent},
		{"creditor is repaid", 100, models.TransactionTypeBorrowed},
		{"zero counts as non-negative", 0, models.TransactionTypeBorrowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SettlementType(tt.netBalance))
		})
	}
}

func TestApplyBalanceDelta(t *testing.T) {
	t.Run("lent credits the sender", func(t *testing.T) {
		sender := &models.User{ID: "a"}
		receiver := &models.User{ID: "b"}

		ApplyBalanceDelta(sender, receiver, models.TransactionTypeLent, 75)

		assert.Equal(t, 75.0, sender.TotalLent)
		assert.Equal(t, 75.0, sender.NetBalance)
		assert.Equal(t, 75.0, receiver.TotalBorrowed)
		assert.Equal(t, -75.0, receiver.NetBalance)
	})

	t.Run("borrowed credits the receiver", func(t *testing.T) {
		sender := &models.User{ID: "a"}
		receiver := &models.User{ID: "b"}

		ApplyBalanceDelta(sender, receiver, models.TransactionTypeBorrowed, 75)

		assert.Equal(t, 75.0, sender.TotalBorrowed)
		assert.Equal(t, -75.0, sender.NetBalance)
		assert.Equal(t, 75.0, receiver.TotalLent)
		assert.Equal(t, 75.0, receiver.NetBalance)
	})

	t.Run("sums only ever grow", func(t *testing.T) {
		sender := &models.User{ID: "a", TotalLent: 50, TotalBorrowed: 20}
		receiver := &models.User{ID: "b", TotalLent: 20, TotalBorrowed: 50}

		ApplyBalanceDelta(sender, receiver, models.TransactionTypeLent, 10)

		assert.Equal(t, 60.0, sender.TotalLent)
		assert.Equal(t, 20.0, sender.TotalBorrowed)
		assert.Equal(t, 40.0, sender.NetBalance)
		assert.Equal(t, 60.0, receiver.TotalBorrowed)
		assert.Equal(t, -40.0, receiver.NetBalance)
	})
}
