package services

import "lendbook/internal/models"

// The directional balance rule lives here and nowhere else.
//
// ApplyBalanceDelta credits the running sums of both participants for an
// applied transaction and recomputes both net balances. With type "lent" the
// sender is the creditor; with type "borrowed" the receiver is. The sums only
// ever grow; settlements offset them by growing the opposite side.
func ApplyBalanceDelta(sender, receiver *models.User, txType models.TransactionType, amount float64) {
	if txType == models.TransactionTypeLent {
		sender.TotalLent += amount
		receiver.TotalBorrowed += amount
	} else {
		sender.TotalBorrowed += amount
		receiver.TotalLent += amount
	}
	sender.RecalculateBalance()
	receiver.RecalculateBalance()
}

// SettlementType decides how a settlement initiated by a user is recorded,
// from the sign of that user's overall net balance. Negative means the user
// owes and is paying down (recorded as the user lending); otherwise the user
// is being paid back (recorded as the user borrowing).
//
// Note this reads the caller's aggregate balance, not the bilateral position
// against the specific counterparty. Debts with third parties therefore skew
// the direction. That is how the system has always behaved and callers depend
// on it; confirm intent before changing.
func SettlementType(netBalance float64) models.TransactionType {
	if netBalance < 0 {
		return models.TransactionTypeLent
	}
	return models.TransactionTypeBorrowed
}
