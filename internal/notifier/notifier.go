package notifier

import "context"

// Notifier is the best-effort event fan-out. Calls are made after the ledger
// unit of work commits; a returned error is logged by the caller and never
// propagated, so a broken notifier can never fail a ledger mutation.
type Notifier interface {
	TransactionCreated(ctx context.Context, txID string, amount float64, txType, fromUserID, toUserID string) error
	TransactionUpdated(ctx context.Context, txID string, userIDs []string) error
	TransactionAccepted(ctx context.Context, txID, senderID, receiverID string) error
	TransactionRejected(ctx context.Context, txID, senderID, receiverID string) error
	TransactionSettled(ctx context.Context, txID string, userIDs []string) error
	FriendOnline(ctx context.Context, friendIDs []string, userID string) error
	FriendOffline(ctx context.Context, friendIDs []string, userID string) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) TransactionCreated(context.Context, string, float64, string, string, string) error {
	return nil
}
func (Nop) TransactionUpdated(context.Context, string, []string) error    { return nil }
func (Nop) TransactionAccepted(context.Context, string, string, string) error { return nil }
func (Nop) TransactionRejected(context.Context, string, string, string) error { return nil }
func (Nop) TransactionSettled(context.Context, string, []string) error    { return nil }
func (Nop) FriendOnline(context.Context, []string, string) error          { return nil }
func (Nop) FriendOffline(context.Context, []string, string) error         { return nil }
