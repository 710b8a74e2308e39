package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeLent     TransactionType = "lent"
	TransactionTypeBorrowed TransactionType = "borrowed"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusAccepted  TransactionStatus = "accepted"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

type Transaction struct {
	ID         string            `json:"id"`
	SenderID   string            `json:"sender_id"`
	ReceiverID string            `json:"receiver_id"`
	Amount     float64           `json:"amount"`
	Type       TransactionType   `json:"type"`
	Status     TransactionStatus `json:"status"`
	Remarks    string            `json:"remarks,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewTransaction stamps id, timestamps and the initial status explicitly,
// so every field is final before the row is handed to a store.
func NewTransaction(senderID, receiverID string, amount float64, txType TransactionType, remarks string) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Type:       txType,
		Status:     TransactionStatusPending,
		Remarks:    remarks,
		Timestamp:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch bumps UpdatedAt. Called at every mutation site; CreatedAt never changes.
func (t *Transaction) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

func (t *Transaction) IsParticipant(userID string) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}

// CanTransitionTo is the legality table of the status state machine:
// pending -> accepted | rejected; accepted -> completed | failed.
// Completed, failed and rejected are terminal.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	switch t.Status {
	case TransactionStatusPending:
		return next == TransactionStatusAccepted || next == TransactionStatusRejected
	case TransactionStatusAccepted:
		return next == TransactionStatusCompleted || next == TransactionStatusFailed
	default:
		return false
	}
}

// Deletable reports whether the row may be removed outright. Only statuses
// that never touched balances qualify.
func (t *Transaction) Deletable() bool {
	return t.Status == TransactionStatusPending || t.Status == TransactionStatusRejected
}

// TypeForUser flips the stored type to the given participant's perspective:
// the sender sees the type as recorded, the receiver sees the opposite.
func (t *Transaction) TypeForUser(userID string) TransactionType {
	if userID == t.SenderID {
		return t.Type
	}
	if t.Type == TransactionTypeLent {
		return TransactionTypeBorrowed
	}
	return TransactionTypeLent
}

func ValidTransactionType(s string) bool {
	return TransactionType(s) == TransactionTypeLent || TransactionType(s) == TransactionTypeBorrowed
}

func ValidTransactionStatus(s string) bool {
	switch TransactionStatus(s) {
	case TransactionStatusPending, TransactionStatusAccepted, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusRejected:
		return true
	}
	return false
}

type CreateTransactionRequest struct {
	ReceiverID string  `json:"receiver_id"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Remarks    string  `json:"remarks,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SettleRequest struct {
	Amount float64 `json:"amount"`
}

// TransactionSummary is the per-user listing with aggregate counters.
// Transactions inside it are already flipped to the requesting user's
// perspective.
type TransactionSummary struct {
	TotalSent      float64        `json:"total_sent"`
	TotalReceived  float64        `json:"total_received"`
	PendingCount   int            `json:"pending_count"`
	AcceptedCount  int            `json:"accepted_count"`
	CompletedCount int            `json:"completed_count"`
	FailedCount    int            `json:"failed_count"`
	Transactions   []*Transaction `json:"transactions"`
}
