package services

import (
	"context"
	"errors"
	"fmt"

	"lendbook/internal/models"
	"lendbook/internal/notifier"
	"lendbook/internal/store"

	"github.com/rs/zerolog"
)

// TransactionService is the ledger state machine. Every mutating operation
// runs as one atomic unit of work over the transaction row and, where
// balances move, both user rows. Notifications go out only after the unit of
// work has committed and are never allowed to fail the operation.
type TransactionService struct {
	runner store.TxRunner
	ledger store.LedgerStore
	users  store.UserStore
	events notifier.Notifier
	logger zerolog.Logger
}

func NewTransactionService(runner store.TxRunner, ledger store.LedgerStore, users store.UserStore, events notifier.Notifier, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		runner: runner,
		ledger: ledger,
		users:  users,
		events: events,
		logger: logger,
	}
}

// Create records a new pending transaction from the sender's perspective.
// Balances are untouched until the receiver accepts.
func (s *TransactionService) Create(ctx context.Context, senderID string, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidArgument)
	}
	if !models.ValidTransactionType(req.Type) {
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrInvalidArgument, models.TransactionTypeLent, models.TransactionTypeBorrowed)
	}
	if senderID == req.ReceiverID {
		return nil, fmt.Errorf("%w: cannot send a transaction to yourself", ErrInvalidArgument)
	}

	if _, err := s.findUser(ctx, senderID); err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	transaction := models.NewTransaction(senderID, req.ReceiverID, req.Amount, models.TransactionType(req.Type), req.Remarks)

	err := s.runner.WithTransaction(ctx, func(q store.Querier) error {
		return s.ledger.Create(ctx, q, transaction)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("sender_id", senderID).Msg("Failed to create transaction")
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", transaction.ID).
		Str("sender_id", senderID).
		Str("receiver_id", req.ReceiverID).
		Float64("amount", req.Amount).
		Str("type", req.Type).
		Msg("Transaction created")

	s.notify("created", func() error {
		return s.events.TransactionCreated(ctx, transaction.ID, transaction.Amount, string(transaction.Type), senderID, req.ReceiverID)
	})

	return transaction, nil
}

// Accept moves a pending transaction to accepted and applies the balance
// delta to both participants, all inside one unit of work. The row is locked
// first, so of two racing accepts only the first sees pending; the second
// fails with ErrInvalidState and the delta is applied exactly once.
func (s *TransactionService) Accept(ctx context.Context, transactionID, callerID string) (*models.Transaction, error) {
	var transaction *models.Transaction

	err := s.runner.WithTransaction(ctx, func(q store.Querier) error {
		t, err := s.ledger.FindForUpdate(ctx, q, transactionID)
		if err != nil {
			return translateStoreErr(err, "transaction")
		}
		if t.ReceiverID != callerID {
			return fmt.Errorf("%w: only the receiver can accept this transaction", ErrForbidden)
		}
		if t.Status != models.TransactionStatusPending {
			return fmt.Errorf("%w: transaction is %s, not pending", ErrInvalidState, t.Status)
		}

		t.Status = models.TransactionStatusAccepted
		t.Touch()
		if err := s.ledger.Save(ctx, q, t); err != nil {
			return err
		}

		sender, err := s.users.Find(ctx, q, t.SenderID)
		if err != nil {
			return translateStoreErr(err, "sender")
		}
		receiver, err := s.users.Find(ctx, q, t.ReceiverID)
		if err != nil {
			return translateStoreErr(err, "receiver")
		}

		ApplyBalanceDelta(sender, receiver, t.Type, t.Amount)
		sender.Touch()
		receiver.Touch()
		if err := s.users.Save(ctx, q, sender, receiver); err != nil {
			return err
		}

		transaction = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", transactionID).
		Str("accepted_by", callerID).
		Msg("Transaction accepted")

	s.notify("accepted", func() error {
		return s.events.TransactionAccepted(ctx, transaction.ID, transaction.SenderID, transaction.ReceiverID)
	})

	return transaction, nil
}

// Reject moves a pending transaction to rejected. No balance was ever
// applied, so there is nothing to roll back.
func (s *TransactionService) Reject(ctx context.Context, transactionID, callerID string) error {
	var transaction *models.Transaction

	err := s.runner.WithTransaction(ctx, func(q store.Querier) error {
		t, err := s.ledger.FindForUpdate(ctx, q, transactionID)
		if err != nil {
			return translateStoreErr(err, "transaction")
		}
		if t.ReceiverID != callerID {
			return fmt.Errorf("%w: only the receiver can reject this transaction", ErrForbidden)
		}
		if t.Status != models.TransactionStatusPending {
			return fmt.Errorf("%w: transaction is %s, not pending", ErrInvalidState, t.Status)
		}

		t.Status = models.TransactionStatusRejected
		t.Touch()
		transaction = t
		return s.ledger.Save(ctx, q, t)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("transaction_id", transactionID).
		Str("rejected_by", callerID).
		Msg("Transaction rejected")

	s.notify("rejected", func() error {
		return s.events.TransactionRejected(ctx, transaction.ID, transaction.SenderID, transaction.ReceiverID)
	})

	return nil
}

// Delete removes a transaction that never affected balances. Only the sender
// may delete, and only while the transaction is pending or rejected.
func (s *TransactionService) Delete(ctx context.Context, transactionID, callerID string) error {
	err := s.runner.WithTransaction(ctx, func(q store.Querier) error {
		t, err := s.ledger.FindForUpdate(ctx, q, transactionID)
		if err != nil {
			return translateStoreErr(err, "transaction")
		}
		if t.SenderID != callerID {
			return fmt.Errorf("%w: only the sender can delete a transaction", ErrForbidden)
		}
		if !t.Deletable() {
			return fmt.Errorf("%w: only pending or rejected transactions can be deleted", ErrInvalidState)
		}
		return s.ledger.Delete(ctx, q, transactionID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("transaction_id", transactionID).
		Str("deleted_by", callerID).
		Msg("Transaction deleted")
	return nil
}

// UpdateStatus is the generic transition for accepted transactions, moving
// them to completed or failed. Balances were already applied at accept time
// and are not touched again here.
func (s *TransactionService) UpdateStatus(ctx context.Context, transactionID string, newStatus models.TransactionStatus, callerID string) (*models.Transaction, error) {
	if !models.ValidTransactionStatus(string(newStatus)) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, newStatus)
	}

	var transaction *models.Transaction

	err := s.runner.WithTransaction(ctx, func(q store.Querier) error {
		t, err := s.ledger.FindForUpdate(ctx, q, transactionID)
		if err != nil {
			return translateStoreErr(err, "transaction")
		}
		if !t.IsParticipant(callerID) {
			return fmt.Errorf("%w: you are not part of this transaction", ErrForbidden)
		}
		if t.Status != models.TransactionStatusAccepted || !t.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: cannot move %s to %s", ErrInvalidState, t.Status, newStatus)
		}

		t.Status = newStatus
		t.Touch()
		transaction = t
		return s.ledger.Save(ctx, q, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", transactionID).
		Str("status", string(newStatus)).
		Str("updated_by", callerID).
		Msg("Transaction status updated")

	participants := []string{transaction.SenderID, transaction.ReceiverID}
	s.notify("updated", func() error {
		return s.events.TransactionUpdated(ctx, transaction.ID, participants)
	})
	if newStatus == models.TransactionStatusCompleted {
		s.notify("settled", func() error {
			return s.events.TransactionSettled(ctx, transaction.ID, participants)
		})
	}

	return transaction, nil
}

// SettleWithFriend records an immediately-completed settlement between the
// caller and a counterparty and applies the balance delta in the same unit
// of work. Direction comes from the sign of the caller's net balance.
func (s *TransactionService) SettleWithFriend(ctx context.Context, userID, counterpartyID string, amount float64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidArgument)
	}
	if userID == counterpartyID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidArgument)
	}

	var transaction *models.Transaction

	err := s.runner.WithTransaction(ctx, func(q store.Querier) error {
		user, err := s.users.Find(ctx, q, userID)
		if err != nil {
			return translateStoreErr(err, "user")
		}
		counterparty, err := s.users.Find(ctx, q, counterpartyID)
		if err != nil {
			return translateStoreErr(err, "counterparty")
		}

		direction := SettlementType(user.NetBalance)
		t := models.NewTransaction(userID, counterpartyID, amount, direction, "Settlement")
		t.Status = models.TransactionStatusCompleted
		if err := s.ledger.Create(ctx, q, t); err != nil {
			return err
		}

		ApplyBalanceDelta(user, counterparty, direction, amount)
		user.Touch()
		counterparty.Touch()
		if err := s.users.Save(ctx, q, user, counterparty); err != nil {
			return err
		}

		transaction = t
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("counterparty_id", counterpartyID).
			Msg("Settlement failed")
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", transaction.ID).
		Str("user_id", userID).
		Str("counterparty_id", counterpartyID).
		Float64("amount", amount).
		Msg("Settlement recorded")

	s.notify("settled", func() error {
		return s.events.TransactionSettled(ctx, transaction.ID, []string{userID, counterpartyID})
	})

	return transaction, nil
}

// GetByID returns a single transaction to one of its participants.
func (s *TransactionService) GetByID(ctx context.Context, transactionID, callerID string) (*models.Transaction, error) {
	t, err := s.ledger.Find(ctx, nil, transactionID)
	if err != nil {
		return nil, translateStoreErr(err, "transaction")
	}
	if !t.IsParticipant(callerID) {
		return nil, fmt.Errorf("%w: you are not part of this transaction", ErrForbidden)
	}
	return t, nil
}

// ListForUser returns every transaction the user participates in, with
// aggregate counters, each row flipped to the user's perspective.
func (s *TransactionService) ListForUser(ctx context.Context, userID string) (*models.TransactionSummary, error) {
	transactions, err := s.ledger.FindByParticipant(ctx, nil, userID, "")
	if err != nil {
		return nil, err
	}

	summary := &models.TransactionSummary{Transactions: transactions}
	for _, t := range transactions {
		switch t.Status {
		case models.TransactionStatusPending:
			summary.PendingCount++
		case models.TransactionStatusAccepted:
			summary.AcceptedCount++
		case models.TransactionStatusCompleted:
			summary.CompletedCount++
			if t.SenderID == userID {
				summary.TotalSent += t.Amount
			} else {
				summary.TotalReceived += t.Amount
			}
		case models.TransactionStatusFailed:
			summary.FailedCount++
		}
		t.Type = t.TypeForUser(userID)
	}
	return summary, nil
}

// ListPending returns transactions awaiting the user's acceptance, typed
// from the receiver's perspective.
func (s *TransactionService) ListPending(ctx context.Context, userID string) ([]*models.Transaction, error) {
	transactions, err := s.ledger.FindPendingForReceiver(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		t.Type = t.TypeForUser(userID)
	}
	return transactions, nil
}

// ListBetween returns the bilateral history between the caller and another user.
func (s *TransactionService) ListBetween(ctx context.Context, callerID, otherID string) ([]*models.Transaction, error) {
	return s.ledger.FindBetween(ctx, nil, callerID, otherID)
}

func (s *TransactionService) findUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.Find(ctx, nil, id)
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}
	return u, nil
}

// notify dispatches a post-commit event. Failures are logged and swallowed;
// the ledger mutation has already committed and must not be reported failed.
func (s *TransactionService) notify(event string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("Failed to dispatch notification")
	}
}

func translateStoreErr(err error, entity string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}
