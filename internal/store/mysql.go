package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"lendbook/internal/models"
)

// SQLRunner runs a unit of work on a real database transaction.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) WithTransaction(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pick returns the caller's unit of work, or the base connection for
// standalone autocommit reads.
func pick(q, base Querier) Querier {
	if q != nil {
		return q
	}
	return base
}

const transactionColumns = "id, sender_id, receiver_id, amount, type, status, remarks, timestamp, created_at, updated_at"

type MySQLLedgerStore struct {
	db Querier
}

func NewMySQLLedgerStore(db *sql.DB) *MySQLLedgerStore {
	return &MySQLLedgerStore{db: db}
}

func scanTransaction(row *sql.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Type, &t.Status,
		&t.Remarks, &t.Timestamp, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &t, nil
}

func (s *MySQLLedgerStore) Find(ctx context.Context, q Querier, id string) (*models.Transaction, error) {
	row := pick(q, s.db).QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	return scanTransaction(row)
}

func (s *MySQLLedgerStore) FindForUpdate(ctx context.Context, q Querier, id string) (*models.Transaction, error) {
	row := pick(q, s.db).QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? FOR UPDATE", id)
	return scanTransaction(row)
}

func (s *MySQLLedgerStore) FindByParticipant(ctx context.Context, q Querier, userID string, status models.TransactionStatus) ([]*models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE (sender_id = ? OR receiver_id = ?)"
	args := []any{userID, userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY timestamp DESC"

	rows, err := pick(q, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *MySQLLedgerStore) FindPendingForReceiver(ctx context.Context, q Querier, receiverID string) ([]*models.Transaction, error) {
	rows, err := pick(q, s.db).QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE receiver_id = ? AND status = ? ORDER BY timestamp DESC",
		receiverID, string(models.TransactionStatusPending))
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *MySQLLedgerStore) FindBetween(ctx context.Context, q Querier, userA, userB string) ([]*models.Transaction, error) {
	rows, err := pick(q, s.db).QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY timestamp DESC`,
		userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Type, &t.Status,
			&t.Remarks, &t.Timestamp, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

func (s *MySQLLedgerStore) Create(ctx context.Context, q Querier, t *models.Transaction) error {
	_, err := pick(q, s.db).ExecContext(ctx,
		`INSERT INTO transactions (id, sender_id, receiver_id, amount, type, status, remarks, timestamp, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SenderID, t.ReceiverID, t.Amount, string(t.Type), string(t.Status),
		t.Remarks, t.Timestamp, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *MySQLLedgerStore) Save(ctx context.Context, q Querier, t *models.Transaction) error {
	result, err := pick(q, s.db).ExecContext(ctx,
		"UPDATE transactions SET status = ?, remarks = ?, updated_at = ? WHERE id = ?",
		string(t.Status), t.Remarks, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLLedgerStore) Delete(ctx context.Context, q Querier, id string) error {
	result, err := pick(q, s.db).ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

const userColumns = "id, username, email, password_hash, total_lent, total_borrowed, net_balance, created_at, updated_at"

type MySQLUserStore struct {
	db Querier
}

func NewMySQLUserStore(db *sql.DB) *MySQLUserStore {
	return &MySQLUserStore{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.TotalLent, &u.TotalBorrowed, &u.NetBalance,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *MySQLUserStore) Find(ctx context.Context, q Querier, id string) (*models.User, error) {
	return scanUser(pick(q, s.db).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *MySQLUserStore) FindByEmail(ctx context.Context, q Querier, email string) (*models.User, error) {
	return scanUser(pick(q, s.db).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func (s *MySQLUserStore) ExistsByEmailOrUsername(ctx context.Context, q Querier, email, username string) (bool, error) {
	var id string
	err := pick(q, s.db).QueryRowContext(ctx,
		"SELECT id FROM users WHERE email = ? OR username = ?", email, username).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return true, nil
}

func (s *MySQLUserStore) Create(ctx context.Context, q Querier, u *models.User) error {
	_, err := pick(q, s.db).ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, total_lent, total_borrowed, net_balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash,
		u.TotalLent, u.TotalBorrowed, u.NetBalance,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *MySQLUserStore) Save(ctx context.Context, q Querier, users ...*models.User) error {
	// Fixed write order keeps concurrent units of work from locking the same
	// pair of rows in opposite order.
	ordered := make([]*models.User, len(users))
	copy(ordered, users)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	conn := pick(q, s.db)
	for _, u := range ordered {
		result, err := conn.ExecContext(ctx,
			`UPDATE users SET total_lent = ?, total_borrowed = ?, net_balance = ?, updated_at = ? WHERE id = ?`,
			u.TotalLent, u.TotalBorrowed, u.NetBalance, u.UpdatedAt, u.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to save user %s: %w", u.ID, err)
		}
		affected, err := result.RowsAffected()
		if err == nil && affected == 0 {
			return ErrNotFound
		}
	}
	return nil
}

type MySQLFriendStore struct {
	db Querier
}

func NewMySQLFriendStore(db *sql.DB) *MySQLFriendStore {
	return &MySQLFriendStore{db: db}
}

func (s *MySQLFriendStore) Add(ctx context.Context, q Querier, userID, friendID string) error {
	// One row per direction so ListIDs stays a single indexed lookup.
	_, err := pick(q, s.db).ExecContext(ctx,
		"INSERT IGNORE INTO friends (user_id, friend_id) VALUES (?, ?), (?, ?)",
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

func (s *MySQLFriendStore) Remove(ctx context.Context, q Querier, userID, friendID string) error {
	_, err := pick(q, s.db).ExecContext(ctx,
		"DELETE FROM friends WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

func (s *MySQLFriendStore) ListIDs(ctx context.Context, q Querier, userID string) ([]string, error) {
	rows, err := pick(q, s.db).QueryContext(ctx,
		"SELECT friend_id FROM friends WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *MySQLFriendStore) AreFriends(ctx context.Context, q Querier, userID, friendID string) (bool, error) {
	var one int
	err := pick(q, s.db).QueryRowContext(ctx,
		"SELECT 1 FROM friends WHERE user_id = ? AND friend_id = ?", userID, friendID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return true, nil
}
