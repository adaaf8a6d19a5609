package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/finance-insights/internal/models"
)

// ErrNotFound is returned when a row does not exist for the caller
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DigestRecipient is a user who asked for the periodic email summary
type DigestRecipient struct {
	UserID string
	Email  string
}

// ListTransactions returns the user's transactions, most recent first.
// A limit of zero or less returns all of them.
func (r *Repository) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, category, description, to_char(date, 'YYYY-MM-DD'), created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction inserts a transaction; ID must already be set
func (r *Repository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, category, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, t.Type, t.Amount, t.Category, t.Description, t.Date).
		Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// UpdateTransaction overwrites the mutable fields of the caller's transaction
func (r *Repository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $3, amount = $4, category = $5, description = $6, date = $7
		WHERE id = $1 AND user_id = $2
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, t.Type, t.Amount, t.Category, t.Description, t.Date).
		Scan(&t.CreatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves one of the caller's transactions by id
func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `
		SELECT id, user_id, type, amount, category, description, to_char(date, 'YYYY-MM-DD'), created_at
		FROM transactions
		WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction removes one of the caller's transactions
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDigestRecipients returns every digest subscription
func (r *Repository) ListDigestRecipients(ctx context.Context) ([]DigestRecipient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, email FROM digest_subscriptions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list digest recipients: %w", err)
	}
	defer rows.Close()

	var out []DigestRecipient
	for rows.Next() {
		var d DigestRecipient
		if err := rows.Scan(&d.UserID, &d.Email); err != nil {
			return nil, fmt.Errorf("failed to scan digest recipient: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list digest recipients: %w", err)
	}
	return out, nil
}
