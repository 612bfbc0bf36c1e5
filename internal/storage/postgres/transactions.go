package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

const txColumns = `id, user_id, type, status, amount, fee, currency, recipient_id, description, created_at`

// CreateTransaction inserts a ledger entry.
func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = models.TxPending
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO transactions (` + txColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + txColumns
	row := s.pool.QueryRow(ctx, query, tx.ID, tx.UserID, tx.Type, tx.Status, tx.Amount, tx.Fee, tx.Currency, tx.RecipientID, tx.Description, tx.CreatedAt)
	return scanTransaction(row)
}

// ListUserTransactions returns a user's transactions newest first.
func (s *Store) ListUserTransactions(ctx context.Context, userID string, filter storage.TxFilter) ([]models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return s.queryTransactions(ctx, query, args...)
}

// ListTransactionsSince returns every transaction created at or after since.
func (s *Store) ListTransactionsSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+txColumns+` FROM transactions WHERE created_at >= $1`, since)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Status, &tx.Amount, &tx.Fee, &tx.Currency, &tx.RecipientID, &tx.Description, &tx.CreatedAt); err != nil {
		return models.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return tx, nil
}
