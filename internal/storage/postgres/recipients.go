package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

const recipientColumns = `id, owner_id, name, email, bank_name, account_number, currency, country, created_at`

// CreateRecipient stores a saved payee.
func (s *Store) CreateRecipient(ctx context.Context, r models.Recipient) (models.Recipient, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO recipients (id, owner_id, name, email, bank_name, account_number, currency, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+recipientColumns,
		r.ID, r.OwnerID, r.Name, r.Email, r.BankName, r.AccountNumber, r.Currency, r.Country)
	return scanRecipient(row)
}

// GetRecipient fetches a recipient by id regardless of owner.
func (s *Store) GetRecipient(ctx context.Context, id string) (models.Recipient, error) {
	return scanRecipient(s.pool.QueryRow(ctx, `SELECT `+recipientColumns+` FROM recipients WHERE id = $1`, id))
}

// ListRecipients returns an owner's recipients, newest first.
func (s *Store) ListRecipients(ctx context.Context, ownerID string) ([]models.Recipient, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recipientColumns+` FROM recipients WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	out := []models.Recipient{}
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecipient(row pgx.Row) (models.Recipient, error) {
	var r models.Recipient
	if err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Email, &r.BankName, &r.AccountNumber, &r.Currency, &r.Country, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Recipient{}, storage.ErrNotFound
		}
		return models.Recipient{}, err
	}
	return r, nil
}
