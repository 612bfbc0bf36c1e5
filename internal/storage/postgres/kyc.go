package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

const kycColumns = `id, user_id, document_type, document_ref, status, reason, reviewer_id, submitted_at, reviewed_at`

// CreateKYCSubmission opens a pending submission and marks the user pending.
// Users who are already approved get storage.ErrConflict.
func (s *Store) CreateKYCSubmission(ctx context.Context, sub models.KYCSubmission) (models.KYCSubmission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	var created models.KYCSubmission
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET kyc_status = 'pending' WHERE id = $1 AND kyc_status <> 'approved'`, sub.UserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, sub.UserID).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return storage.ErrConflict
			}
			return storage.ErrNotFound
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO kyc_submissions (id, user_id, document_type, document_ref, status)
			VALUES ($1, $2, $3, $4, 'pending')
			RETURNING `+kycColumns,
			sub.ID, sub.UserID, sub.DocumentType, sub.DocumentRef)
		created, err = scanKYC(row)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.KYCSubmission{}, storage.ErrAlreadyExists
		}
		return models.KYCSubmission{}, err
	}
	return created, nil
}

// GetKYCSubmission fetches one submission.
func (s *Store) GetKYCSubmission(ctx context.Context, id string) (models.KYCSubmission, error) {
	return scanKYC(s.pool.QueryRow(ctx, `SELECT `+kycColumns+` FROM kyc_submissions WHERE id = $1`, id))
}

// ListKYCSubmissions returns submissions oldest first, optionally filtered by status.
func (s *Store) ListKYCSubmissions(ctx context.Context, status string) ([]models.KYCSubmission, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_submissions`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kyc submissions: %w", err)
	}
	defer rows.Close()

	out := []models.KYCSubmission{}
	for rows.Next() {
		sub, err := scanKYC(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// DecideKYC applies a review decision inside one transaction, locking the submission row.
func (s *Store) DecideKYC(ctx context.Context, id, status, reason, reviewerID string, at time.Time) (models.KYCSubmission, error) {
	var decided models.KYCSubmission
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := scanKYC(tx.QueryRow(ctx, `SELECT `+kycColumns+` FROM kyc_submissions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if !models.CanTransition(current.Status, status) {
			return storage.ErrConflict
		}
		decided, err = scanKYC(tx.QueryRow(ctx, `
			UPDATE kyc_submissions
			SET status = $2, reason = $3, reviewer_id = $4, reviewed_at = $5
			WHERE id = $1
			RETURNING `+kycColumns,
			id, status, reason, reviewerID, at.UTC()))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE users SET kyc_status = $2 WHERE id = $1`, current.UserID, status)
		return err
	})
	if err != nil {
		return models.KYCSubmission{}, err
	}
	return decided, nil
}

func scanKYC(row pgx.Row) (models.KYCSubmission, error) {
	var sub models.KYCSubmission
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.DocumentType, &sub.DocumentRef, &sub.Status, &sub.Reason, &sub.ReviewerID, &sub.SubmittedAt, &sub.ReviewedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.KYCSubmission{}, storage.ErrNotFound
		}
		return models.KYCSubmission{}, err
	}
	return sub, nil
}
