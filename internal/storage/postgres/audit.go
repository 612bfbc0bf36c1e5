package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

const auditColumns = `id, actor_id, actor_email, action, resource_type, resource_id, metadata, ip, created_at`

// AppendAudit writes one audit entry.
func (s *Store) AppendAudit(ctx context.Context, entry models.AuditEntry) (models.AuditEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.ActorID, entry.ActorEmail, entry.Action, entry.ResourceType, entry.ResourceID, metadata, entry.IP, entry.CreatedAt)
	if err != nil {
		return models.AuditEntry{}, fmt.Errorf("insert audit entry: %w", err)
	}
	return entry, nil
}

// QueryAudit filters the audit log newest first using keyset pagination on (created_at, id).
func (s *Store) QueryAudit(ctx context.Context, q storage.AuditQuery) ([]models.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if q.ActorID != "" {
		add("actor_id = $%d", q.ActorID)
	}
	if q.Action != "" {
		add("action = $%d", q.Action)
	}
	if q.ResourceType != "" {
		add("resource_type = $%d", q.ResourceType)
	}
	if q.ResourceID != "" {
		add("resource_id = $%d", q.ResourceID)
	}
	if !q.From.IsZero() {
		add("created_at >= $%d", q.From)
	}
	if !q.To.IsZero() {
		add("created_at <= $%d", q.To)
	}
	if q.After != nil {
		args = append(args, q.After.CreatedAt, q.After.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAudit(row pgx.Row) (models.AuditEntry, error) {
	var e models.AuditEntry
	if err := row.Scan(&e.ID, &e.ActorID, &e.ActorEmail, &e.Action, &e.ResourceType, &e.ResourceID, &e.Metadata, &e.IP, &e.CreatedAt); err != nil {
		return models.AuditEntry{}, fmt.Errorf("scan audit entry: %w", err)
	}
	return e, nil
}
