package audit

import (
	"context"
	"log/slog"

	"github.com/payvost/payvost-web-sub011/internal/metrics"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// Recorder writes audit entries. A failed write is logged and never fails the
// caller's request.
type Recorder struct {
	store  storage.AuditStore
	logger *slog.Logger
}

// NewRecorder wraps an audit store.
func NewRecorder(store storage.AuditStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends one entry.
func (r *Recorder) Record(ctx context.Context, entry models.AuditEntry) {
	if _, err := r.store.AppendAudit(ctx, entry); err != nil {
		metrics.AuditWrites.WithLabelValues("error").Inc()
		r.logger.Error("write audit entry", "action", entry.Action, "actor_id", entry.ActorID, "error", err)
		return
	}
	metrics.AuditWrites.WithLabelValues("ok").Inc()
}

// Page runs q, fetching one extra row to decide whether another page exists.
func Page(ctx context.Context, store storage.AuditStore, q storage.AuditQuery) ([]models.AuditEntry, string, error) {
	limit := q.Limit
	q.Limit = limit + 1
	entries, err := store.QueryAudit(ctx, q)
	if err != nil {
		return nil, "", err
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	if len(entries) <= limit {
		return entries, "", nil
	}
	entries = entries[:limit]
	last := entries[limit-1]
	return entries, EncodeCursor(storage.AuditCursor{CreatedAt: last.CreatedAt, ID: last.ID}), nil
}
