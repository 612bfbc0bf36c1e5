// Package audit records back-office actions and parses audit-log queries.
package audit

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/storage"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ErrInvalidCursor is returned for cursors this package did not produce.
var ErrInvalidCursor = errors.New("invalid cursor")

// EncodeCursor makes an opaque page token from the last entry's position.
func EncodeCursor(c storage.AuditCursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(s string) (storage.AuditCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return storage.AuditCursor{}, ErrInvalidCursor
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return storage.AuditCursor{}, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return storage.AuditCursor{}, ErrInvalidCursor
	}
	return storage.AuditCursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// ParseQuery turns request parameters into a store query.
func ParseQuery(v url.Values) (storage.AuditQuery, error) {
	q := storage.AuditQuery{
		ActorID:      strings.TrimSpace(v.Get("actor_id")),
		Action:       strings.TrimSpace(v.Get("action")),
		ResourceType: strings.TrimSpace(v.Get("resource_type")),
		ResourceID:   strings.TrimSpace(v.Get("resource_id")),
		Limit:        DefaultLimit,
	}

	var err error
	if q.From, err = parseTime(v.Get("from"), false); err != nil {
		return storage.AuditQuery{}, fmt.Errorf("from: %w", err)
	}
	if q.To, err = parseTime(v.Get("to"), true); err != nil {
		return storage.AuditQuery{}, fmt.Errorf("to: %w", err)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return storage.AuditQuery{}, errors.New("to must not be before from")
	}

	if raw := strings.TrimSpace(v.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			return storage.AuditQuery{}, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
		}
		q.Limit = n
	}

	if raw := strings.TrimSpace(v.Get("cursor")); raw != "" {
		c, err := DecodeCursor(raw)
		if err != nil {
			return storage.AuditQuery{}, err
		}
		q.After = &c
	}
	return q, nil
}

// parseTime accepts RFC3339 or a bare date. With endOfDay a bare date means
// the last instant of that day so the whole day is included.
func parseTime(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t, nil
	}
	return time.Time{}, errors.New("expected RFC3339 timestamp or YYYY-MM-DD date")
}
