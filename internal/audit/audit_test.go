package audit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
	"github.com/payvost/payvost-web-sub011/internal/storage/memory"
)

func TestCursorRoundTrip(t *testing.T) {
	c := storage.AuditCursor{CreatedAt: time.Date(2026, 2, 3, 4, 5, 6, 789, time.UTC), ID: "entry-1"}
	got, err := DecodeCursor(EncodeCursor(c))
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, c.ID, got.ID)

	for _, bad := range []string{"!!!", "bm8tc2VwYXJhdG9y", EncodeCursor(storage.AuditCursor{})[:2]} {
		_, err := DecodeCursor(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"actor_id":      {"admin-1"},
		"action":        {models.ActionKYCApproved},
		"resource_type": {"kyc_submission"},
		"from":          {"2026-01-01"},
		"to":            {"2026-01-31T23:59:59Z"},
		"limit":         {"10"},
	})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", q.ActorID)
	assert.Equal(t, models.ActionKYCApproved, q.Action)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 2026, q.From.Year())
	assert.Nil(t, q.After)

	q, err = ParseQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestParseQueryRejectsBadInput(t *testing.T) {
	cases := []url.Values{
		{"limit": {"0"}},
		{"limit": {fmt.Sprint(MaxLimit + 1)}},
		{"limit": {"ten"}},
		{"from": {"yesterday"}},
		{"from": {"2026-02-01"}, "to": {"2026-01-01"}},
		{"cursor": {"garbage!"}},
	}
	for _, v := range cases {
		_, err := ParseQuery(v)
		assert.Error(t, err, v.Encode())
	}
}

func TestPageWalksAllEntries(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := NewRecorder(store, nil)
	for i := 0; i < 5; i++ {
		rec.Record(ctx, models.AuditEntry{
			ID:        fmt.Sprintf("e%d", i),
			ActorID:   "admin-1",
			Action:    models.ActionLogin,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	var seen []string
	q := storage.AuditQuery{Limit: 2}
	for pages := 0; pages < 10; pages++ {
		entries, next, err := Page(ctx, store, q)
		require.NoError(t, err)
		for _, e := range entries {
			seen = append(seen, e.ID)
		}
		if next == "" {
			break
		}
		c, err := DecodeCursor(next)
		require.NoError(t, err)
		q.After = &c
	}
	assert.Equal(t, []string{"e4", "e3", "e2", "e1", "e0"}, seen)
}

type failingAuditStore struct{ storage.AuditStore }

func (failingAuditStore) AppendAudit(context.Context, models.AuditEntry) (models.AuditEntry, error) {
	return models.AuditEntry{}, errors.New("disk full")
}

func TestRecordSwallowsErrors(t *testing.T) {
	rec := NewRecorder(failingAuditStore{}, nil)
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), models.AuditEntry{Action: models.ActionLogin})
	})
}

func TestParseQueryDateOnlyToCoversWholeDay(t *testing.T) {
	q, err := ParseQuery(url.Values{"from": {"2026-01-01"}, "to": {"2026-01-01"}})
	require.NoError(t, err)
	assert.True(t, q.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, q.To.Equal(time.Date(2026, 1, 1, 23, 59, 59, 999999999, time.UTC)), q.To.String())

	store := memory.New()
	ctx := context.Background()
	_, err = store.AppendAudit(ctx, models.AuditEntry{Action: models.ActionLogin, CreatedAt: time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	_, err = store.AppendAudit(ctx, models.AuditEntry{Action: models.ActionLogin, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	entries, _, err := Page(ctx, store, q)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 15, entries[0].CreatedAt.Hour())
}
