package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, models.User{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, models.User{Username: "ADA", Email: "other@example.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestUserLookupIgnoresCase(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Username: "Kwame", Email: "Kwame@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "kwame@example.com", u.Email)

	_, err = s.CreateUser(ctx, models.User{Username: "kwame2", Email: "KWAME@example.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	for _, identifier := range []string{"kwame", "KWAME", "Kwame@Example.com", "kwame@example.com"} {
		got, err := s.FindByUsernameOrEmail(ctx, identifier)
		require.NoError(t, err, identifier)
		assert.Equal(t, u.ID, got.ID)
	}
}

func TestQueryAuditPagesNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.AppendAudit(ctx, models.AuditEntry{
			ID:        string(rune('a' + i)),
			Action:    models.ActionLogin,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	page, err := s.QueryAudit(ctx, storage.AuditQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "e", page[0].ID)
	assert.Equal(t, "d", page[1].ID)

	last := page[1]
	page, err = s.QueryAudit(ctx, storage.AuditQuery{Limit: 10, After: &storage.AuditCursor{CreatedAt: last.CreatedAt, ID: last.ID}})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "c", page[0].ID)
}

func TestDecideKYCOnlyFromPending(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Username: "bola", Email: "bola@example.com"})
	require.NoError(t, err)

	sub, err := s.CreateKYCSubmission(ctx, models.KYCSubmission{UserID: u.ID, DocumentType: "passport"})
	require.NoError(t, err)

	_, err = s.CreateKYCSubmission(ctx, models.KYCSubmission{UserID: u.ID, DocumentType: "passport"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	decided, err := s.DecideKYC(ctx, sub.ID, models.KYCApproved, "", "admin-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, decided.Status)
	require.NotNil(t, decided.ReviewedAt)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified())

	_, err = s.DecideKYC(ctx, sub.ID, models.KYCRejected, "late", "admin-1", time.Now())
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = s.CreateKYCSubmission(ctx, models.KYCSubmission{UserID: u.ID, DocumentType: "passport"})
	assert.ErrorIs(t, err, storage.ErrConflict)
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, got.KYCStatus)
}
