package storage

import (
	"context"
	"errors"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates the record is not in a state that allows the change.
var ErrConflict = errors.New("record state conflict")

// UserStore captures persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id, role string) (models.User, error)
}

// TxFilter narrows a user's transaction listing.
type TxFilter struct {
	Status string
	Limit  int
}

// TransactionStore reads and writes ledger entries.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	// ListUserTransactions returns the user's transactions newest first.
	ListUserTransactions(ctx context.Context, userID string, filter TxFilter) ([]models.Transaction, error)
	// ListTransactionsSince returns every transaction created at or after since.
	ListTransactionsSince(ctx context.Context, since time.Time) ([]models.Transaction, error)
}

// AuditCursor is the position of the last entry of a page.
type AuditCursor struct {
	CreatedAt time.Time
	ID        string
}

// AuditQuery filters the audit log. Zero values match everything.
type AuditQuery struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	From         time.Time
	To           time.Time
	After        *AuditCursor
	Limit        int
}

// AuditStore persists and queries audit entries.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry models.AuditEntry) (models.AuditEntry, error)
	// QueryAudit returns at most q.Limit entries ordered by (created_at, id) descending,
	// strictly after q.After when set.
	QueryAudit(ctx context.Context, q AuditQuery) ([]models.AuditEntry, error)
}

// RecipientStore persists saved payees.
type RecipientStore interface {
	CreateRecipient(ctx context.Context, r models.Recipient) (models.Recipient, error)
	GetRecipient(ctx context.Context, id string) (models.Recipient, error)
	ListRecipients(ctx context.Context, ownerID string) ([]models.Recipient, error)
}

// KYCStore persists identity verification submissions.
type KYCStore interface {
	// CreateKYCSubmission returns ErrAlreadyExists when the user already has a pending submission.
	CreateKYCSubmission(ctx context.Context, sub models.KYCSubmission) (models.KYCSubmission, error)
	GetKYCSubmission(ctx context.Context, id string) (models.KYCSubmission, error)
	ListKYCSubmissions(ctx context.Context, status string) ([]models.KYCSubmission, error)
	// DecideKYC moves a pending submission to status and mirrors it onto the user.
	// It returns ErrConflict when the submission is no longer pending.
	DecideKYC(ctx context.Context, id, status, reason, reviewerID string, at time.Time) (models.KYCSubmission, error)
}

// Store aggregates every persistence concern behind one handle.
type Store interface {
	UserStore
	TransactionStore
	AuditStore
	RecipientStore
	KYCStore
	Close()
}
