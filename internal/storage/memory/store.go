// Package memory is an in-process Store used for local runs and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record in maps guarded by a single mutex.
type Store struct {
	mu           sync.RWMutex
	users        map[string]models.User
	transactions []models.Transaction
	audit        []models.AuditEntry
	recipients   map[string]models.Recipient
	kyc          map[string]models.KYCSubmission

	// failWith, when set, is returned by every read.
	failWith error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:      make(map[string]models.User),
		recipients: make(map[string]models.Recipient),
		kyc:        make(map[string]models.KYCSubmission),
	}
}

// FailReads makes subsequent reads return err; nil restores normal behaviour.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.KYCStatus == "" {
		user.KYCStatus = models.KYCNone
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Username, identifier) || strings.EqualFold(u.Email, identifier) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUserRole(_ context.Context, id, role string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return u, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = models.TxPending
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) ListUserTransactions(_ context.Context, userID string, filter storage.TxFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) ListTransactionsSince(_ context.Context, since time.Time) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []models.Transaction
	for _, tx := range s.transactions {
		if !tx.CreatedAt.Before(since) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) AppendAudit(_ context.Context, entry models.AuditEntry) (models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.audit = append(s.audit, entry)
	return entry, nil
}

func (s *Store) QueryAudit(_ context.Context, q storage.AuditQuery) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []models.AuditEntry
	for _, e := range s.audit {
		if matchesAudit(e, q) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return auditBefore(out[j], out[i].CreatedAt, out[i].ID) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchesAudit(e models.AuditEntry, q storage.AuditQuery) bool {
	switch {
	case q.ActorID != "" && e.ActorID != q.ActorID:
		return false
	case q.Action != "" && e.Action != q.Action:
		return false
	case q.ResourceType != "" && e.ResourceType != q.ResourceType:
		return false
	case q.ResourceID != "" && e.ResourceID != q.ResourceID:
		return false
	case !q.From.IsZero() && e.CreatedAt.Before(q.From):
		return false
	case !q.To.IsZero() && e.CreatedAt.After(q.To):
		return false
	case q.After != nil && !auditBefore(e, q.After.CreatedAt, q.After.ID):
		return false
	}
	return true
}

// auditBefore reports whether e sorts strictly before (createdAt, id) in (created_at, id) order.
func auditBefore(e models.AuditEntry, createdAt time.Time, id string) bool {
	if e.CreatedAt.Equal(createdAt) {
		return e.ID < id
	}
	return e.CreatedAt.Before(createdAt)
}

func (s *Store) CreateRecipient(_ context.Context, r models.Recipient) (models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.recipients[r.ID] = r
	return r, nil
}

func (s *Store) GetRecipient(_ context.Context, id string) (models.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.Recipient{}, s.failWith
	}
	r, ok := s.recipients[id]
	if !ok {
		return models.Recipient{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRecipients(_ context.Context, ownerID string) ([]models.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.Recipient{}
	for _, r := range s.recipients {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateKYCSubmission(_ context.Context, sub models.KYCSubmission) (models.KYCSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[sub.UserID]
	if !ok {
		return models.KYCSubmission{}, storage.ErrNotFound
	}
	if user.Verified() {
		return models.KYCSubmission{}, storage.ErrConflict
	}
	for _, existing := range s.kyc {
		if existing.UserID == sub.UserID && existing.Status == models.KYCPending {
			return models.KYCSubmission{}, storage.ErrAlreadyExists
		}
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	sub.Status = models.KYCPending
	s.kyc[sub.ID] = sub
	user.KYCStatus = models.KYCPending
	s.users[user.ID] = user
	return sub, nil
}

func (s *Store) GetKYCSubmission(_ context.Context, id string) (models.KYCSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.KYCSubmission{}, s.failWith
	}
	sub, ok := s.kyc[id]
	if !ok {
		return models.KYCSubmission{}, storage.ErrNotFound
	}
	return sub, nil
}

func (s *Store) ListKYCSubmissions(_ context.Context, status string) ([]models.KYCSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.KYCSubmission{}
	for _, sub := range s.kyc {
		if status == "" || sub.Status == status {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *Store) DecideKYC(_ context.Context, id, status, reason, reviewerID string, at time.Time) (models.KYCSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.kyc[id]
	if !ok {
		return models.KYCSubmission{}, storage.ErrNotFound
	}
	if !models.CanTransition(sub.Status, status) {
		return models.KYCSubmission{}, storage.ErrConflict
	}
	sub.Status = status
	sub.Reason = reason
	sub.ReviewerID = reviewerID
	reviewed := at.UTC()
	sub.ReviewedAt = &reviewed
	s.kyc[id] = sub
	if user, ok := s.users[sub.UserID]; ok {
		user.KYCStatus = status
		s.users[user.ID] = user
	}
	return sub, nil
}
