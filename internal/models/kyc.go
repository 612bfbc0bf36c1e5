package models

import "time"

// KYC statuses shared by users and submissions.
const (
	KYCNone     = "none"
	KYCPending  = "pending"
	KYCApproved = "approved"
	KYCRejected = "rejected"
)

// KYCSubmission is one identity verification request awaiting review.
type KYCSubmission struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	DocumentType string     `json:"document_type"`
	DocumentRef  string     `json:"document_ref"`
	Status       string     `json:"status"`
	Reason       string     `json:"reason,omitempty"`
	ReviewerID   string     `json:"reviewer_id,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// CanTransition reports whether a submission may move from one status to another.
// Only pending submissions can be decided, and only to approved or rejected.
func CanTransition(from, to string) bool {
	return from == KYCPending && (to == KYCApproved || to == KYCRejected)
}
