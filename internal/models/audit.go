package models

import "time"

// Audit actions written by the API.
const (
	ActionLogin           = "auth.login"
	ActionKYCApproved     = "kyc.approved"
	ActionKYCRejected     = "kyc.rejected"
	ActionKYCSubmitted    = "kyc.submitted"
	ActionRecipientCreate = "recipient.created"
	ActionRoleChanged     = "user.role_changed"
)

// AuditEntry records who did what to which resource.
type AuditEntry struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	ActorEmail   string         `json:"actor_email,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IP           string         `json:"ip,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
