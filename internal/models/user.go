package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	KYCStatus    string    `json:"kyc_status"`
	Country      string    `json:"country,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Verified reports whether the user has passed identity verification.
func (u User) Verified() bool {
	return u.KYCStatus == KYCApproved
}
