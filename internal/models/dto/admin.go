package dto

import "github.com/payvost/payvost-web-sub011/internal/models"

type KYCSubmitRequest struct {
	DocumentType string `json:"document_type"`
	DocumentRef  string `json:"document_ref"`
}

type KYCDecisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

type AuditPage struct {
	Entries    []models.AuditEntry `json:"entries"`
	NextCursor string              `json:"next_cursor"`
}
