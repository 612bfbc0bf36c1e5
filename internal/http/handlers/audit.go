package handlers

import (
	"net/http"

	"github.com/payvost/payvost-web-sub011/internal/audit"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// AuditHandler serves the audit-log query endpoint.
type AuditHandler struct {
	store storage.AuditStore
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(store storage.AuditStore) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register attaches the audit route. Support staff may read the log.
func (h *AuditHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	readers := append([]string{models.RoleSupport}, models.AdminRoles...)
	mux.Handle("GET /api/admin/audit-logs", authn.RequireRole(readers, http.HandlerFunc(h.handleQuery)))
}

func (h *AuditHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	q, err := audit.ParseQuery(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, next, err := audit.Page(r.Context(), h.store, q)
	if err != nil {
		storeError(w, err, "audit logs")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.AuditPage{Entries: entries, NextCursor: next})
}
