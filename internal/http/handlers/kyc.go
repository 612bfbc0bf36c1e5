package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/audit"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// KYCHandler accepts verification submissions and back-office decisions.
type KYCHandler struct {
	store    storage.KYCStore
	recorder *audit.Recorder
	now      func() time.Time
}

// NewKYCHandler constructs the handler.
func NewKYCHandler(store storage.KYCStore, recorder *audit.Recorder) *KYCHandler {
	return &KYCHandler{store: store, recorder: recorder, now: time.Now}
}

// Register attaches KYC routes.
func (h *KYCHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.Handle("POST /api/kyc", authn.Require(http.HandlerFunc(h.handleSubmit)))
	mux.Handle("GET /api/admin/kyc", authn.RequireRole(models.AdminRoles, http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/admin/kyc/{id}/decision", authn.RequireRole(models.AdminRoles, http.HandlerFunc(h.handleDecision)))
}

func (h *KYCHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req dto.KYCSubmitRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	docType := strings.TrimSpace(req.DocumentType)
	if docType == "" {
		respond.Error(w, http.StatusBadRequest, "document_type is required")
		return
	}
	claims := middleware.Claims(r.Context())
	sub, err := h.store.CreateKYCSubmission(r.Context(), models.KYCSubmission{
		UserID:       claims.UserID(),
		DocumentType: docType,
		DocumentRef:  strings.TrimSpace(req.DocumentRef),
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respond.Error(w, http.StatusConflict, "identity is already verified")
			return
		}
		storeError(w, err, "pending kyc submission")
		return
	}
	h.recorder.Record(r.Context(), models.AuditEntry{
		ActorID:      claims.UserID(),
		ActorEmail:   claims.Email,
		Action:       models.ActionKYCSubmitted,
		ResourceType: "kyc_submission",
		ResourceID:   sub.ID,
		IP:           clientIP(r),
		Metadata:     map[string]any{"document_type": docType},
	})
	respond.JSON(w, http.StatusCreated, "submission received", sub)
}

func (h *KYCHandler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", models.KYCPending, models.KYCApproved, models.KYCRejected:
	default:
		respond.Error(w, http.StatusBadRequest, "status must be pending, approved or rejected")
		return
	}
	subs, err := h.store.ListKYCSubmissions(r.Context(), status)
	if err != nil {
		storeError(w, err, "kyc submissions")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", subs)
}

func (h *KYCHandler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req dto.KYCDecisionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	reason := strings.TrimSpace(req.Reason)
	switch decision {
	case models.KYCApproved:
	case models.KYCRejected:
		if reason == "" {
			respond.Error(w, http.StatusBadRequest, "reason is required when rejecting")
			return
		}
	default:
		respond.Error(w, http.StatusBadRequest, "decision must be approved or rejected")
		return
	}

	claims := middleware.Claims(r.Context())
	sub, err := h.store.DecideKYC(r.Context(), r.PathValue("id"), decision, reason, claims.UserID(), h.now())
	if err != nil {
		storeError(w, err, "kyc submission")
		return
	}

	action := models.ActionKYCApproved
	if decision == models.KYCRejected {
		action = models.ActionKYCRejected
	}
	h.recorder.Record(r.Context(), models.AuditEntry{
		ActorID:      claims.UserID(),
		ActorEmail:   claims.Email,
		Action:       action,
		ResourceType: "kyc_submission",
		ResourceID:   sub.ID,
		IP:           clientIP(r),
		Metadata:     map[string]any{"user_id": sub.UserID, "reason": reason},
	})
	respond.JSON(w, http.StatusOK, "decision recorded", sub)
}
