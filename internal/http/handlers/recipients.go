package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/payvost/payvost-web-sub011/internal/audit"
	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// RecipientHandler manages the caller's saved payees.
type RecipientHandler struct {
	store    storage.RecipientStore
	recorder *audit.Recorder
}

// NewRecipientHandler constructs the handler.
func NewRecipientHandler(store storage.RecipientStore, recorder *audit.Recorder) *RecipientHandler {
	return &RecipientHandler{store: store, recorder: recorder}
}

// Register attaches recipient routes.
func (h *RecipientHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.Handle("GET /api/recipients", authn.Require(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/recipients", authn.Require(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/recipient/{id}", authn.Require(http.HandlerFunc(h.handleGet)))
}

func (h *RecipientHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListRecipients(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		storeError(w, err, "recipients")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", list)
}

func (h *RecipientHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetRecipient(r.Context(), r.PathValue("id"))
	if err != nil {
		storeError(w, err, "recipient")
		return
	}
	// Another user's recipient is indistinguishable from a missing one.
	if rec.OwnerID != middleware.UserID(r.Context()) {
		respond.Error(w, http.StatusNotFound, "recipient not found")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", rec)
}

func (h *RecipientHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecipientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	rec, err := recipientFromRequest(req)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	claims := middleware.Claims(r.Context())
	rec.OwnerID = claims.UserID()

	created, err := h.store.CreateRecipient(r.Context(), rec)
	if err != nil {
		storeError(w, err, "recipient")
		return
	}
	h.recorder.Record(r.Context(), models.AuditEntry{
		ActorID:      claims.UserID(),
		ActorEmail:   claims.Email,
		Action:       models.ActionRecipientCreate,
		ResourceType: "recipient",
		ResourceID:   created.ID,
		IP:           clientIP(r),
		Metadata:     map[string]any{"currency": created.Currency, "bank_name": created.BankName},
	})
	respond.JSON(w, http.StatusCreated, "recipient created", created)
}

func recipientFromRequest(req dto.CreateRecipientRequest) (models.Recipient, error) {
	rec := models.Recipient{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: strings.ReplaceAll(strings.TrimSpace(req.AccountNumber), " ", ""),
		Country:       strings.ToUpper(strings.TrimSpace(req.Country)),
	}
	if rec.Name == "" || rec.BankName == "" || rec.AccountNumber == "" {
		return models.Recipient{}, errors.New("name, bank_name and account_number are required")
	}
	for _, c := range rec.AccountNumber {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return models.Recipient{}, errors.New("account_number must be alphanumeric")
		}
	}
	currency, err := fx.NormalizeCode(req.Currency)
	if err != nil {
		return models.Recipient{}, err
	}
	rec.Currency = currency
	return rec, nil
}
