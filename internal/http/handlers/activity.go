package handlers

import (
	"log/slog"
	"net/http"

	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// ActivityHandler lists the caller's recent payments.
type ActivityHandler struct {
	store storage.TransactionStore
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(store storage.TransactionStore) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// Register attaches the activity route.
func (h *ActivityHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.Handle("GET /api/payments/activity", authn.Require(http.HandlerFunc(h.handleActivity)))
}

func (h *ActivityHandler) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20, 1, 100)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidTxStatus(status) {
		respond.Error(w, http.StatusBadRequest, "status must be pending, completed or failed")
		return
	}

	userID := middleware.UserID(r.Context())
	txs, err := h.store.ListUserTransactions(r.Context(), userID, storage.TxFilter{Status: status, Limit: limit})
	if err != nil {
		slog.Error("list payment activity", "user_id", userID, "error", err)
		respond.Error(w, http.StatusServiceUnavailable, "activity temporarily unavailable")
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ActivityResponse{Transactions: txs, Count: len(txs)})
}
