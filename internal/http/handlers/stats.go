package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/stats"
)

// StatsHandler serves the admin dashboard summary.
type StatsHandler struct {
	svc          *stats.Service
	baseCurrency string
}

// NewStatsHandler constructs the handler. baseCurrency is used unless the
// request overrides it.
func NewStatsHandler(svc *stats.Service, baseCurrency string) *StatsHandler {
	return &StatsHandler{svc: svc, baseCurrency: baseCurrency}
}

// Register attaches the dashboard route.
func (h *StatsHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.Handle("GET /api/admin/dashboard/stats", authn.RequireRole(models.AdminRoles, http.HandlerFunc(h.handleStats)))
}

func (h *StatsHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "period_days", 30, 1, 365)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	months, err := intParam(r, "months", 6, 1, 24)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	base := h.baseCurrency
	if c := r.URL.Query().Get("currency"); c != "" {
		if base, err = fx.NormalizeCode(c); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	summary, err := h.svc.Dashboard(r.Context(), stats.Options{
		BaseCurrency: base,
		Period:       time.Duration(days) * 24 * time.Hour,
		Months:       months,
	})
	if err != nil {
		if errors.Is(err, fx.ErrRatesUnavailable) || errors.Is(err, fx.ErrUnsupportedCurrency) || errors.Is(err, fx.ErrInvalidCurrency) {
			fxError(w, err)
			return
		}
		storeError(w, err, "dashboard statistics")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", summary)
}
