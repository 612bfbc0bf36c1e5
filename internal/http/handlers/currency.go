package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
)

// CurrencyHandler serves rates, conversions and fee previews.
type CurrencyHandler struct {
	fx          *fx.Service
	defaultBase string
}

// NewCurrencyHandler constructs the handler.
func NewCurrencyHandler(svc *fx.Service, defaultBase string) *CurrencyHandler {
	return &CurrencyHandler{fx: svc, defaultBase: defaultBase}
}

// Register attaches currency routes. Rates and conversions are public; the
// fee preview requires a signed-in user.
func (h *CurrencyHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("GET /api/currency/rates", h.handleRates)
	mux.HandleFunc("GET /api/currency/convert", h.handleConvert)
	mux.Handle("POST /api/payments/preview", authn.Require(http.HandlerFunc(h.handlePreview)))
}

func (h *CurrencyHandler) handleRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	base := q.Get("base")
	if base == "" {
		base = h.defaultBase
	}
	var symbols []string
	for _, s := range strings.Split(q.Get("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	table, err := h.fx.Rates(r.Context(), base, symbols)
	if err != nil {
		fxError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", table)
}

func (h *CurrencyHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "amount must be a number")
		return
	}
	conv, err := h.fx.Convert(r.Context(), amount, q.Get("from"), q.Get("to"))
	if err != nil {
		fxError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", conv)
}

func (h *CurrencyHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	quote, err := h.fx.Quote(r.Context(), req.Amount, req.FromCurrency, req.ToCurrency)
	if err != nil {
		fxError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", quote)
}
