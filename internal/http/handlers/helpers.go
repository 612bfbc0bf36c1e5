package handlers

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// storeError maps storage sentinels to statuses; anything else is a 500.
func storeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, storage.ErrConflict):
		respond.Error(w, http.StatusConflict, what+" cannot be changed in its current state")
	default:
		slog.Error("storage error", "resource", what, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load "+what)
	}
}

// fxError maps fx sentinels to statuses.
func fxError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fx.ErrInvalidCurrency),
		errors.Is(err, fx.ErrUnsupportedCurrency),
		errors.Is(err, fx.ErrInvalidAmount):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fx.ErrRatesUnavailable):
		slog.Warn("exchange rates unavailable", "error", err)
		respond.Error(w, http.StatusServiceUnavailable, "exchange rates temporarily unavailable")
	default:
		slog.Error("fx error", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to price request")
	}
}

// intParam parses an optional bounded integer query parameter.
func intParam(r *http.Request, name string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, errors.New(name + " must be an integer between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return n, nil
}

// clientIP is the peer address. Proxy headers are applied upstream by
// middleware.RealIP when configured.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
