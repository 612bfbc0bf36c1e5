package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/payvost/payvost-web-sub011/internal/audit"
	"github.com/payvost/payvost-web-sub011/internal/auth"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
	"github.com/payvost/payvost-web-sub011/internal/middleware"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// AuthHandler owns register/login endpoints backed by the user store.
type AuthHandler struct {
	store    storage.UserStore
	tokens   *auth.TokenManager
	recorder *audit.Recorder
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, recorder: recorder}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.Handle("GET /api/me", authn.Require(http.HandlerFunc(h.handleMe)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	phone := normalizePhone(req)
	if err := validateRegistration(req.Username, req.Email, phone); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        phone,
		Country:      strings.ToUpper(strings.TrimSpace(req.Country)),
		Role:         models.RoleUser,
		KYCStatus:    models.KYCNone,
		PasswordHash: passwordHash,
	}
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			slog.Error("create user", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "user created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "identifier and password are required")
		return
	}
	user, err := h.store.FindByUsernameOrEmail(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		slog.Error("login: fetch user", "identifier", identifier, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		slog.Error("login: generate token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	h.recorder.Record(r.Context(), models.AuditEntry{
		ActorID:      user.ID,
		ActorEmail:   user.Email,
		Action:       models.ActionLogin,
		ResourceType: "user",
		ResourceID:   user.ID,
		IP:           clientIP(r),
		Metadata:     map[string]any{"user_agent": r.UserAgent()},
	})
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		storeError(w, err, "user")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

func normalizePhone(req dto.RegisterRequest) string {
	if trimmed := strings.TrimSpace(req.Phone); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(req.PhoneNumber)
}

func validateRegistration(username, email, phone string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(phone) == "" {
		return errors.New("username, email, and phone are required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return errors.New("email is invalid")
	}
	return nil
}
