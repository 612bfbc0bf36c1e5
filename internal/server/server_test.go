package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvost/payvost-web-sub011/internal/auth"
	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
	"github.com/payvost/payvost-web-sub011/internal/storage/memory"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	t     *testing.T
	srv   *httptest.Server
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, func(*config.Config) {})
}

func newFixtureWith(t *testing.T, adjust func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Config{
		JWTSecret:    "test-secret",
		JWTIssuer:    "payvost-test",
		JWTTTL:       time.Hour,
		CORSOrigins:  []string{"*"},
		BaseCurrency: "USD",
	}
	adjust(&cfg)
	store := memory.New()
	rates := fx.NewService(fx.DefaultStaticProvider(), fx.NewMemoryCache(), time.Hour, fx.FeePolicy{
		Percent:       decimal.RequireFromString("1.5"),
		Fixed:         decimal.RequireFromString("0.30"),
		Min:           decimal.RequireFromString("0.50"),
		Max:           decimal.RequireFromString("50"),
		MarkupPercent: decimal.RequireFromString("0.5"),
	}, nil)

	srv := httptest.NewServer(Routes(cfg, Deps{Store: store, FX: rates}, nil))
	t.Cleanup(srv.Close)
	return &fixture{t: t, srv: srv, store: store}
}

func (f *fixture) do(method, path, token string, body any) (int, envelope) {
	f.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// seedUser stores a user with a known password and returns a token for it.
func (f *fixture) seedUser(username, role string) (models.User, string) {
	f.t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(f.t, err)
	u, err := f.store.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.com",
		Phone:        "+15550001111",
		Role:         role,
		PasswordHash: hash,
	})
	require.NoError(f.t, err)

	status, env := f.do(http.MethodPost, "/login", "", dto.LoginRequest{Identifier: username, Password: "password123"})
	require.Equal(f.t, http.StatusOK, status, env.Message)
	var login dto.LoginResponse
	require.NoError(f.t, json.Unmarshal(env.Data, &login))
	return u, login.Token
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "ada", Email: "Ada@Example.com", PhoneNumber: "+2348000000000", Password: "supersecret",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotContains(t, string(env.Data), "password")

	status, _ = f.do(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "ada", Email: "ada@example.com", Phone: "1", Password: "supersecret",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Phone: "1", Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(http.MethodPost, "/login", "", dto.LoginRequest{Identifier: "ada", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "ADA", Email: "someone-else@example.com", Phone: "1", Password: "supersecret",
	})
	assert.Equal(t, http.StatusConflict, status)

	for _, identifier := range []string{"Ada@Example.com", "ADA", "ada"} {
		status, _ = f.do(http.MethodPost, "/login", "", dto.LoginRequest{Identifier: identifier, Password: "supersecret"})
		assert.Equal(t, http.StatusOK, status, identifier)
	}

	status, env = f.do(http.MethodPost, "/login", "", dto.LoginRequest{Identifier: "ada@example.com", Password: "supersecret"})
	require.Equal(t, http.StatusOK, status)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	status, env = f.do(http.MethodGet, "/api/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "ada", user.Username)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	status, env := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
}

func TestCurrencyEndpoints(t *testing.T) {
	f := newFixture(t)
	_, token := f.seedUser("payer", models.RoleUser)

	status, env := f.do(http.MethodGet, "/api/currency/rates?base=EUR&symbols=USD,GBP", "", nil)
	require.Equal(t, http.StatusOK, status)
	var table fx.Table
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Equal(t, "EUR", table.Base)
	assert.Len(t, table.Rates, 2)

	status, _ = f.do(http.MethodGet, "/api/currency/rates?base=XXX", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = f.do(http.MethodGet, "/api/currency/convert?from=USD&to=NGN&amount=10", "", nil)
	require.Equal(t, http.StatusOK, status)
	var conv fx.Conversion
	require.NoError(t, json.Unmarshal(env.Data, &conv))
	assert.True(t, conv.Result.Equal(decimal.NewFromInt(15500)))

	status, _ = f.do(http.MethodGet, "/api/currency/convert?from=USD&to=NGN&amount=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	preview := map[string]any{"from_currency": "USD", "to_currency": "NGN", "amount": "100"}
	status, _ = f.do(http.MethodPost, "/api/payments/preview", "", preview)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = f.do(http.MethodPost, "/api/payments/preview", token, preview)
	require.Equal(t, http.StatusOK, status)
	var q fx.Quote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.True(t, q.Fee.Equal(decimal.RequireFromString("1.80")))
	assert.True(t, q.ConvertedAmount.Equal(decimal.NewFromInt(154225)))

	status, _ = f.do(http.MethodPost, "/api/payments/preview", token, map[string]any{"from_currency": "USD", "to_currency": "NGN", "amount": 0})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPaymentActivity(t *testing.T) {
	f := newFixture(t)
	user, token := f.seedUser("spender", models.RoleUser)
	other, _ := f.seedUser("bystander", models.RoleUser)
	ctx := context.Background()

	for i, status := range []string{models.TxCompleted, models.TxPending, models.TxCompleted} {
		_, err := f.store.CreateTransaction(ctx, models.Transaction{
			UserID: user.ID, Type: models.TxTransfer, Status: status,
			Amount: decimal.NewFromInt(int64(10 * (i + 1))), Currency: "USD",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := f.store.CreateTransaction(ctx, models.Transaction{UserID: other.ID, Status: models.TxCompleted, Amount: decimal.NewFromInt(1), Currency: "USD"})
	require.NoError(t, err)

	status, env := f.do(http.MethodGet, "/api/payments/activity?status=completed", token, nil)
	require.Equal(t, http.StatusOK, status)
	var activity dto.ActivityResponse
	require.NoError(t, json.Unmarshal(env.Data, &activity))
	require.Equal(t, 2, activity.Count)
	assert.True(t, activity.Transactions[0].Amount.Equal(decimal.NewFromInt(30)))

	status, _ = f.do(http.MethodGet, "/api/payments/activity?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(http.MethodGet, "/api/payments/activity", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	f.store.FailReads(errors.New("connection refused"))
	status, env = f.do(http.MethodGet, "/api/payments/activity", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "activity temporarily unavailable", env.Message)
}

func TestRecipients(t *testing.T) {
	f := newFixture(t)
	_, aliceToken := f.seedUser("alice", models.RoleUser)
	_, bobToken := f.seedUser("bob", models.RoleUser)

	status, env := f.do(http.MethodPost, "/api/recipients", aliceToken, dto.CreateRecipientRequest{
		Name: "Chidi Okafor", BankName: "GTBank", AccountNumber: "0123 456 789", Currency: "ngn",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var rec models.Recipient
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "0123456789", rec.AccountNumber)
	assert.Equal(t, "NGN", rec.Currency)

	status, _ = f.do(http.MethodGet, "/api/recipient/"+rec.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = f.do(http.MethodGet, "/api/recipient/"+rec.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(http.MethodGet, "/api/recipient/does-not-exist", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(http.MethodPost, "/api/recipients", aliceToken, dto.CreateRecipientRequest{Name: "x", BankName: "y", AccountNumber: "12-34", Currency: "NGN"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = f.do(http.MethodGet, "/api/recipients", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestKYCReviewAndAuditTrail(t *testing.T) {
	f := newFixture(t)
	applicant, userToken := f.seedUser("applicant", models.RoleUser)
	admin, adminToken := f.seedUser("reviewer", models.RoleAdmin)
	_, supportToken := f.seedUser("helpdesk", models.RoleSupport)

	status, env := f.do(http.MethodPost, "/api/kyc", userToken, dto.KYCSubmitRequest{DocumentType: "passport", DocumentRef: "doc-1"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var sub models.KYCSubmission
	require.NoError(t, json.Unmarshal(env.Data, &sub))

	status, _ = f.do(http.MethodPost, "/api/kyc", userToken, dto.KYCSubmitRequest{DocumentType: "passport"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(http.MethodGet, "/api/admin/kyc?status=pending", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = f.do(http.MethodGet, "/api/admin/kyc?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var pending []models.KYCSubmission
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)

	decisionPath := "/api/admin/kyc/" + sub.ID + "/decision"
	status, _ = f.do(http.MethodPost, decisionPath, adminToken, dto.KYCDecisionRequest{Decision: "rejected"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(http.MethodPost, decisionPath, adminToken, dto.KYCDecisionRequest{Decision: "approved"})
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(http.MethodPost, decisionPath, adminToken, dto.KYCDecisionRequest{Decision: "rejected", Reason: "changed mind"})
	assert.Equal(t, http.StatusConflict, status)

	got, err := f.store.GetUser(context.Background(), applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, got.KYCStatus)

	status, env = f.do(http.MethodPost, "/api/kyc", userToken, dto.KYCSubmitRequest{DocumentType: "passport", DocumentRef: "doc-2"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "identity is already verified", env.Message)
	got, err = f.store.GetUser(context.Background(), applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, got.KYCStatus)

	status, env = f.do(http.MethodGet, "/api/admin/audit-logs?action=kyc.approved", supportToken, nil)
	require.Equal(t, http.StatusOK, status)
	var page dto.AuditPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Entries, 1)
	assert.Equal(t, admin.ID, page.Entries[0].ActorID)
	assert.Equal(t, sub.ID, page.Entries[0].ResourceID)
	assert.Empty(t, page.NextCursor)

	status, env = f.do(http.MethodGet, "/api/admin/audit-logs?action=auth.login&limit=2", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Entries, 2)
	require.NotEmpty(t, page.NextCursor)

	status, env = f.do(http.MethodGet, "/api/admin/audit-logs?action=auth.login&limit=2&cursor="+page.NextCursor, adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Entries, 1)
	assert.Empty(t, page.NextCursor)

	status, _ = f.do(http.MethodGet, "/api/admin/audit-logs?limit=0", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(http.MethodGet, "/api/admin/audit-logs", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	user, _ := f.seedUser("customer", models.RoleUser)
	_, adminToken := f.seedUser("boss", models.RoleSuperAdmin)
	ctx := context.Background()

	_, err := f.store.CreateTransaction(ctx, models.Transaction{
		UserID: user.ID, Status: models.TxCompleted, Amount: decimal.NewFromInt(100), Fee: decimal.RequireFromString("1.8"),
		Currency: "USD", CreatedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = f.store.CreateTransaction(ctx, models.Transaction{
		UserID: user.ID, Status: models.TxCompleted, Amount: decimal.NewFromInt(15500),
		Currency: "NGN", CreatedAt: time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	status, env := f.do(http.MethodGet, "/api/admin/dashboard/stats?period_days=7&months=2", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	var body struct {
		BaseCurrency string          `json:"base_currency"`
		Volume       decimal.Decimal `json:"volume"`
		Revenue      decimal.Decimal `json:"revenue"`
		Users        struct {
			Total  int `json:"total"`
			Active int `json:"active"`
		} `json:"users"`
		Monthly []json.RawMessage `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "USD", body.BaseCurrency)
	assert.True(t, body.Volume.Equal(decimal.NewFromInt(110)), body.Volume.String())
	assert.True(t, body.Revenue.Equal(decimal.RequireFromString("1.8")))
	assert.Equal(t, 2, body.Users.Total)
	assert.Equal(t, 1, body.Users.Active)
	assert.Len(t, body.Monthly, 2)

	status, _ = f.do(http.MethodGet, "/api/admin/dashboard/stats?currency=ZZZ", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(http.MethodGet, "/api/admin/dashboard/stats?period_days=0", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	f.store.FailReads(errors.New("timeout"))
	status, _ = f.do(http.MethodGet, "/api/admin/dashboard/stats", adminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestAuditIPIgnoresForwardedHeaderUnlessTrusted(t *testing.T) {
	loginIP := func(f *fixture) string {
		t.Helper()
		f.seedUser("traveller", models.RoleUser)
		raw, err := json.Marshal(dto.LoginRequest{Identifier: "traveller", Password: "password123"})
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/login", bytes.NewReader(raw))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		entries, err := f.store.QueryAudit(context.Background(), storage.AuditQuery{Action: models.ActionLogin, Limit: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		return entries[0].IP
	}

	assert.Equal(t, "127.0.0.1", loginIP(newFixture(t)))

	trusted := newFixtureWith(t, func(cfg *config.Config) { cfg.TrustProxyHeaders = true })
	assert.Equal(t, "203.0.113.9", loginIP(trusted))
}
