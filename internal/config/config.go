package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Storage drivers understood by Load.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// FX providers understood by Load.
const (
	ProviderFixer  = "fixer"
	ProviderStatic = "static"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	CORSOrigins   []string
	LogLevel      string

	BaseCurrency      string
	FXProvider        string
	FixerAPIKey       string
	FixerBaseURL      string
	FXCacheTTL        time.Duration
	FXRefreshSchedule string
	FXProviderRPS     float64
	RedisURL          string

	Fees Fees

	RateLimitRPS   float64
	RateLimitBurst int

	// TrustProxyHeaders makes X-Real-IP / X-Forwarded-For the client address.
	TrustProxyHeaders bool
}

// Fees is the transfer pricing applied by fee previews. Fixed, Min and Max
// are denominated in Currency.
type Fees struct {
	Currency      string
	Percent       decimal.Decimal
	Fixed         decimal.Decimal
	Min           decimal.Decimal
	Max           decimal.Decimal
	MarkupPercent decimal.Decimal
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              fallback(os.Getenv("PORT"), "8080"),
		StorageDriver:     strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:         fallback(os.Getenv("JWT_ISSUER"), "payvost-api"),
		CORSOrigins:       parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:          fallback(os.Getenv("LOG_LEVEL"), "info"),
		BaseCurrency:      strings.ToUpper(fallback(os.Getenv("BASE_CURRENCY"), "USD")),
		FXProvider:        strings.ToLower(fallback(os.Getenv("FX_PROVIDER"), ProviderStatic)),
		FixerAPIKey:       strings.TrimSpace(os.Getenv("FIXER_API_KEY")),
		FixerBaseURL:      fallback(os.Getenv("FIXER_BASE_URL"), "http://data.fixer.io/api"),
		FXRefreshSchedule: strings.TrimSpace(envOr("FX_REFRESH_SCHEDULE", "@every 30m")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	cfg.JWTTTL = minutes("JWT_TTL_MINUTES", 60)
	cfg.FXCacheTTL = minutes("FX_CACHE_TTL_MINUTES", 60)

	var err error
	if cfg.FXProviderRPS, err = positiveFloat("FX_PROVIDER_RPS", 1); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = positiveFloat("RATE_LIMIT_RPS", 10); err != nil {
		return Config{}, err
	}
	burst := fallback(os.Getenv("RATE_LIMIT_BURST"), "20")
	if cfg.RateLimitBurst, err = strconv.Atoi(burst); err != nil || cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", burst)
	}

	trust := fallback(os.Getenv("TRUST_PROXY_HEADERS"), "false")
	if cfg.TrustProxyHeaders, err = strconv.ParseBool(trust); err != nil {
		return Config{}, fmt.Errorf("TRUST_PROXY_HEADERS must be a boolean, got %q", trust)
	}

	if cfg.Fees, err = loadFees(); err != nil {
		return Config{}, err
	}
	cfg.Fees.Currency = strings.ToUpper(fallback(os.Getenv("FEE_CURRENCY"), cfg.BaseCurrency))

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.FXProvider {
	case ProviderFixer:
		if cfg.FixerAPIKey == "" {
			return Config{}, errors.New("FIXER_API_KEY is required when FX_PROVIDER=fixer")
		}
	case ProviderStatic:
	default:
		return Config{}, fmt.Errorf("unknown FX_PROVIDER %q", cfg.FXProvider)
	}
	if len(cfg.BaseCurrency) != 3 {
		return Config{}, fmt.Errorf("BASE_CURRENCY must be a 3-letter code, got %q", cfg.BaseCurrency)
	}
	if len(cfg.Fees.Currency) != 3 {
		return Config{}, fmt.Errorf("FEE_CURRENCY must be a 3-letter code, got %q", cfg.Fees.Currency)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func loadFees() (Fees, error) {
	var fees Fees
	fields := []struct {
		key string
		def string
		dst *decimal.Decimal
	}{
		{"FEE_PERCENT", "1.5", &fees.Percent},
		{"FEE_FIXED", "0.30", &fees.Fixed},
		{"FEE_MIN", "0.50", &fees.Min},
		{"FEE_MAX", "50", &fees.Max},
		{"FX_MARKUP_PERCENT", "0.5", &fees.MarkupPercent},
	}
	for _, f := range fields {
		raw := fallback(os.Getenv(f.key), f.def)
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return Fees{}, fmt.Errorf("%s must be a non-negative number, got %q", f.key, raw)
		}
		*f.dst = d
	}
	if fees.Max.IsPositive() && fees.Min.GreaterThan(fees.Max) {
		return Fees{}, errors.New("FEE_MIN must not exceed FEE_MAX")
	}
	return fees, nil
}

func minutes(key string, def int) time.Duration {
	raw := fallback(os.Getenv(key), strconv.Itoa(def))
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return time.Duration(def) * time.Minute
}

func positiveFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, raw)
	}
	return v, nil
}

// envOr distinguishes an explicitly empty variable from an unset one.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
