package fx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// FixerProvider reads the /latest endpoint of Fixer.io. The free plan only
// quotes against EUR, so callers rebase locally.
type FixerProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFixerProvider builds a client allowing at most rps upstream requests per second.
func NewFixerProvider(baseURL, apiKey string, rps float64, client *http.Client) *FixerProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FixerProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (p *FixerProvider) Name() string { return "fixer" }

// Latest fetches the current table.
func (p *FixerProvider) Latest(ctx context.Context) (Table, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return Table{}, fmt.Errorf("fixer: wait for rate limiter: %w", err)
	}

	u := p.baseURL + "/latest?" + url.Values{"access_key": {p.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Table{}, fmt.Errorf("fixer: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("fixer: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Table{}, fmt.Errorf("fixer: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Table{}, fmt.Errorf("fixer: unexpected status %d", resp.StatusCode)
	}
	return parseFixer(body)
}

func parseFixer(body []byte) (Table, error) {
	if !gjson.ValidBytes(body) {
		return Table{}, fmt.Errorf("fixer: malformed response")
	}
	res := gjson.ParseBytes(body)
	if !res.Get("success").Bool() {
		return Table{}, fmt.Errorf("fixer: error %d (%s): %s",
			res.Get("error.code").Int(), res.Get("error.type").String(), res.Get("error.info").String())
	}

	t := Table{
		Base:  strings.ToUpper(res.Get("base").String()),
		Rates: make(map[string]decimal.Decimal),
	}
	if ts := res.Get("timestamp").Int(); ts > 0 {
		t.FetchedAt = time.Unix(ts, 0).UTC()
	} else {
		t.FetchedAt = time.Now().UTC()
	}

	var parseErr error
	res.Get("rates").ForEach(func(key, value gjson.Result) bool {
		d, err := decimal.NewFromString(value.Raw)
		if err != nil {
			parseErr = fmt.Errorf("fixer: rate %s: %w", key.String(), err)
			return false
		}
		t.Rates[strings.ToUpper(key.String())] = d
		return true
	})
	if parseErr != nil {
		return Table{}, parseErr
	}
	if t.Base == "" || len(t.Rates) == 0 {
		return Table{}, fmt.Errorf("fixer: response carried no rates")
	}
	return t, nil
}
