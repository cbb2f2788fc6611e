package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRESTClient creates a client for the futures statistics API. A zero
// timeout leaves requests bounded only by the caller's context. A nil limiter
// disables pacing.
func NewRESTClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Endpoint builds the URL of a statistics path for one symbol and period.
func (c *RESTClient) Endpoint(path, symbol string, period Period, limit int) string {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period", string(period))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.baseURL + path + "?" + q.Encode()
}

// FetchInterest fetches an open interest history series.
func (c *RESTClient) FetchInterest(ctx context.Context, endpoint string) ([]InterestRecord, error) {
	return FetchSeries[InterestRecord](ctx, c, endpoint)
}

// FetchLongShort fetches one of the long/short ratio series.
func (c *RESTClient) FetchLongShort(ctx context.Context, endpoint string) ([]LongShortRecord, error) {
	return FetchSeries[LongShortRecord](ctx, c, endpoint)
}

// FetchSeries issues a single GET against endpoint and decodes the JSON array
// body into records of type T. It never retries; every failure is returned as
// a *FetchError. Records missing a required field are a parse failure.
func FetchSeries[T any](ctx context.Context, c *RESTClient, endpoint string) ([]T, error) {
	fail := func(kind ErrorKind, err error) ([]T, error) {
		return nil, &FetchError{Kind: kind, Endpoint: endpoint, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(KindNetwork, fmt.Errorf("rate limiter: %w", err))
		}
	}

	// Construct the GET request with context for cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(KindNetwork, fmt.Errorf("creating request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(KindNetwork, fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(KindNetwork, fmt.Errorf("reading body: %w", err))
	}

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		return fail(KindNetwork, fmt.Errorf("binance error: status %d: %s", resp.StatusCode, excerpt(body)))
	}

	if !utf8.Valid(body) {
		return fail(KindDecode, errors.New("body is not valid UTF-8"))
	}
	if !json.Valid(body) {
		return fail(KindDecode, fmt.Errorf("malformed JSON: %s", excerpt(body)))
	}

	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return fail(KindParse, fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}

func excerpt(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
