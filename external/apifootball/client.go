package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
	"github.com/arieljmnz/quiniela-backend/internal/platform/resilience"
	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

const (
	defaultBaseURL  = "https://v3.football.api-sports.io"
	defaultTimeout  = 15 * time.Second
	apiKeyHeader    = "x-apisports-key"
	maxResponseSize = 4 << 20
)

var apiKeyHeaderRegex = regexp.MustCompile(`(?i)x-apisports-key[:=]\s*\S+`)
var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the API-Football v3 REST API. Failed requests are not
// retried; the weekly flow degrades to samples instead.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Ready reports whether an API key is configured.
func (c *Client) Ready() bool {
	return c.apiKey != ""
}

type fixturesEnvelope struct {
	Errors   any           `json:"errors"`
	Results  int           `json:"results"`
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

// FetchFixturesByLeague lists a league's fixtures between two dates
// inclusive. Dates are sent in UTC.
func (c *Client) FetchFixturesByLeague(ctx context.Context, leagueRefID int64, season int, from, to time.Time) ([]usecase.ExternalFixture, error) {
	if leagueRefID <= 0 {
		return nil, fmt.Errorf("league ref id must be greater than zero")
	}
	if season <= 0 {
		return nil, fmt.Errorf("season must be greater than zero")
	}

	query := url.Values{}
	query.Set("league", fmt.Sprintf("%d", leagueRefID))
	query.Set("season", fmt.Sprintf("%d", season))
	query.Set("from", from.UTC().Format("2006-01-02"))
	query.Set("to", to.UTC().Format("2006-01-02"))
	query.Set("timezone", "UTC")

	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, "/fixtures", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d: %w", leagueRefID, err)
	}
	if messages := envelopeErrors(envelope.Errors); len(messages) > 0 {
		return nil, fmt.Errorf("fetch fixtures league=%d: provider errors: %s", leagueRefID, strings.Join(messages, "; "))
	}

	fixtures := make([]usecase.ExternalFixture, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		if item.Fixture.ID <= 0 {
			continue
		}
		kickoff, err := parseFixtureDate(item.Fixture.Date)
		if err != nil {
			c.logger.WarnContext(ctx, "skip fixture with unparseable date",
				"fixture_id", item.Fixture.ID, "date", item.Fixture.Date)
			continue
		}
		fixtures = append(fixtures, usecase.ExternalFixture{
			ExternalID: item.Fixture.ID,
			LeagueName: strings.TrimSpace(item.League.Name),
			HomeTeam:   strings.TrimSpace(item.Teams.Home.Name),
			AwayTeam:   strings.TrimSpace(item.Teams.Away.Name),
			KickoffAt:  kickoff,
			Status:     strings.TrimSpace(item.Fixture.Status.Short),
			HomeScore:  item.Goals.Home,
			AwayScore:  item.Goals.Away,
		})
	}
	sort.SliceStable(fixtures, func(i, j int) bool {
		return fixtures[i].KickoffAt.Before(fixtures[j].KickoffAt)
	})
	return fixtures, nil
}

type statusEnvelope struct {
	Errors any `json:"errors"`
	Response struct {
		Account struct {
			Email string `json:"email"`
		} `json:"account"`
		Subscription struct {
			Active bool `json:"active"`
		} `json:"subscription"`
		Requests struct {
			Current  int `json:"current"`
			LimitDay int `json:"limit_day"`
		} `json:"requests"`
	} `json:"response"`
}

func (c *Client) accountStatus(ctx context.Context) (statusEnvelope, error) {
	var envelope statusEnvelope
	if err := c.doJSON(ctx, "/status", nil, &envelope); err != nil {
		return statusEnvelope{}, fmt.Errorf("ping provider: %w", err)
	}
	if messages := envelopeErrors(envelope.Errors); len(messages) > 0 {
		return statusEnvelope{}, fmt.Errorf("ping provider: %s", strings.Join(messages, "; "))
	}
	return envelope, nil
}

// Ping verifies the credential against the account status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.accountStatus(ctx)
	return err
}

// Quota reports the credential's request usage for the current day.
func (c *Client) Quota(ctx context.Context) (used, limit int, err error) {
	envelope, err := c.accountStatus(ctx)
	if err != nil {
		return 0, 0, err
	}
	return envelope.Response.Requests.Current, envelope.Response.Requests.LimitDay, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if query != nil {
		if encoded := query.Encode(); encoded != "" {
			fullURL += "?" + encoded
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: circuit breaker is open", errAPIFootballTransient)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && IsTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}
	defer func() { _ = resp.Body.Close() }()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxResponseSize)); err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.Bytes()))
		if isTransientStatus(resp.StatusCode) {
			reqErr = fmt.Errorf("%w: %v", errAPIFootballTransient, reqErr)
		}
		c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "status", resp.StatusCode)
		return nil, reqErr
	}

	raw := make([]byte, buf.Len())
	copy(raw, buf.Bytes())
	return raw, nil
}

// IsTransient reports whether err came from an outage rather than a bad
// request.
func IsTransient(err error) bool {
	return stderrors.Is(err, errAPIFootballTransient)
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// envelopeErrors flattens the provider's errors field, which is an empty
// array on success but an object of message strings on failure.
func envelopeErrors(raw any) []string {
	switch value := raw.(type) {
	case map[string]any:
		if len(value) == 0 {
			return nil
		}
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(value))
		for _, key := range keys {
			out = append(out, fmt.Sprintf("%s: %v", key, value[key]))
		}
		return out
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}

func parseFixtureDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyHeaderRegex.ReplaceAllString(value, apiKeyHeader+": REDACTED")
}

func abbreviateBody(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
