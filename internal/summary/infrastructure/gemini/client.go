// Package gemini calls the generateContent endpoint of the Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 4 << 10
)

var (
	// ErrMalformedResponse is returned when the body does not have the
	// candidates[0].content.parts[0].text shape.
	ErrMalformedResponse = errors.New("gemini: malformed response")
	// ErrCircuitOpen is returned without a request while the breaker is open.
	ErrCircuitOpen = errors.New("gemini: circuit open")
	// ErrNoCredentials means neither an API key nor a token source was configured.
	ErrNoCredentials = errors.New("gemini: no api key or oauth token source configured")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: unexpected status %d", e.StatusCode)
}

// BreakerConfig configures the optional circuit breaker.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig trips after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Config configures a Client. Exactly one of APIKey and TokenSource is used;
// the token source wins when both are set.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	TokenSource oauth2.TokenSource
	Timeout     time.Duration
	Breaker     BreakerConfig
	HTTPClient  *http.Client
}

// Client implements the summary generator on top of generateContent.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
	logger   *slog.Logger
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" && cfg.TokenSource == nil {
		return nil, ErrNoCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gemini base url: %w", err)
	}
	endpoint := base.JoinPath("v1beta", "models", cfg.Model+":generateContent").String()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient = &http.Client{
		Transport:     httpClient.Transport,
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
		Timeout:       cfg.Timeout,
	}

	c := &Client{
		endpoint: endpoint,
		client:   httpClient,
		logger:   logger,
	}
	if cfg.TokenSource != nil {
		transport := httpClient.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		httpClient.Transport = &oauth2.Transport{Source: cfg.TokenSource, Base: transport}
	} else {
		c.apiKey = cfg.APIKey
	}

	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, logger)
	}
	return c, nil
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[string] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerConfig().FailureThreshold
	}
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// Endpoint returns the generateContent URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Generate sends prompt as a single user turn and returns the text of the
// first part of the first candidate. It never retries.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.breaker == nil {
		return c.generate(ctx, prompt)
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrCircuitOpen
	}
	return text, err
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type responsePart struct {
	Text *string `json:"text"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
}

type candidate struct {
	Content      *responseContent `json:"content"`
	FinishReason string           `json:"finishReason"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", redact(err))
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "gemini response",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	return decodeText(resp.Body)
}

func decodeText(r io.Reader) (string, error) {
	var parsed generateResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	first := parsed.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: candidate has no parts (finish reason %q)", ErrMalformedResponse, first.FinishReason)
	}
	text := first.Content.Parts[0].Text
	if text == nil || *text == "" {
		return "", fmt.Errorf("%w: empty text", ErrMalformedResponse)
	}
	return *text, nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &StatusError{StatusCode: resp.StatusCode}

	var parsed errorResponse
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		statusErr.Status = parsed.Error.Status
		statusErr.Message = parsed.Error.Message
	}
	return statusErr
}

// redact drops the request URL from transport errors so the API key in the
// query string never reaches logs.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
