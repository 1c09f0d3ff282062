package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wallet-hunter/pkg/config"
)

// ── Etherscan-compatible HTTP client ────────────────────────
// Every call is a GET against one explorer base URL. Calls are retried a fixed
// number of times and paced with a fixed delay after every attempt, success or
// failure, to stay under the explorer's rate limit.

var (
	ErrRetriesExhausted = errors.New("explorer: retries exhausted")
	ErrBadEnvelope      = errors.New("explorer: malformed response envelope")
)

const maxBodyBytes = 64 << 20

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL  string
	apiKey   string
	hc       httpDoer
	attempts int
	delay    time.Duration
	timeout  time.Duration
}

// New builds a client for the configured chain.
func New(cfg *config.Config) *Client {
	return NewClient(cfg.GetExplorerURL(cfg.Chain), cfg.GetExplorerKey(cfg.Chain), nil,
		cfg.ExplorerRetries, cfg.ExplorerDelay, cfg.ExplorerTimeout)
}

// NewClient builds a client against baseURL. A nil hc uses a plain http.Client;
// the per-request timeout is applied through the request context.
func NewClient(baseURL, apiKey string, hc *http.Client, attempts int, delay, timeout time.Duration) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		hc:       hc,
		attempts: attempts,
		delay:    delay,
		timeout:  timeout,
	}
}

// Envelope is the explorer's standard response shape. Message is a pointer so a
// missing field can be told apart from an empty one.
type Envelope struct {
	Status  string          `json:"status"`
	Message *string         `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Fetch issues a GET with bounded retries. It returns the body of the first
// 2xx response, or an error wrapping ErrRetriesExhausted.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	action := actionOf(url)
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		start := time.Now()
		body, err := c.get(ctx, url)
		observe(action, start, err)
		if perr := c.pause(ctx); perr != nil {
			return nil, perr
		}
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Error().Err(err).Int("attempt", attempt).Msg("connection/request error")
	}
	exhaustedTotal.WithLabelValues(action).Inc()
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.attempts, lastErr)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func (c *Client) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ParseEnvelope decodes body and requires a message field, which catches error
// payloads served with HTTP 200.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Error().Err(err).Msg("json error")
		return nil, fmt.Errorf("%w: %w", ErrBadEnvelope, err)
	}
	if env.Message == nil {
		log.Error().Msg("json error: no message field")
		return nil, fmt.Errorf("%w: missing message", ErrBadEnvelope)
	}
	return &env, nil
}

func (e *Envelope) msg() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// FetchJSON fetches url and parses the envelope. Callers decode Result.
func (c *Client) FetchJSON(ctx context.Context, url string) (*Envelope, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(body)
}

// DecodeResult unmarshals the envelope's result into out. Explorer errors such
// as rate-limit notices arrive as a string result and fail here.
func DecodeResult(env *Envelope, out interface{}) error {
	if len(env.Result) == 0 {
		return fmt.Errorf("%w: empty result (message %q)", ErrBadEnvelope, env.msg())
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		log.Error().Err(err).Str("message", env.msg()).Msg("unexpected result shape")
		return fmt.Errorf("%w: result (message %q): %w", ErrBadEnvelope, env.msg(), err)
	}
	return nil
}
