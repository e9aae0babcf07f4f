// Package api is the single outbound HTTP gateway to the remote API plus the typed,
// stateless wrappers for every resource it exposes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ministagram/internal/config"
	"ministagram/internal/logger"
	"ministagram/internal/tokenstore"
)

// maxResponseBytes caps how much of a response body is read into memory.
const maxResponseBytes = 8 << 20

// Client attaches the stored bearer token to every request and clears the token
// store whenever any response comes back 401. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	limiter    *rate.Limiter
	log        *zap.Logger

	Auth     *AuthAPI
	Users    *UserAPI
	Posts    *PostAPI
	Comments *CommentAPI
	Follows  *FollowAPI
	Feed     *FeedAPI
	Chat     *ChatAPI
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger; the client logs under the "Gateway" name.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = logger.OrNop(l).Named("Gateway")
	}
}

// WithRateLimit throttles outbound calls to rps requests per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a gateway for baseURL that reads the bearer token from tokens.
func NewClient(baseURL string, tokens tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthAPI{c: c}
	c.Users = &UserAPI{c: c}
	c.Posts = &PostAPI{c: c}
	c.Comments = &CommentAPI{c: c}
	c.Follows = &FollowAPI{c: c}
	c.Feed = &FeedAPI{c: c}
	c.Chat = &ChatAPI{c: c}
	return c
}

// NewFromConfig wires a gateway from the loaded configuration.
func NewFromConfig(cfg *config.Config, tokens tokenstore.Store, log *zap.Logger) *Client {
	return NewClient(cfg.APIBaseURL, tokens,
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second}),
		WithLogger(log),
		WithRateLimit(cfg.APIRateLimit),
	)
}

// Tokens exposes the store the gateway reads from.
func (c *Client) Tokens() tokenstore.Store {
	return c.tokens
}

// BaseURL is the API root every path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request. body, when non-nil, is JSON encoded; out, when non-nil,
// receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	startTime := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: rate limit: %w", method, path, err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal body: %w", method, path, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s %s: create request: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// The token is read per request: a 401 elsewhere may have cleared it since the
	// caller last looked, in which case the request simply goes out anonymous.
	token, err := c.tokens.Read(ctx)
	if err != nil {
		c.log.Warn("token read failed, sending without credentials", zap.String("request_id", requestID), zap.Error(err))
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	c.log.Debug("request done",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(startTime)))

	if resp.StatusCode == http.StatusUnauthorized {
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			c.log.Error("clearing token after 401 failed", zap.Error(clearErr))
		} else {
			c.log.Info("session token cleared after 401", zap.String("path", path))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func sendJSON[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var out T
	err := c.do(ctx, method, path, body, &out)
	return out, err
}
