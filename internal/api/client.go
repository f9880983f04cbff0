package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"table-order-kiosk/internal/auth"
	"table-order-kiosk/internal/envelope"
	"table-order-kiosk/internal/logger"
	"table-order-kiosk/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

// Credentials is the cached sign-in state the client reads and purges.
type Credentials interface {
	Token() string
	SetToken(token string) error
	SetUser(user model.User) error
	ClearCredentials()
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials Credentials
	Logger      *zap.Logger
	Now         func() time.Time
	// Transport replaces the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Client talks to the restaurant backend. It never retries: each call is
// one request and one outcome.
type Client struct {
	http   *resty.Client
	creds  Credentials
	logger *zap.Logger
	now    func() time.Time
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	c := &Client{
		http:   rc,
		creds:  opts.Credentials,
		logger: logger.OrNop(opts.Logger),
		now:    now,
	}
	rc.OnBeforeRequest(c.attachToken)
	return c
}

func (c *Client) attachToken(_ *resty.Client, req *resty.Request) error {
	if c.creds == nil {
		return nil
	}
	token := c.creds.Token()
	if token == "" {
		return nil
	}
	if auth.TokenExpired(token, c.now()) {
		c.logger.Info("cached token expired; clearing credentials")
		c.creds.ClearCredentials()
		return nil
	}
	req.SetAuthToken(token)
	return nil
}

// do issues one request and returns the unwrapped resource payload.
func (c *Client) do(ctx context.Context, method, path string, body any, resource string) (json.RawMessage, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	c.logger.Debug("api request", zap.String("method", method), zap.String("path", path))
	resp, err := req.Execute(method, path)
	if err != nil {
		apiErr := transportError(err)
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("kind", string(apiErr.Kind)),
			zap.Error(err),
		)
		return nil, apiErr
	}

	if resp.IsError() {
		apiErr := statusError(resp.StatusCode(), resp.Body())
		if apiErr.Kind == KindUnauthorized && c.creds != nil {
			c.logger.Warn("unauthorized; clearing stored credentials", zap.String("path", path))
			c.creds.ClearCredentials()
		}
		c.logger.Warn("api request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, apiErr
	}

	c.logger.Debug("api response", zap.String("path", path), zap.Int("status", resp.StatusCode()))
	return envelope.Unwrap(resp.Body(), resource), nil
}

func (c *Client) logShape(path string, ok bool) {
	if !ok {
		c.logger.Debug("unexpected response shape; using empty value", zap.String("path", path))
	}
}
