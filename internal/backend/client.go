package backend

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
	"strings"
	"time"

	"github.com/google/uuid"

	"trailarr/internal/api"
	"trailarr/internal/logging"
	"trailarr/internal/services"
)

const maxResponseBytes = 16 << 20

// HTTPDoer is the subset of *http.Client the backend client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestObserver receives one call per completed request. Code is zero when
// no response arrived.
type RequestObserver interface {
	ObserveRequest(route string, code int, elapsed time.Duration)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "backend")
	}
}

// WithObserver attaches request instrumentation.
func WithObserver(observer RequestObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// Client talks to one Trailarr backend.
type Client struct {
	base     *url.URL
	http     HTTPDoer
	routes   routeTable
	logger   *slog.Logger
	observer RequestObserver
}

// New builds a client for baseURL. A bare host:port is treated as http.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", "base url is empty", nil)
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", "parse base url", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", fmt.Sprintf("unsupported scheme %q", base.Scheme), nil)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	client := &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		routes: defaultRoutes(),
		logger: logging.NewComponentLogger(nil, "backend"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the backend root the client targets.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// WebSocketURL returns the push channel address for topic, deriving ws or wss
// from the REST scheme.
func (c *Client) WebSocketURL(topic api.Topic) string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = c.base.Path + "/ws/" + string(topic)
	return u.String()
}

type call struct {
	route  Route
	params map[string]string
	query  url.Values
	body   any
}

// do performs the call and returns the raw body of a successful response.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	ep, ok := c.routes[cl.route]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "backend", string(cl.route), "unknown route", nil)
	}
	params := make(map[string]string, len(cl.params))
	for key, value := range cl.params {
		params[key] = url.PathEscape(value)
	}
	target := c.base.JoinPath(ep.expand(params))
	target.RawQuery = cl.query.Encode()

	var payload io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", cl.route, err)
		}
		payload = bytes.NewReader(data)
	}

	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	logger := logging.WithContext(ctx, c.logger)

	req, err := http.NewRequestWithContext(ctx, ep.method, target.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", cl.route, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl.route, 0, started)
		logger.Debug("request failed", logging.Route(string(cl.route)), logging.Error(err))
		return nil, services.Wrap(services.ErrTransport, "backend", ep.method+" "+target.Path, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(cl.route, resp.StatusCode, started)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "backend", ep.method+" "+target.Path, "read response", err)
	}
	logger.Debug("request complete",
		logging.Route(string(cl.route)),
		logging.HTTPStatus(resp.StatusCode),
		logging.Elapsed(started),
	)

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, ok := api.ErrorMessage(body)
		if !ok {
			msg = strings.TrimSpace(string(body))
			if len(msg) > 200 || strings.HasPrefix(msg, "<") {
				msg = http.StatusText(resp.StatusCode)
			}
		}
		return nil, &APIError{Route: cl.route, Status: resp.StatusCode, Message: msg}
	}
	if msg, ok := api.ErrorMessage(body); ok {
		return nil, &APIError{Route: cl.route, Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}

func (c *Client) observe(route Route, code int, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(string(route), code, time.Since(started))
	}
}

func (c *Client) logDropped(ctx context.Context, route Route, dropped int) {
	if dropped == 0 {
		return
	}
	logging.WithContext(ctx, c.logger).Debug("dropped malformed records",
		logging.Route(string(route)),
		logging.Int("dropped", dropped),
	)
}

// statusReply decodes the {"status": "..."} acknowledgement mutations return.
func statusReply(body []byte) string {
	var reply struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return ""
	}
	return reply.Status
}

var errEmptyArgument = errors.New("argument is empty")
