// Package api talks to the back-office REST API: list pages, single
// records, create/update/delete and login. Every failure comes back as an
// *Error so callers can tell transport, validation, auth and not-found
// failures apart.
package api

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
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 20 * time.Second
	maxBodyBytes   = 10 << 20
)

type Config struct {
	BaseURL string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64
	Burst     int

	// PerPage is sent as per_page on list calls when positive.
	PerPage int

	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	base    *url.URL
	cfg     Config
	hc      *http.Client
	session *Session
	limiter *rate.Limiter
	log     *slog.Logger
	newID   func() string
}

func NewClient(cfg Config, session *Session) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api: missing base URL (set --api-url or TRUSTDESK_API_URL)")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL must be http or https: %q", raw)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if session == nil {
		session = NewSession("")
	}
	c := &Client{
		base:    base,
		cfg:     cfg,
		hc:      cfg.HTTPClient,
		session: session,
		log:     cfg.Logger,
		newID:   uuid.NewString,
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) BaseURL() string { return c.base.String() }

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// anonymous requests skip the bearer token and the expiry check.
	anonymous bool
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// do sends req and decodes a 2xx JSON body into out (when out is non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	if !req.anonymous && c.session.Expired() {
		return &Error{Kind: KindAuth, Message: msgAuth}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Classify(err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqID := c.newID()
	hreq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), req.body)
	if err != nil {
		return &Error{Kind: KindTransport, Message: msgTransport, Err: err, RequestID: reqID}
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("X-Request-ID", reqID)
	if req.contentType != "" {
		hreq.Header.Set("Content-Type", req.contentType)
	}
	if ua := strings.TrimSpace(c.cfg.UserAgent); ua != "" {
		hreq.Header.Set("User-Agent", ua)
	}
	if tok := c.session.Token(); tok != "" && !req.anonymous {
		hreq.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.hc.Do(hreq)
	if err != nil {
		c.log.Warn("api request failed", "method", req.method, "path", req.path, "request_id", reqID, "error", err)
		ae := Classify(err)
		ae.RequestID = reqID
		return ae
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		ae := Classify(err)
		ae.RequestID = reqID
		return ae
	}
	c.log.Debug("api request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := fromResponse(resp.StatusCode, body, reqID)
		c.log.Warn("api request rejected", "method", req.method, "path", req.path, "status", resp.StatusCode, "kind", ae.Kind, "request_id", reqID)
		return ae
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: msgDecode, Err: err, RequestID: reqID}
	}
	return nil
}
