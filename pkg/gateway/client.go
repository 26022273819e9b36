// Package gateway issues the ticket store's REST operations and
// normalizes every failure into an *Error. It performs no retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// DefaultTimeout bounds each request so a hung store surfaces as a
// network failure.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// Operation names used in errors and logs.
const (
	OpList         = "list"
	OpCreate       = "create"
	OpUpdateStatus = "update_status"
	OpClassify     = "classify"
	OpStats        = "stats"
)

// Client talks to the ticket store rooted at a base URL such as
// http://localhost:8000/api.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
	requestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client for the store at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	c := &Client{
		base:      u,
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: "ticket-desk",
		logger:    zap.NewNop(),
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured store root.
func (c *Client) BaseURL() string { return c.base.String() }

// ListTickets returns the tickets matching q in server order.
func (c *Client) ListTickets(ctx context.Context, q query.Query) ([]model.Ticket, error) {
	var tickets []model.Ticket
	rid, err := c.do(ctx, OpList, http.MethodGet, "/tickets/", q.Values(), nil, &tickets)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		return nil, c.decodeErr(OpList, rid, errors.New("expected a list of tickets"))
	}
	for i := range tickets {
		if verr := tickets[i].Validate(); verr != nil {
			return nil, c.decodeErr(OpList, rid, fmt.Errorf("ticket %d: %w", i, verr))
		}
	}
	return tickets, nil
}

// createRequest is the wire body for ticket creation.
type createRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
	Status      model.Status   `json:"status"`
}

// CreateTicket submits a new ticket. Callers validate the draft first;
// the gateway sends whatever it is given.
func (c *Client) CreateTicket(ctx context.Context, d model.Draft) (model.Ticket, error) {
	status := d.Status
	if status == "" {
		status = model.StatusOpen
	}
	body := createRequest{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Category:    d.Category,
		Priority:    d.Priority,
		Status:      status,
	}
	var t model.Ticket
	rid, err := c.do(ctx, OpCreate, http.MethodPost, "/tickets/", nil, body, &t)
	if err != nil {
		return model.Ticket{}, err
	}
	if verr := t.Validate(); verr != nil {
		return model.Ticket{}, c.decodeErr(OpCreate, rid, verr)
	}
	return t, nil
}

// UpdateStatus sets one ticket's status.
func (c *Client) UpdateStatus(ctx context.Context, id model.TicketID, status model.Status) (model.Ticket, error) {
	path := "/tickets/" + url.PathEscape(string(id)) + "/"
	var t model.Ticket
	rid, err := c.do(ctx, OpUpdateStatus, http.MethodPatch, path, nil, map[string]model.Status{"status": status}, &t)
	if err != nil {
		return model.Ticket{}, err
	}
	if verr := t.Validate(); verr != nil {
		return model.Ticket{}, c.decodeErr(OpUpdateStatus, rid, verr)
	}
	return t, nil
}

// Classify asks the store for a category/priority suggestion.
func (c *Client) Classify(ctx context.Context, description string) (model.Suggestion, error) {
	var s model.Suggestion
	rid, err := c.do(ctx, OpClassify, http.MethodPost, "/tickets/classify/", nil, map[string]string{"description": description}, &s)
	if err != nil {
		return model.Suggestion{}, err
	}
	if verr := s.Validate(); verr != nil {
		return model.Suggestion{}, c.decodeErr(OpClassify, rid, verr)
	}
	return s, nil
}

// Stats fetches the aggregate counters. Missing counters decode as zero.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	if _, err := c.do(ctx, OpStats, http.MethodGet, "/tickets/stats/", nil, nil, &s); err != nil {
		return model.Stats{}, err
	}
	return s, nil
}

func (c *Client) endpoint(path string, params url.Values) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return &u
}

// do performs one round trip and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, in, out any) (string, error) {
	rid := c.requestID()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return rid, &Error{Kind: KindNetwork, Op: op, RequestID: rid, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	target := c.endpoint(path, params)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return rid, &Error{Kind: KindNetwork, Op: op, RequestID: rid, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", rid)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("url", target.String()),
			zap.String("request_id", rid),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return rid, &Error{Kind: KindNetwork, Op: op, RequestID: rid, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return rid, &Error{Kind: KindNetwork, Op: op, RequestID: rid, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", target.String()),
		zap.String("request_id", rid),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rid, &Error{
			Kind:      KindServer,
			Op:        op,
			Status:    resp.StatusCode,
			Message:   serverMessage(raw),
			RequestID: rid,
		}
	}

	if out == nil {
		return rid, nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return rid, c.decodeErr(op, rid, errors.New("empty response body"))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return rid, c.decodeErr(op, rid, err)
	}
	return rid, nil
}

func (c *Client) decodeErr(op, rid string, err error) error {
	c.logger.Warn("malformed response",
		zap.String("op", op),
		zap.String("request_id", rid),
		zap.Error(err),
	)
	return &Error{Kind: KindDecode, Op: op, RequestID: rid, Err: err}
}

// serverMessage extracts human-readable error text from a failure body.
// It understands {"detail": "..."}, {"error": "..."} / {"error":
// {"message": "..."}}, and field-error maps such as {"title": ["This
// field is required."]}. Anything else is returned as trimmed text.
func serverMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return truncate(string(raw), 200)
	}

	for _, key := range []string{"detail", "message", "error"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(v, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		var msgs []string
		if json.Unmarshal(obj[k], &msgs) == nil && len(msgs) > 0 {
			parts = append(parts, k+": "+strings.Join(msgs, " "))
			continue
		}
		var s string
		if json.Unmarshal(obj[k], &s) == nil && s != "" {
			parts = append(parts, k+": "+s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "; ")
	}
	return truncate(string(raw), 200)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
