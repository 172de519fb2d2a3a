// Package marketplace is the HTTP client for the marketplace REST backend.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/99minutos/marketplace-console/internal/api/metrics"
	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
)

var _ ports.MarketplaceAPI = (*Client)(nil)

const maxErrorBody = 64 * 1024

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero or less disables limiting.
	RateLimit float64
	RateBurst int
	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements ports.MarketplaceAPI. Every request carries the token
// currently held by tokens as a bearer credential when one is set.
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  ports.TokenSource
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewClient(opts Options, tokens ports.TokenSource, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("marketplace: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("marketplace: base url %q must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit, burst := rate.Inf, opts.RateBurst
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if burst < 1 {
		burst = 1
	}

	return &Client{
		base:    base,
		http:    hc,
		tokens:  tokens,
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With().Str("component", "marketplace_client").Logger(),
	}, nil
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AccessToken, error) {
	var out domain.AccessToken
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, "current_user", http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	if err := c.do(ctx, "list_users", http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, "update_user", http.MethodPatch, "/users/"+itoa(id), nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeactivateUser(ctx context.Context, id int64) error {
	return c.do(ctx, "deactivate_user", http.MethodDelete, "/users/"+itoa(id), nil, nil, nil)
}

// ── Services ──────────────────────────────────────────────────────────────────

func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	out := []domain.Service{}
	if err := c.do(ctx, "list_services", http.MethodGet, "/services", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListServicesByCategory(ctx context.Context, category string) ([]domain.Service, error) {
	out := []domain.Service{}
	q := url.Values{"category": {category}}
	if err := c.do(ctx, "list_services_by_category", http.MethodGet, "/services", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeactivateService(ctx context.Context, id int64) error {
	return c.do(ctx, "deactivate_service", http.MethodDelete, "/services/"+itoa(id), nil, nil, nil)
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (c *Client) ListOrders(ctx context.Context) ([]domain.OrderWithDetails, error) {
	out := []domain.OrderWithDetails{}
	if err := c.do(ctx, "list_orders", http.MethodGet, "/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type createOrderRequest struct {
	ServiceID int64 `json:"service_id"`
}

func (c *Client) CreateOrder(ctx context.Context, serviceID int64) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", nil, createOrderRequest{ServiceID: serviceID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AcceptOrder(ctx context.Context, id int64) error {
	return c.do(ctx, "accept_order", http.MethodPost, "/orders/"+itoa(id)+"/accept", nil, nil, nil)
}

func (c *Client) CompleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, "complete_order", http.MethodPost, "/orders/"+itoa(id)+"/complete", nil, nil, nil)
}

func (c *Client) CreatePayment(ctx context.Context, orderID int64) (*domain.PaymentIntent, error) {
	var out domain.PaymentIntent
	if err := c.do(ctx, "create_payment", http.MethodPost, "/orders/"+itoa(orderID)+"/payment", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Transport ─────────────────────────────────────────────────────────────────

// do sends one request and decodes a 2xx JSON body into out. Non-2xx
// responses become *domain.APIError; transport failures wrap ErrBackend.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	code := "error"
	defer func() {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, code).Inc()
		metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit: %w", endpoint, err)
	}

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Str("request_id", reqID).Msg("backend unreachable")
		return fmt.Errorf("%s: %w: %w", endpoint, domain.ErrBackend, err)
	}
	defer resp.Body.Close()
	code = strconv.Itoa(resp.StatusCode)

	c.log.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Int("status", resp.StatusCode).
		Str("request_id", reqID).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: %w", endpoint, &domain.APIError{Status: resp.StatusCode, Detail: detail(raw)})
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w: %w", endpoint, domain.ErrBackend, err)
	}
	return nil
}

// detail extracts the backend's error message. It is either a string or,
// for request validation errors, a list of {loc, msg} objects.
func detail(raw []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var msg string
	if err := json.Unmarshal(env.Detail, &msg); err == nil {
		return msg
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
