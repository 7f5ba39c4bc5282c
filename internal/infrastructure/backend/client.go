package backend

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
	"strings"
	"sync"
	"time"

	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/infrastructure/metrics"
)

const defaultFailureMessage = "Request failed"

// Client speaks the storefront's JSON-over-HTTP contract. The BFF exposes
// the same paths, so the client works against either the backend or the BFF.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu        sync.Mutex
	visitorID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets a bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithVisitorID sets the X-Visitor-ID header sent on every request.
func WithVisitorID(id string) Option {
	return func(c *Client) { c.visitorID = id }
}

// NewClient creates a client targeting baseURL (e.g. "http://localhost:8000").
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// VisitorID returns the visitor identifier in use, which may have been
// assigned by the server on a previous response.
func (c *Client) VisitorID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visitorID
}

type configEnvelope struct {
	Success bool                      `json:"success"`
	Config  *domain.SiteConfiguration `json:"config"`
	Message string                    `json:"message,omitempty"`
}

type bannersEnvelope struct {
	Success bool                        `json:"success"`
	Banners []domain.NotificationBanner `json:"banners"`
	Message string                      `json:"message,omitempty"`
}

// --- OTP ---

func (c *Client) OTPStatus(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("otp_type", string(otpType))
	var resp domain.OTPResponse
	err := c.doJSON(ctx, "otp_status", http.MethodGet, "/api/otp/status/?"+q.Encode(), nil, nil, &resp)
	return otpResult(&resp, err)
}

func (c *Client) GenerateOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	var resp domain.OTPResponse
	err := c.doJSON(ctx, "otp_generate", http.MethodPost, "/api/otp/generate/", nil, req, &resp)
	return otpResult(&resp, err)
}

func (c *Client) ResendOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	var resp domain.OTPResponse
	err := c.doJSON(ctx, "otp_resend", http.MethodPost, "/api/otp/resend/", nil, req, &resp)
	return otpResult(&resp, err)
}

func (c *Client) VerifyOTP(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error) {
	var resp domain.OTPResponse
	err := c.doJSON(ctx, "otp_verify", http.MethodPost, "/api/otp/verify/", nil, req, &resp)
	return otpResult(&resp, err)
}

// otpResult keeps the decoded envelope on business failures so callers still
// see the refreshed otp_status, and turns `success: false` into an UpstreamError.
func otpResult(resp *domain.OTPResponse, err error) (*domain.OTPResponse, error) {
	if err != nil {
		if _, ok := asUpstream(err); ok {
			return resp, err
		}
		return nil, err
	}
	if !resp.Success {
		return resp, &domain.UpstreamError{StatusCode: http.StatusOK, Message: messageOr(resp.Message)}
	}
	return resp, nil
}

// --- CMS content ---

func (c *Client) SiteConfig(ctx context.Context) (*domain.SiteConfiguration, error) {
	var env configEnvelope
	if err := c.doJSON(ctx, "site_config", http.MethodGet, "/website/config/", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Config == nil {
		return nil, &domain.UpstreamError{StatusCode: http.StatusOK, Message: messageOr(env.Message)}
	}
	return env.Config, nil
}

// Sections returns the raw sections payload for sectionType.
func (c *Client) Sections(ctx context.Context, sectionType string) (json.RawMessage, error) {
	path := "/website/sections/"
	if sectionType != "" {
		path += "?" + url.Values{"section_type": {sectionType}}.Encode()
	}
	var raw json.RawMessage
	if err := c.doJSON(ctx, "sections", http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Banners(ctx context.Context, location string) ([]domain.NotificationBanner, error) {
	path := "/website/banners/"
	if location != "" {
		path += "?" + url.Values{"location": {location}}.Encode()
	}
	var env bannersEnvelope
	if err := c.doJSON(ctx, "banners", http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &domain.UpstreamError{StatusCode: http.StatusOK, Message: messageOr(env.Message)}
	}
	return env.Banners, nil
}

// DismissBanner is served by the BFF only; the backend never sees dismissals.
func (c *Client) DismissBanner(ctx context.Context, bannerID int) error {
	return c.doJSON(ctx, "banner_dismiss", http.MethodPost, "/website/banners/"+strconv.Itoa(bannerID)+"/dismiss", nil, nil, nil)
}

// UserMessages fetches /website/user/messages/<subpath> on behalf of the
// holder of bearer. rawQuery is forwarded verbatim.
func (c *Client) UserMessages(ctx context.Context, subpath, rawQuery, bearer string) (json.RawMessage, error) {
	path := "/website/user/messages/" + strings.TrimLeft(subpath, "/")
	if rawQuery != "" {
		path += "?" + rawQuery
	}
	hdr := http.Header{}
	if bearer != "" {
		hdr.Set("Authorization", "Bearer "+bearer)
	}
	var raw json.RawMessage
	if err := c.doJSON(ctx, "user_messages", http.MethodGet, path, hdr, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// doJSON performs the request and decodes the JSON response into result.
// Error bodies are decoded into result too, so envelopes survive failures.
func (c *Client) doJSON(ctx context.Context, endpoint, method, path string, hdr http.Header, body, result any) (err error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(endpoint, outcome(err)).Observe(time.Since(start).Seconds())
	}()

	var bodyReader io.Reader
	if body != nil {
		data, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("marshaling request body: %w", mErr)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if vid := c.VisitorID(); vid != "" {
		req.Header.Set("X-Visitor-ID", vid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if v := resp.Header.Get("X-Visitor-ID"); v != "" {
		c.mu.Lock()
		c.visitorID = v
		c.mu.Unlock()
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w: %v", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		// A failing server or proxy is reported like an unreachable one, even
		// when it sends a JSON message: the BFF itself answers 502 when the
		// backend behind it is down.
		return fmt.Errorf("%s %s: %w: status %d", method, path, domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		if result != nil && len(respBody) > 0 {
			_ = json.Unmarshal(respBody, result)
		}
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Detail  string `json:"detail"`
		}
		msg := ""
		if json.Unmarshal(respBody, &errResp) == nil {
			msg = firstNonEmpty(errResp.Message, errResp.Error, errResp.Detail)
		}
		return &domain.UpstreamError{StatusCode: resp.StatusCode, Message: messageOr(msg)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w: %v", domain.ErrUpstreamUnavailable, err)
		}
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := asUpstream(err); ok {
		return "rejected"
	}
	return "error"
}

func messageOr(msg string) string {
	if msg == "" {
		return defaultFailureMessage
	}
	return msg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func asUpstream(err error) (*domain.UpstreamError, bool) {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
