package upstream

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

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
)

// ErrUpstream wraps every failure talking to the admissions API.
var ErrUpstream = errors.New("upstream request failed")

const (
	loginEndpoint       = "LoginApi.php"
	applicationEndpoint = "ApplicationApi.php"
	pushTokenEndpoint   = "TockenApi.php"

	maxBodyBytes = 64 << 20
	userAgent    = "admissions-desk/1.0"
)

// Client talks to the admissions REST API. Every endpoint answers with plain JSON.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream url must be http or https, got %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}, nil
}

// Fetch implements screens.Loader.
func (c *Client) Fetch(ctx context.Context, endpoint string) (screens.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return screens.Snapshot{}, err
	}
	rs, err := records.DecodeSnapshot(body)
	if err != nil {
		return screens.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	c.logger.DebugContext(ctx, "snapshot fetched",
		slog.String("endpoint", endpoint), slog.Int("records", len(rs)), slog.Int("bytes", len(body)))
	return screens.Snapshot{Records: rs, Raw: body, FetchedAt: c.now()}, nil
}

// Authenticate implements session.Authenticator.
func (c *Client) Authenticate(ctx context.Context, empid, password string) (session.LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, loginEndpoint, map[string]string{
		"empid":    empid,
		"password": password,
	})
	if err != nil {
		return session.LoginResult{}, err
	}
	var res session.LoginResult
	if err := json.Unmarshal(body, &res); err != nil {
		return session.LoginResult{}, fmt.Errorf("%w: %s: decode: %w", ErrUpstream, loginEndpoint, err)
	}
	return res, nil
}

// Application implements review.Source.
func (c *Client) Application(ctx context.Context, number string) ([]records.Record, error) {
	body, err := c.do(ctx, http.MethodPost, applicationEndpoint, map[string]string{
		"application_number": number,
	})
	if err != nil {
		return nil, err
	}
	rs, err := records.DecodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, applicationEndpoint, err)
	}
	return rs, nil
}

// RegisterPushToken stores a device push token upstream and returns the raw reply.
func (c *Client) RegisterPushToken(ctx context.Context, token string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPost, pushTokenEndpoint, map[string]string{
		"tocken_number": token,
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s: reply is not JSON", ErrUpstream, pushTokenEndpoint)
	}
	return json.RawMessage(body), nil
}

// Check reports whether the API host answers at all. Any HTTP status counts.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	target := c.base.ResolveReference(&url.URL{Path: endpoint})

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: read body: %w", ErrUpstream, method, endpoint, err)
	}
	c.logger.DebugContext(ctx, "upstream call",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", c.now().Sub(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUpstream, method, endpoint, resp.StatusCode)
	}
	return body, nil
}
