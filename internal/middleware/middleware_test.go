package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const validToken = "6f1c1f5e-8c1a-4a53-9f39-0c6d1b0c2a10"

type mockStore struct {
	get func(ctx context.Context, id session.ID) (*session.Session, error)
}

func (m *mockStore) Save(context.Context, *session.Session) error { return nil }
func (m *mockStore) Delete(context.Context, session.ID) error     { return nil }
func (m *mockStore) Get(ctx context.Context, id session.ID) (*session.Session, error) {
	return m.get(ctx, id)
}

// ===== request id and logging =====

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var inCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = logger.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, inCtx, 20)
	assert.Equal(t, inCtx, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_KeepsCallerID(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLogging_WritesStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelInfo)
	h := RequestID(Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.EqualValues(t, 15, line["bytes"])
	assert.Equal(t, "/v1/dashboard", line["path"])
	assert.NotEmpty(t, line["request_id"])
}

// ===== metrics =====

func TestMetricsMiddleware_CountsOutcomes(t *testing.T) {
	before := GetMetrics()
	ok := MetricsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	fail := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	RecordRefresh(nil)
	RecordRefresh(errors.New("x"))
	RecordLogin(false)

	after := GetMetrics()
	assert.Equal(t, before["requests_success"].(uint64)+1, after["requests_success"])
	assert.Equal(t, before["requests_failed"].(uint64)+1, after["requests_failed"])
	assert.Equal(t, before["refreshes_total"].(uint64)+2, after["refreshes_total"])
	assert.Equal(t, before["refreshes_failed"].(uint64)+1, after["refreshes_failed"])
	assert.Equal(t, before["logins_rejected"].(uint64)+1, after["logins_rejected"])
}

// ===== rate limit =====

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	now := tb.lastRefill

	assert.True(t, tb.allowAt(now))
	assert.True(t, tb.allowAt(now))
	assert.False(t, tb.allowAt(now))
	assert.True(t, tb.allowAt(now.Add(1500*time.Millisecond)))
}

func TestRateLimit_PerClientIP(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, 0))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"))
}

func TestRateLimiter_SweepDropsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("a")

	assert.Zero(t, rl.sweep(time.Now(), time.Minute))
	assert.Equal(t, 1, rl.sweep(time.Now().Add(2*time.Minute), time.Minute))
}

// ===== session auth =====

func TestSessionAuth(t *testing.T) {
	store := &mockStore{get: func(_ context.Context, id session.ID) (*session.Session, error) {
		switch id {
		case validToken:
			return &session.Session{ID: id, Username: "Asha"}, nil
		case "00000000-0000-0000-0000-000000000000":
			return nil, errors.New("db down")
		}
		return nil, session.ErrNotFound
	}}
	var seen *session.Session
	h := SessionAuth(store, testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a uuid", "Bearer nope", http.StatusUnauthorized},
		{"unknown session", "Bearer 11111111-1111-1111-1111-111111111111", http.StatusUnauthorized},
		{"store failure", "Bearer 00000000-0000-0000-0000-000000000000", http.StatusInternalServerError},
		{"valid", "Bearer " + validToken, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "Asha", seen.Username)
			} else {
				assert.Nil(t, seen)
				assert.True(t, strings.HasPrefix(rec.Body.String(), `{"error":`))
			}
		})
	}
}

// ===== health =====

func TestHealthHandler(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"database": CheckFunc(func(context.Context) error { return nil }),
		"upstream": CheckFunc(func(context.Context) error { return errors.New("no route") }),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.Equal(t, "no route", body.Checks["upstream"].Message)
}

// ===== validation =====

func TestValidateScreen(t *testing.T) {
	name, err := ValidateScreen(" Leads ")
	require.NoError(t, err)
	assert.Equal(t, screens.Leads, name)

	_, err = ValidateScreen("reports")
	assert.ErrorIs(t, err, screens.ErrUnknownScreen)
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage("")
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	p, err = ParsePage("-4")
	require.NoError(t, err)
	assert.Equal(t, -4, p)

	_, err = ParsePage("two")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParsePage_OverflowClampsLater(t *testing.T) {
	p, err := ParsePage("99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, p)

	p, err = ParsePage("-99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, math.MinInt, p)
}

func TestValidateQuery(t *testing.T) {
	q, err := ValidateQuery("  student 1 ")
	require.NoError(t, err)
	assert.Equal(t, "  student 1 ", q)

	q, err = ValidateQuery(strings.Repeat("é", maxQueryRunes))
	require.NoError(t, err)
	assert.Len(t, []rune(q), maxQueryRunes)

	_, err = ValidateQuery(strings.Repeat("é", maxQueryRunes+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateApplicationNumber(t *testing.T) {
	assert.NoError(t, ValidateApplicationNumber("APP/2024-001"))
	assert.NoError(t, ValidateApplicationNumber(""))
	assert.ErrorIs(t, ValidateApplicationNumber("1; DROP TABLE"), ErrInvalidInput)
}

func TestValidateLimit(t *testing.T) {
	for raw, want := range map[string]int{"": 20, "0": 20, "5": 5, "500": 100} {
		got, err := ValidateLimit(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}
	_, err := ValidateLimit("many")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
