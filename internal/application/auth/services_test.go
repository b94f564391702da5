package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	"github.com/bryanwahyu/admissions-desk/internal/application/auth"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
)

// --- mocks ---

type mockAuthenticator struct {
	authenticate func(ctx context.Context, empid, password string) (session.LoginResult, error)
	calls        int
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, empid, password string) (session.LoginResult, error) {
	m.calls++
	return m.authenticate(ctx, empid, password)
}

type memStore struct {
	mu       sync.Mutex
	sessions map[session.ID]*session.Session
	saveErr  error
}

func newMemStore() *memStore { return &memStore{sessions: map[session.ID]*session.Session{}} }

func (m *memStore) Save(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id session.ID) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id session.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

var (
	testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	testNow    = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
)

func accepted(name, email string) func(context.Context, string, string) (session.LoginResult, error) {
	return func(context.Context, string, string) (session.LoginResult, error) {
		return session.LoginResult{UserInfo: &session.UserInfo{Name: name, Email: email, Status: 1}}, nil
	}
}

func newService(a *mockAuthenticator, store *memStore) *auth.Service {
	return &auth.Service{
		Auth:   a,
		Store:  store,
		Clock:  application.FixedClock(testNow),
		Logger: testLogger,
		NewID:  func() string { return "sess-1" },
	}
}

// ===== Login =====

func TestLogin_Success(t *testing.T) {
	var gotEmp, gotPass string
	a := &mockAuthenticator{authenticate: func(_ context.Context, empid, password string) (session.LoginResult, error) {
		gotEmp, gotPass = empid, password
		return session.LoginResult{UserInfo: &session.UserInfo{Name: "Asha", Email: "asha@example.edu", Status: 1}}, nil
	}}
	store := newMemStore()
	svc := newService(a, store)

	sess, err := svc.Login(context.Background(), " E100 ", "secret")

	require.NoError(t, err)
	assert.Equal(t, "E100", gotEmp)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, session.ID("sess-1"), sess.ID)
	assert.Equal(t, "Asha", sess.Username)
	assert.Equal(t, testNow, sess.CreatedAt)

	stored, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.edu", stored.Email)
}

func TestLogin_MissingCredentials(t *testing.T) {
	a := &mockAuthenticator{authenticate: accepted("x", "y")}
	svc := newService(a, newMemStore())

	for _, tc := range []struct{ empid, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"E1", ""},
	} {
		_, err := svc.Login(context.Background(), tc.empid, tc.password)
		assert.ErrorIs(t, err, session.ErrMissingCredentials)
	}
	assert.Zero(t, a.calls)
}

func TestLogin_RejectedCarriesUpstreamMessage(t *testing.T) {
	a := &mockAuthenticator{authenticate: func(context.Context, string, string) (session.LoginResult, error) {
		return session.LoginResult{Error: "Invalid password"}, nil
	}}
	store := newMemStore()
	svc := newService(a, store)

	_, err := svc.Login(context.Background(), "E1", "bad")

	require.ErrorIs(t, err, session.ErrLoginRejected)
	var rej *session.RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Invalid password", rej.Error())
	assert.Empty(t, store.sessions)
}

func TestLogin_RejectedWithoutMessage(t *testing.T) {
	a := &mockAuthenticator{authenticate: func(context.Context, string, string) (session.LoginResult, error) {
		return session.LoginResult{UserInfo: &session.UserInfo{Name: "Asha", Status: 0}}, nil
	}}

	_, err := newService(a, newMemStore()).Login(context.Background(), "E1", "pw")

	require.ErrorIs(t, err, session.ErrLoginRejected)
	assert.EqualError(t, err, session.DefaultRejection)
}

func TestLogin_UpstreamError(t *testing.T) {
	boom := errors.New("connection refused")
	a := &mockAuthenticator{authenticate: func(context.Context, string, string) (session.LoginResult, error) {
		return session.LoginResult{}, boom
	}}

	_, err := newService(a, newMemStore()).Login(context.Background(), "E1", "pw")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, session.ErrLoginRejected)
}

func TestLogin_StoreError(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("db down")

	_, err := newService(&mockAuthenticator{authenticate: accepted("A", "a@x")}, store).
		Login(context.Background(), "E1", "pw")

	assert.ErrorContains(t, err, "db down")
}

func TestLogin_DefaultIDIsUUID(t *testing.T) {
	svc := newService(&mockAuthenticator{authenticate: accepted("A", "a@x")}, newMemStore())
	svc.NewID = nil

	sess, err := svc.Login(context.Background(), "E1", "pw")

	require.NoError(t, err)
	assert.Len(t, string(sess.ID), 36)
}

// ===== Profile and logout =====

func TestProfile_Fallbacks(t *testing.T) {
	store := newMemStore()
	svc := newService(&mockAuthenticator{authenticate: accepted("", "")}, store)
	_, err := svc.Login(context.Background(), "E1", "pw")
	require.NoError(t, err)

	p, err := svc.Profile(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, auth.Profile{Name: "Guest", Email: "No email found", Initial: "G"}, p)
}

func TestProfile_Named(t *testing.T) {
	svc := newService(&mockAuthenticator{authenticate: accepted("ravi kumar", "ravi@x.edu")}, newMemStore())
	_, err := svc.Login(context.Background(), "E1", "pw")
	require.NoError(t, err)

	p, err := svc.Profile(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "ravi kumar", p.Name)
	assert.Equal(t, "R", p.Initial)
}

func TestProfile_UnknownSession(t *testing.T) {
	_, err := newService(&mockAuthenticator{}, newMemStore()).Profile(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogout_Idempotent(t *testing.T) {
	store := newMemStore()
	svc := newService(&mockAuthenticator{authenticate: accepted("A", "a@x")}, store)
	_, err := svc.Login(context.Background(), "E1", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "sess-1"))
	require.NoError(t, svc.Logout(context.Background(), "sess-1"))

	_, err = svc.Profile(context.Background(), "sess-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
