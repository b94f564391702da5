package devicestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "device"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveGetDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, &session.Session{ID: "abc", Username: "Asha", Email: "asha@x.edu", CreatedAt: at}))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, &session.Session{ID: "abc", Username: "Asha", Email: "asha@x.edu", CreatedAt: at}, got)

	_, err = s.Get(ctx, "other")
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "abc"))
	require.NoError(t, s.Delete(ctx, "abc"))
	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &session.Session{ID: "one", Username: "A"}))
	require.NoError(t, s.Save(ctx, &session.Session{ID: "two", Username: ""}))

	cur, err := s.Current(ctx)

	require.NoError(t, err)
	assert.Equal(t, session.ID("two"), cur.ID)
	assert.Equal(t, "Guest", cur.DisplayName())
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "device")
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), &session.Session{ID: "keep", Email: "e@x"}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	cur, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "e@x", cur.Email)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}
