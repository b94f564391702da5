package devicestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
)

// Keys match what the mobile app kept in its device storage.
const (
	keyUsername  = "username"
	keyEmail     = "email"
	keySessionID = "session_id"
	keyCreatedAt = "created_at"
)

var allKeys = []string{keyUsername, keyEmail, keySessionID, keyCreatedAt}

// Store keeps the one signed-in session of this device in a Pebble database.
type Store struct {
	db *pebble.DB
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("devicestore: path is empty")
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("devicestore: open: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces whatever session the device held before.
func (s *Store) Save(_ context.Context, sess *session.Session) error {
	b := s.db.NewBatch()
	defer b.Close()
	for k, v := range map[string]string{
		keyUsername:  sess.Username,
		keyEmail:     sess.Email,
		keySessionID: string(sess.ID),
		keyCreatedAt: sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	} {
		if err := b.Set([]byte(k), []byte(v), nil); err != nil {
			return fmt.Errorf("devicestore: set %s: %w", k, err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("devicestore: commit: %w", err)
	}
	return nil
}

// Get returns the stored session when its id matches.
func (s *Store) Get(ctx context.Context, id session.ID) (*session.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess.ID != id {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

// Current returns whichever session the device holds.
func (s *Store) Current(_ context.Context) (*session.Session, error) {
	id, ok, err := s.get(keySessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, session.ErrNotFound
	}
	sess := &session.Session{ID: session.ID(id)}
	if sess.Username, _, err = s.get(keyUsername); err != nil {
		return nil, err
	}
	if sess.Email, _, err = s.get(keyEmail); err != nil {
		return nil, err
	}
	created, _, err := s.get(keyCreatedAt)
	if err != nil {
		return nil, err
	}
	if created != "" {
		if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("devicestore: created_at: %w", err)
		}
	}
	return sess, nil
}

// Delete clears the device session. The id is not checked: logging out
// always forgets the stored username and email.
func (s *Store) Delete(_ context.Context, _ session.ID) error {
	b := s.db.NewBatch()
	defer b.Close()
	for _, k := range allKeys {
		if err := b.Delete([]byte(k), nil); err != nil {
			return fmt.Errorf("devicestore: delete %s: %w", k, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (s *Store) get(key string) (string, bool, error) {
	value, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("devicestore: get %s: %w", key, err)
	}
	defer closer.Close()
	return string(value), true, nil
}
