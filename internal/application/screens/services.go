package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	"github.com/bryanwahyu/admissions-desk/internal/domain/listing"
	domain "github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
)

// Service holds the latest snapshot of every screen and derives views from it.
// It is safe for concurrent use; every view is computed on its own listing.List.
type Service struct {
	Loader   domain.Loader
	Archive  domain.Archive  // optional
	Exporter domain.Exporter // optional
	Clock    application.Clock
	Logger   *slog.Logger

	// OnRefresh is called after every refresh attempt; err is nil on success.
	OnRefresh func(name domain.Name, err error)

	mu     sync.RWMutex
	states map[domain.Name]*state
}

type state struct {
	snapshot    domain.Snapshot
	loaded      bool
	refreshedAt time.Time
	lastError   string
	fingerprint uint64
}

// ScreenView is one page of a screen plus its loading status.
type ScreenView struct {
	Name    domain.Name     `json:"name"`
	Title   string          `json:"title"`
	Columns []domain.Column `json:"columns"`
	Query   string          `json:"query"`
	listing.View
	Loading     bool       `json:"loading"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// ScreenStatus summarises one screen for the dashboard.
type ScreenStatus struct {
	Name        domain.Name `json:"name"`
	Title       string      `json:"title"`
	Total       int         `json:"total"`
	Loaded      bool        `json:"loaded"`
	RefreshedAt *time.Time  `json:"refreshed_at,omitempty"`
	LastError   string      `json:"last_error,omitempty"`
}

// ErrExportDisabled is returned by Export when no exporter is wired.
var ErrExportDisabled = errors.New("export is not configured")

type Dashboard struct {
	TotalLeads int            `json:"total_leads"`
	Loading    bool           `json:"loading"`
	Screens    []ScreenStatus `json:"screens"`
}

//
// ==== USE CASES ====
//

// Refresh fetches a screen's data and swaps its snapshot. When the fetch fails the
// previous snapshot stays in place and the error is remembered for display.
func (s *Service) Refresh(ctx context.Context, name domain.Name) error {
	screen, err := domain.Lookup(name)
	if err != nil {
		return err
	}
	ctx = logger.WithScreen(ctx, string(name))

	snap, err := s.Loader.Fetch(ctx, screen.Endpoint)
	if err != nil {
		s.mu.Lock()
		s.state(name).lastError = err.Error()
		s.mu.Unlock()
		s.log().WarnContext(ctx, "refresh failed, keeping previous snapshot", slog.String("error", err.Error()))
		s.notify(name, err)
		return fmt.Errorf("refresh %s: %w", name, err)
	}
	snap = screen.Apply(snap)
	now := s.now()
	fp := xxh3.Hash(snap.Raw)

	s.mu.Lock()
	st := s.state(name)
	changed := !st.loaded || st.fingerprint != fp
	st.snapshot = snap
	st.loaded = true
	st.refreshedAt = now
	st.lastError = ""
	st.fingerprint = fp
	s.mu.Unlock()

	s.log().InfoContext(ctx, "snapshot refreshed",
		slog.Int("records", len(snap.Records)), slog.Bool("changed", changed))
	if changed {
		s.archive(ctx, name, now, fp, snap.Raw)
	}
	s.notify(name, nil)
	return nil
}

// RefreshAll refreshes every screen in catalog order and joins the failures.
func (s *Service) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, screen := range domain.Catalog() {
		if err := s.Refresh(ctx, screen.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunRefresher refreshes everything every interval until ctx is done.
// A zero interval disables periodic refreshes.
func (s *Service) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshAll(ctx); err != nil {
				s.log().WarnContext(ctx, "periodic refresh incomplete", slog.String("error", err.Error()))
			}
		}
	}
}

// Snapshot returns the stored snapshot and whether one has been loaded.
func (s *Service) Snapshot(name domain.Name) (domain.Snapshot, bool, error) {
	if _, err := domain.Lookup(name); err != nil {
		return domain.Snapshot{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[name]
	if !ok || !st.loaded {
		return domain.Snapshot{}, false, nil
	}
	return st.snapshot, true, nil
}

// View filters and pages a screen's snapshot. page is clamped, never rejected.
func (s *Service) View(name domain.Name, query string, page int) (ScreenView, error) {
	screen, err := domain.Lookup(name)
	if err != nil {
		return ScreenView{}, err
	}

	list := listing.New(screen.PageSize)
	s.mu.RLock()
	st, ok := s.states[name]
	var (
		refreshedAt time.Time
		lastError   string
	)
	if ok {
		if st.loaded {
			list.SetSnapshot(st.snapshot.Records)
			refreshedAt = st.refreshedAt
		}
		lastError = st.lastError
	}
	s.mu.RUnlock()

	list.SetQuery(query)
	list.SetPage(page)

	v := ScreenView{
		Name:      screen.Name,
		Title:     screen.Title,
		Columns:   screen.Columns,
		Query:     query,
		View:      list.View(),
		Loading:   !list.Loaded(),
		LastError: lastError,
	}
	if !refreshedAt.IsZero() {
		v.RefreshedAt = &refreshedAt
	}
	return v, nil
}

// Export renders every page of the filtered view into one document.
func (s *Service) Export(name domain.Name, query string) ([]byte, error) {
	if s.Exporter == nil {
		return nil, ErrExportDisabled
	}
	screen, err := domain.Lookup(name)
	if err != nil {
		return nil, err
	}
	snap, _, err := s.Snapshot(name)
	if err != nil {
		return nil, err
	}

	list := listing.New(screen.PageSize)
	list.SetSnapshot(snap.Records)
	list.SetQuery(query)

	var rows [][]string
	for v := list.View(); ; v = list.View() {
		for _, r := range v.Items {
			rows = append(rows, screen.Row(r))
		}
		if !v.HasNext() {
			break
		}
		list.NextPage()
	}

	title := screen.Title
	if query != "" {
		title = fmt.Sprintf("%s (search: %q)", screen.Title, query)
	}
	return s.Exporter.Render(title, screen.Headers(), rows)
}

// Dashboard reports the total number of leads and the status of every screen.
func (s *Service) Dashboard() Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := Dashboard{Screens: make([]ScreenStatus, 0, len(domain.Catalog()))}
	for _, screen := range domain.Catalog() {
		status := ScreenStatus{Name: screen.Name, Title: screen.Title}
		if st, ok := s.states[screen.Name]; ok {
			status.Loaded = st.loaded
			status.Total = len(st.snapshot.Records)
			status.LastError = st.lastError
			if st.loaded {
				at := st.refreshedAt
				status.RefreshedAt = &at
			}
		}
		if screen.Name == domain.Leads {
			d.TotalLeads = status.Total
			d.Loading = !status.Loaded
		}
		d.Screens = append(d.Screens, status)
	}
	return d
}

// helpers

// state must be called with mu held for writing.
func (s *Service) state(name domain.Name) *state {
	if s.states == nil {
		s.states = make(map[domain.Name]*state)
	}
	st, ok := s.states[name]
	if !ok {
		st = &state{}
		s.states[name] = st
	}
	return st
}

func (s *Service) archive(ctx context.Context, name domain.Name, at time.Time, fp uint64, raw []byte) {
	if s.Archive == nil || len(raw) == 0 {
		return
	}
	key := fmt.Sprintf("snapshots/%s/%s-%016x.json", name, at.UTC().Format("20060102T150405Z"), fp)
	url, err := s.Archive.Put(ctx, key, raw)
	if err != nil {
		s.log().WarnContext(ctx, "snapshot archive failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	s.log().DebugContext(ctx, "snapshot archived", slog.String("url", url))
}

func (s *Service) notify(name domain.Name, err error) {
	if s.OnRefresh != nil {
		s.OnRefresh(name, err)
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
