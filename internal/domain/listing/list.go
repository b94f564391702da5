// Package listing holds the searchable, paginated list every data screen is built on.
package listing

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// List owns a record snapshot, a free-text query and a 1-based page cursor.
// Filtering and paging are derived from those three on every read.
//
// A List is not safe for concurrent use; the host serializes calls.
type List struct {
	pageSize int
	loaded   bool
	snapshot []records.Record
	haystack []string
	query    string
	page     int
}

// New returns an empty, not yet loaded list. pageSize < 1 panics.
func New(pageSize int) *List {
	if pageSize < 1 {
		panic(fmt.Sprintf("listing: page size must be positive, got %d", pageSize))
	}
	return &List{pageSize: pageSize, page: 1}
}

// SetSnapshot replaces the held records wholesale and goes back to page 1.
func (l *List) SetSnapshot(rs []records.Record) {
	l.snapshot = rs
	l.haystack = make([]string, len(rs))
	for i, r := range rs {
		l.haystack[i] = searchText(r)
	}
	l.loaded = true
	l.page = 1
}

// SetQuery updates the query and goes back to page 1.
func (l *List) SetQuery(q string) {
	l.query = q
	l.page = 1
}

// SetPage moves to page n, clamped to [1, totalPages].
func (l *List) SetPage(n int) {
	l.page = clamp(n, totalPages(len(l.filtered()), l.pageSize))
}

func (l *List) NextPage() { l.SetPage(l.page + 1) }
func (l *List) PrevPage() { l.SetPage(l.page - 1) }

// Loaded reports whether a snapshot has been set. An empty snapshot counts as loaded.
func (l *List) Loaded() bool  { return l.loaded }
func (l *List) Query() string { return l.query }
func (l *List) PageSize() int { return l.pageSize }
func (l *List) Len() int      { return len(l.snapshot) }

// View derives the current page from scratch.
func (l *List) View() View {
	filtered := l.filtered()
	pages := totalPages(len(filtered), l.pageSize)
	page := clamp(l.page, pages)

	start := (page - 1) * l.pageSize
	end := min(start+l.pageSize, len(filtered))
	items := make([]records.Record, 0, end-start)
	items = append(items, filtered[start:end]...)

	return View{
		Items:         items,
		Page:          page,
		PageSize:      l.pageSize,
		TotalPages:    pages,
		TotalFiltered: len(filtered),
	}
}

func (l *List) filtered() []records.Record {
	needle := strings.ToLower(l.query)
	if needle == "" {
		return l.snapshot
	}
	out := make([]records.Record, 0, len(l.snapshot))
	for i, h := range l.haystack {
		if strings.Contains(h, needle) {
			out = append(out, l.snapshot[i])
		}
	}
	return out
}

func totalPages(n, size int) int {
	return max(1, (n+size-1)/size)
}

func clamp(n, pages int) int {
	return min(max(n, 1), pages)
}
