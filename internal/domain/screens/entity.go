package screens

import (
	"time"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// Name identifies a data screen.
type Name string

const (
	Leads        Name = "leads"
	Applications Name = "applications"
	Queries      Name = "queries"
	Users        Name = "users"
	CampusVisits Name = "campus-visits"
)

// Column is one table column: a header label over a record field.
type Column struct {
	Label    string `json:"label"`
	Key      string `json:"key"`
	Fallback string `json:"fallback,omitempty"`
}

// Cell renders the column for r, using Fallback when the field is empty.
func (c Column) Cell(r records.Record) string {
	if v := r.Text(c.Key); v != "" {
		return v
	}
	return c.Fallback
}

// Screen describes one list screen and where its data comes from.
type Screen struct {
	Name     Name     `json:"name"`
	Title    string   `json:"title"`
	Endpoint string   `json:"endpoint"`
	PageSize int      `json:"pageSize"`
	Columns  []Column `json:"columns"`

	// Keep narrows a fetched snapshot before it is stored; nil keeps everything.
	Keep func(records.Record) bool `json:"-"`
}

// Row renders r as table cells in column order.
func (s Screen) Row(r records.Record) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Cell(r)
	}
	return out
}

func (s Screen) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Label
	}
	return out
}

// Snapshot is one fetch result. It is replaced wholesale, never merged.
type Snapshot struct {
	Records   []records.Record
	Raw       []byte
	FetchedAt time.Time
}

// Apply returns a copy of snap narrowed by the screen's Keep predicate.
func (s Screen) Apply(snap Snapshot) Snapshot {
	if s.Keep == nil {
		return snap
	}
	kept := make([]records.Record, 0, len(snap.Records))
	for _, r := range snap.Records {
		if s.Keep(r) {
			kept = append(kept, r)
		}
	}
	snap.Records = kept
	return snap
}
