package review

import (
	"time"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// Review is one application looked up by its number, with an optional reviewer brief.
type Review struct {
	ID          string         `json:"id"`
	Number      string         `json:"application_number"`
	Application records.Record `json:"application"`
	Brief       string         `json:"brief,omitempty"`
	ReviewedBy  string         `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Detail is one labelled line of the review card.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var detailFields = []struct{ label, key string }{
	{"ID", "Student ID"},
	{"Name", "Student Name"},
	{"Email", "Email"},
	{"Mobile", "Mobile Number"},
	{"Status", "Status"},
	{"Lead Source", "Lead Source"},
	{"Lead Status", "Lead Status"},
	{"Reg. Date", "Registration Date"},
	{"Programme", "Programme Name"},
}

// Details returns the review card lines in display order.
func (r Review) Details() []Detail {
	out := make([]Detail, len(detailFields))
	for i, f := range detailFields {
		out[i] = Detail{Label: f.label, Value: r.Application.Text(f.key)}
	}
	return out
}
