package listing

import (
	"strings"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// Matches reports whether q occurs, case-insensitively, in the record's values
// joined by single spaces in field order. Null values contribute "".
func Matches(r records.Record, q string) bool {
	return strings.Contains(searchText(r), strings.ToLower(q))
}

// Filter keeps the records matching q, in snapshot order. An empty q keeps all.
func Filter(snapshot []records.Record, q string) []records.Record {
	if q == "" {
		return snapshot
	}
	out := make([]records.Record, 0, len(snapshot))
	for _, r := range snapshot {
		if Matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func searchText(r records.Record) string {
	return strings.ToLower(r.Joined(" "))
}
