package listing

import (
	"fmt"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// View is one rendered page of the filtered records.
type View struct {
	Items         []records.Record `json:"items"`
	Page          int              `json:"page"`
	PageSize      int              `json:"pageSize"`
	TotalPages    int              `json:"totalPages"`
	TotalFiltered int              `json:"totalItems"`
}

func (v View) HasPrev() bool { return v.Page > 1 }
func (v View) HasNext() bool { return v.Page < v.TotalPages }

// Label renders the pager caption shown under every table.
func (v View) Label() string {
	return fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages)
}
