package screens

import (
	"fmt"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

var studentColumns = []Column{
	{Label: "ID", Key: "Student ID"},
	{Label: "Name", Key: "Student Name"},
	{Label: "Email", Key: "Email"},
	{Label: "Mobile", Key: "Mobile Number"},
	{Label: "Status", Key: "Status"},
	{Label: "Lead Source", Key: "Lead Source"},
	{Label: "Lead Status", Key: "Lead Status"},
	{Label: "Reg. Date", Key: "Registration Date"},
	{Label: "App No.", Key: "Application Number"},
	{Label: "Programme", Key: "Programme Name"},
}

// Catalog lists every data screen in menu order.
func Catalog() []Screen {
	return []Screen{
		{
			Name:     Leads,
			Title:    "Leads",
			Endpoint: "StudentsApi.php",
			PageSize: 50,
			Columns:  studentColumns,
		},
		{
			Name:     Applications,
			Title:    "Applications",
			Endpoint: "StudentsApi.php",
			PageSize: 50,
			Columns:  studentColumns,
			Keep:     verified,
		},
		{
			Name:     Users,
			Title:    "Users",
			Endpoint: "UsersApi.php",
			PageSize: 15,
			Columns: []Column{
				{Label: "Type", Key: "Type"},
				{Label: "Name", Key: "Name"},
				{Label: "Email", Key: "Email"},
				{Label: "Mobile", Key: "Mobile"},
			},
		},
		{
			Name:     Queries,
			Title:    "Student Queries",
			Endpoint: "QueryApi.php",
			PageSize: 15,
			Columns: []Column{
				{Label: "Application No", Key: "Application Number"},
				{Label: "Student Name", Key: "Student Name"},
				{Label: "Programme Name", Key: "Programme Name"},
				{Label: "Query", Key: "Query"},
				{Label: "Reply", Key: "Reply", Fallback: "No Reply"},
				{Label: "Query Date", Key: "Query Date"},
			},
		},
		{
			Name:     CampusVisits,
			Title:    "Campus Visits",
			Endpoint: "CampusVisitApi.php",
			PageSize: 15,
			Columns: []Column{
				{Label: "Applicant Name", Key: "Student Name"},
				{Label: "Email", Key: "Email"},
				{Label: "Mobile", Key: "Mobile"},
				{Label: "Scheduled Date", Key: "Scheduled Date"},
				{Label: "Scheduled Time", Key: "Scheduled Time"},
				{Label: "Number of Guests", Key: "Number of Guests"},
			},
		},
	}
}

// Lookup finds a screen by name.
func Lookup(name Name) (Screen, error) {
	for _, s := range Catalog() {
		if s.Name == name {
			return s, nil
		}
	}
	return Screen{}, fmt.Errorf("%w: %s", ErrUnknownScreen, name)
}

// Applications only shows leads whose Status is exactly "Verified".
func verified(r records.Record) bool {
	return r.Text("Status") == "Verified"
}
