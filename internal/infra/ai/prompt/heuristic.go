package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// required are the fields a reviewer expects on every application.
var required = []string{"Student Name", "Email", "Mobile Number", "Programme Name", "Status"}

// Heuristic writes a brief without calling a model. It only looks at which
// fields are filled in and how the status fields relate.
type Heuristic struct{}

func (Heuristic) Brief(_ context.Context, application records.Record) (string, error) {
	return HeuristicBrief(application), nil
}

// HeuristicBrief summarises an application in at most three sentences.
func HeuristicBrief(application records.Record) string {
	name := orUnknown(application.Text("Student Name"), "Unnamed applicant")
	programme := orUnknown(application.Text("Programme Name"), "an unspecified programme")
	status := application.Text("Status")
	summary := fmt.Sprintf("%s applied for %s and has no status yet.", name, programme)
	if status != "" {
		summary = fmt.Sprintf("%s applied for %s and is currently %s.", name, programme, strings.ToLower(status))
	}
	sentences := []string{summary}

	var missing []string
	for _, key := range required {
		if application.Text(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sentences = append(sentences, fmt.Sprintf("Missing: %s.", strings.Join(missing, ", ")))
	}

	lead := application.Text("Lead Status")
	if strings.EqualFold(status, "Verified") && lead != "" && !strings.EqualFold(lead, "Converted") {
		sentences = append(sentences, fmt.Sprintf("Lead status is still %q although the application is verified.", lead))
	}
	return strings.Join(sentences, " ")
}

func orUnknown(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
