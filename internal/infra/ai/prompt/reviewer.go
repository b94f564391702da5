package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// GetSystemPrompt sets the tone and length of a reviewer brief.
func GetSystemPrompt() string {
	return `You are an admissions officer preparing a short note for a colleague who is about to review one application.

Rules:
- Plain text only, no markdown, no lists.
- At most three sentences.
- Mention the applicant's name, programme and current status.
- Point out fields that are empty or look inconsistent (for example a lead status that contradicts the application status).
- Never invent data that is not in the record.`
}

// GetUserPrompt lists the application's fields in their original order.
func GetUserPrompt(application records.Record) string {
	var b strings.Builder
	b.WriteString("Application record:\n")
	for _, f := range application.Fields() {
		v := f.Value.String()
		if v == "" {
			v = "(empty)"
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Name, v)
	}
	return b.String()
}
