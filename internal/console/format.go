package console

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bryanwahyu/admissions-desk/internal/domain/listing"
	"github.com/bryanwahyu/admissions-desk/internal/domain/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
)

const (
	accentTag   = "[#ff69b4]"
	accentReset = "[-]"
	errorTag    = "[red]"
)

func accentText(s string) string { return accentTag + s + accentReset }

// footerText is the status line under a screen table.
func footerText(v listing.View, loading bool, lastErr string) string {
	if loading {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(v.Label())
	fmt.Fprintf(&b, "  |  %s records", humanize.Comma(int64(v.TotalFiltered)))
	b.WriteString("  |  " + pagerHint(v))
	if lastErr != "" {
		fmt.Fprintf(&b, "\n%srefresh failed: %s%s", errorTag, lastErr, accentReset)
	}
	return b.String()
}

// pagerHint shows which of Previous/Next are available.
func pagerHint(v listing.View) string {
	prev, next := "[gray]PgUp Previous[-]", "[gray]Next PgDn[-]"
	if v.HasPrev() {
		prev = accentText("PgUp") + " Previous"
	}
	if v.HasNext() {
		next = "Next " + accentText("PgDn")
	}
	return prev + "  " + next
}

func dashboardText(totalLeads int, loading bool, lastErr string) string {
	if loading {
		return "Total Leads\n\nLoading..."
	}
	text := fmt.Sprintf("Total Leads\n\n%s", accentText(humanize.Comma(int64(totalLeads))))
	if lastErr != "" {
		text += fmt.Sprintf("\n\n%s%s%s", errorTag, lastErr, accentReset)
	}
	return text
}

func profileText(s *session.Session) string {
	if s == nil {
		s = &session.Session{}
	}
	return fmt.Sprintf("%s\n\n%s\n%s", accentText("( "+s.Initial()+" )"), s.DisplayName(), s.DisplayEmail())
}

func reviewText(r *review.Review) string {
	var b strings.Builder
	for _, d := range r.Details() {
		fmt.Fprintf(&b, "%s%-12s%s %s\n", accentTag, d.Label+":", accentReset, d.Value)
	}
	if r.Brief != "" {
		fmt.Fprintf(&b, "\n%sReviewer note%s\n%s\n", accentTag, accentReset, r.Brief)
	}
	return b.String()
}
