package engine

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aiquira/assetrisk/internal/model"
)

// RenderReport formats an assessment as a plain-text report suitable for
// CLI output or attachment to an export.
func RenderReport(rec *model.PropertyRecord, a *model.RiskAssessment) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	title := rec.Address
	if title == "" {
		title = rec.ID
	}

	p.Fprintf(&b, "Risk Assessment — %s\n", title)
	p.Fprintf(&b, "Generated: %s\n\n", a.AssessedAt.Format("2006-01-02 15:04:05 MST"))

	p.Fprintf(&b, "Overall Risk\n")
	p.Fprintf(&b, "  Score:  %.1f / 100\n", a.Score)
	p.Fprintf(&b, "  Level:  %s\n\n", strings.ToUpper(string(a.Level)))

	p.Fprintf(&b, "Factor Breakdown\n")
	p.Fprintf(&b, "  Location:           %6.1f\n", a.Factors.Location)
	p.Fprintf(&b, "  Property condition: %6.1f\n", a.Factors.PropertyCondition)
	p.Fprintf(&b, "  Financial:          %6.1f\n", a.Factors.Financial)
	p.Fprintf(&b, "  Market:             %6.1f\n", a.MarketTrend.Score)
	p.Fprintf(&b, "  Compliance:         %6.1f\n\n", a.Compliance.Score)

	p.Fprintf(&b, "Market Trend\n")
	p.Fprintf(&b, "  Direction:  %s\n", a.MarketTrend.Direction)
	p.Fprintf(&b, "  Confidence: %.0f%%\n", a.MarketTrend.Confidence*100)
	for _, f := range a.MarketTrend.Factors {
		p.Fprintf(&b, "  - %s\n", f)
	}
	b.WriteString("\n")

	p.Fprintf(&b, "Compliance: %s\n", a.Compliance.Status)
	for _, action := range a.Compliance.RequiredActions {
		p.Fprintf(&b, "  - %s\n", action)
	}
	b.WriteString("\n")

	if fin := rec.Financial; fin != nil {
		p.Fprintf(&b, "Financial Summary\n")
		p.Fprintf(&b, "  Market value:       $%d\n", int64(fin.MarketValue))
		p.Fprintf(&b, "  Rental income:      $%d\n", int64(fin.RentalIncome))
		p.Fprintf(&b, "  Operating expenses: $%d\n", int64(fin.OperatingExpenses))
		p.Fprintf(&b, "  Vacancy rate:       %.1f%%\n\n", fin.VacancyRate*100)
	}

	p.Fprintf(&b, "Issues (%d)\n", len(a.Issues))
	for _, issue := range a.Issues {
		p.Fprintf(&b, "  [%s/%s] %s\n", issue.Type, issue.Severity, issue.Description)
		if issue.EstimatedCost != nil {
			p.Fprintf(&b, "          est. cost $%d\n", int64(*issue.EstimatedCost))
		}
	}
	b.WriteString("\n")

	p.Fprintf(&b, "Recommendations (%d)\n", len(a.Recommendations))
	for _, r := range a.Recommendations {
		p.Fprintf(&b, "  [%s/%s] %s\n", r.Type, r.Priority, r.Description)
		if r.EstimatedCost != nil {
			p.Fprintf(&b, "          est. cost $%d", int64(*r.EstimatedCost))
			if r.Timeline != "" {
				p.Fprintf(&b, ", timeline %s", r.Timeline)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
