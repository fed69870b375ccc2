package enrich

import (
	"strings"

	"github.com/aiquira/assetrisk/internal/model"
)

// keywordRule maps a document phrase to the signal it implies.
type keywordRule struct {
	phrase      string
	signalType  string
	severity    model.Severity
	description string
}

// Rules are checked in order; each fires at most once per document.
var keywordRules = []keywordRule{
	{"underground storage tank", "environmental", model.SeverityHigh, "Underground storage tank referenced"},
	{"asbestos", "environmental", model.SeverityHigh, "Asbestos-containing material referenced"},
	{"lead paint", "environmental", model.SeverityMedium, "Lead-based paint referenced"},
	{"mold", "environmental", model.SeverityMedium, "Mold or moisture damage referenced"},
	{"foundation crack", "structural", model.SeverityHigh, "Foundation cracking referenced"},
	{"roof leak", "structural", model.SeverityMedium, "Roof leak referenced"},
	{"code violation", "permit", model.SeverityMedium, "Code violation referenced"},
	{"stop work order", "permit", model.SeverityHigh, "Stop work order referenced"},
	{"fire hazard", "safety", model.SeverityHigh, "Fire hazard referenced"},
	{"blocked egress", "safety", model.SeverityHigh, "Blocked egress referenced"},
}

// ScanKeywords extracts signals by phrase matching. It is the offline
// fallback when no API client is configured; deliberately conservative,
// it only reports phrases with an unambiguous compliance meaning.
func ScanKeywords(docs []Document) []model.ComplianceSignal {
	var signals []model.ComplianceSignal
	for _, doc := range docs {
		text := strings.ToLower(doc.Text)
		for _, rule := range keywordRules {
			if !strings.Contains(text, rule.phrase) {
				continue
			}
			signals = append(signals, model.ComplianceSignal{
				Type:        rule.signalType,
				Severity:    rule.severity,
				Description: rule.description,
				Reference:   doc.Name,
			})
		}
	}
	return signals
}
