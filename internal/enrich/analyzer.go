// Package enrich extracts compliance signals from property documents,
// using Claude when an API key is configured and a keyword scanner
// otherwise. Signals feed the compliance issue list; they never change
// the compliance score formula.
package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/pkg/anthropic"
)

// Document is one property document to analyze, already extracted to text.
type Document struct {
	Name string
	Text string
}

const systemPrompt = `You are a commercial property compliance analyst. You read property documents (inspection reports, environmental assessments, permits, correspondence) and extract compliance signals.

Respond with a JSON array only, no prose. Each element:
{"type": "<environmental|structural|permit|safety|zoning>", "severity": "<low|medium|high>", "description": "<one sentence>", "reference": "<document name>"}

Report only concrete findings stated in the documents. An empty array is a valid answer.`

// Analyzer turns property documents into compliance signals.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnalyzer creates an Analyzer. A nil client selects the keyword
// scanner fallback for every analysis.
func NewAnalyzer(client anthropic.Client, modelID string, maxTokens int) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Analyzer{client: client, model: modelID, maxTokens: int64(maxTokens)}
}

// Analyze extracts compliance signals from the given documents.
func (a *Analyzer) Analyze(ctx context.Context, docs []Document) ([]model.ComplianceSignal, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if a.client == nil {
		zap.L().Debug("enrich: no API client, using keyword scanner")
		return ScanKeywords(docs), nil
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString("=== ")
		sb.WriteString(doc.Name)
		sb.WriteString(" ===\n")
		sb.WriteString(doc.Text)
		sb.WriteString("\n\n")
	}

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: sb.String()}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: analyze documents")
	}
	resp.Usage.LogCost(a.model, "enrich")

	signals, err := parseSignals(resp.Text)
	if err != nil {
		return nil, err
	}
	return normalizeSignals(signals), nil
}

// parseSignals decodes the model's JSON array, tolerating a fenced code
// block around it.
func parseSignals(text string) ([]model.ComplianceSignal, error) {
	text = strings.TrimSpace(text)
	if after, found := strings.CutPrefix(text, "```json"); found {
		text = after
	} else if after, found := strings.CutPrefix(text, "```"); found {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	var signals []model.ComplianceSignal
	if err := json.Unmarshal([]byte(text), &signals); err != nil {
		return nil, eris.Wrap(err, "enrich: parse signals")
	}
	return signals, nil
}

// normalizeSignals drops entries without a description and coerces
// unknown severities to medium.
func normalizeSignals(signals []model.ComplianceSignal) []model.ComplianceSignal {
	out := signals[:0]
	for _, s := range signals {
		if strings.TrimSpace(s.Description) == "" {
			continue
		}
		switch s.Severity {
		case model.SeverityLow, model.SeverityMedium, model.SeverityHigh:
		default:
			s.Severity = model.SeverityMedium
		}
		out = append(out, s)
	}
	return out
}
