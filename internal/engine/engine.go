package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/model"
)

// idGen produces deterministic v5 UUIDs for one scoring run. Determinism
// matters: scoring the same record at the same instant must be
// bit-identical, so IDs derive from the run namespace plus a sequence.
type idGen struct {
	ns  uuid.UUID
	seq int
}

func newIDGen(propertyID string, now time.Time) *idGen {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(propertyID+now.Format(time.RFC3339Nano)))
	return &idGen{ns: ns}
}

func (g *idGen) next(kind string) string {
	g.seq++
	return uuid.NewSHA1(g.ns, []byte(fmt.Sprintf("%s:%d", kind, g.seq))).String()
}

// Engine runs the scoring pipeline: factor calculators, market analysis,
// compliance evaluation, aggregation, issue detection, recommendation
// synthesis. It is stateless per invocation; the only shared data is the
// immutable config, so one Engine is safe for concurrent use.
type Engine struct {
	cfg Config
	now func() time.Time
}

// New creates an Engine with the given config. The config is validated
// once here; a zero-value config is rejected.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, now: time.Now}, nil
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() Config { return e.cfg }

// ScoreProperty turns a PropertyRecord into a RiskAssessment. It fails
// only when a required sub-structure is absent or a formula produces an
// impossible value; it never returns a partially populated assessment.
func (e *Engine) ScoreProperty(rec *model.PropertyRecord) (*model.RiskAssessment, error) {
	if rec == nil {
		return nil, &MissingInputError{Section: "record"}
	}
	if err := checkSections(rec); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	gen := newIDGen(rec.ID, now)

	factors := model.FactorScores{
		Location:          round2(locationRisk(rec.Location)),
		PropertyCondition: round2(conditionRisk(rec.Condition)),
		Financial:         round2(financialRisk(rec.Financial)),
	}

	trend, err := analyzeMarket(rec.Market, e.cfg)
	if err != nil {
		return nil, eris.Wrap(err, "engine: market analysis")
	}

	compliance := evaluateCompliance(rec.Compliance, rec.Signals, e.cfg, now, gen)

	score := round2(aggregateScore(factors, trend.Score, compliance.Score, e.cfg.Weights))
	level := classifyLevel(score, e.cfg)

	issues := detectIssues(rec, factors, trend, e.cfg, now, gen)
	recommendations := synthesizeRecommendations(rec, level, issues, e.cfg, now, gen)

	assessment := &model.RiskAssessment{
		ID:              gen.next("assessment"),
		PropertyID:      rec.ID,
		Score:           score,
		Level:           level,
		Factors:         factors,
		MarketTrend:     trend,
		Compliance:      compliance,
		Issues:          issues,
		Recommendations: recommendations,
		AssessedAt:      now,
	}

	zap.L().Debug("engine: property scored",
		zap.String("property_id", rec.ID),
		zap.Float64("score", score),
		zap.String("level", string(level)),
		zap.Int("issues", len(issues)),
		zap.Int("recommendations", len(recommendations)),
	)

	return assessment, nil
}

// checkSections verifies every required sub-structure is present, in a
// fixed order so the first missing section is reported deterministically.
func checkSections(rec *model.PropertyRecord) error {
	sections := []struct {
		name    string
		present bool
	}{
		{"location", rec.Location != nil},
		{"condition", rec.Condition != nil},
		{"financial", rec.Financial != nil},
		{"market", rec.Market != nil},
		{"compliance", rec.Compliance != nil},
	}
	for _, s := range sections {
		if !s.present {
			return &MissingInputError{Section: s.name}
		}
	}
	return nil
}
