package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/ignite/adpilot/internal/analyzer"
	"github.com/ignite/adpilot/internal/domain"
	"github.com/ignite/adpilot/internal/knowledge"
)

// MetricsSource supplies the pre-aggregated campaign snapshots and trend
// indicators the pipeline starts from.
type MetricsSource interface {
	Snapshots(ctx context.Context, accountID string, platform domain.Platform, since, until time.Time) ([]domain.CampaignSnapshot, error)
	Trends(ctx context.Context, accountID string, platform domain.Platform) (map[string]domain.TrendSet, error)
}

// Engine runs the full recommendation pipeline: context building, knowledge
// base matching (static plus learnings), analyzer fan-out, confidence
// scoring, deduplication, and ordering.
type Engine struct {
	kb           *knowledge.KnowledgeBase
	runner       *analyzer.Runner
	metrics      MetricsSource
	lookbackDays int
}

// New creates the engine. The learning store is injected into the knowledge
// base by the caller, not loaded lazily, so there is no hidden coupling.
// A non-positive lookbackDays falls back to the shared analyzer window.
func New(kb *knowledge.KnowledgeBase, runner *analyzer.Runner, metrics MetricsSource, lookbackDays int) *Engine {
	if lookbackDays <= 0 {
		lookbackDays = analyzer.DefaultLookbackDays
	}
	return &Engine{kb: kb, runner: runner, metrics: metrics, lookbackDays: lookbackDays}
}

// Generate produces the prioritized recommendation list for an account.
// Platform may be "both" to cover every channel.
func (e *Engine) Generate(ctx context.Context, accountID string, platform domain.Platform) ([]domain.Recommendation, error) {
	if platform == "" {
		platform = domain.PlatformBoth
	}
	since := time.Now().AddDate(0, 0, -e.lookbackDays)
	campaigns, err := e.metrics.Snapshots(ctx, accountID, platform, since, time.Now())
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	trends, err := e.metrics.Trends(ctx, accountID, platform)
	if err != nil {
		log.Printf("[engine] trend lookup failed for account %s, proceeding without: %v", accountID, err)
		trends = nil
	}

	recs := e.FromCampaigns(ctx, accountID, campaigns, trends)

	if e.runner != nil {
		results := e.runner.Run(ctx, accountID)
		recs = append(recs, analyzer.Merge(results)...)
	}

	recs = Dedupe(recs)
	Sort(recs)
	return recs, nil
}

// FromCampaigns matches each campaign against the knowledge base and scores
// the matches. It is pure with respect to the inputs apart from the
// learning applied-count side effect inside matching.
func (e *Engine) FromCampaigns(ctx context.Context, accountID string, campaigns []domain.CampaignSnapshot, trends map[string]domain.TrendSet) []domain.Recommendation {
	var recs []domain.Recommendation
	for _, c := range campaigns {
		actx := knowledge.BuildContext(c, trends[c.Name])
		matches := e.kb.FindMatchesWithLearnings(ctx, actx, accountID)
		for _, m := range matches {
			score, factors := Score(m, actx)
			recs = append(recs, domain.Recommendation{
				ID:              m.RuleID + "_" + idSuffix(c.Name),
				Priority:        m.Priority,
				Category:        m.Category,
				Recommendation:  m.Recommendation,
				Explanation:     m.Explanation,
				DataPoints:      m.DataPoints,
				ConfidenceScore: score,
				ConfidenceLevel: domain.LevelForScore(score),
				Factors:         factors,
				Source:          m.Source,
				Platform:        c.Platform,
				CampaignName:    c.Name,
				Tags:            m.Tags,
			})
		}
	}
	return recs
}

// Confidence score bounds. Scores are clamped so no recommendation ever
// presents as certain or as worthless.
const (
	baseScore = 50
	minScore  = 20
	maxScore  = 100
)

// Score computes the confidence score for one match, recording every factor
// applied as a human-readable string so the result is explainable.
func Score(m knowledge.Match, c knowledge.AnalysisContext) (int, []string) {
	score := baseScore
	var factors []string
	apply := func(delta int, reason string) {
		score += delta
		factors = append(factors, fmt.Sprintf("%+d: %s", delta, reason))
	}

	switch m.Confidence {
	case knowledge.TierHigh:
		apply(20, "high-confidence rule")
	case knowledge.TierMedium:
		apply(10, "medium-confidence rule")
	}

	switch {
	case c.Conversions > 50:
		apply(15, "strong conversion volume (>50)")
	case c.Conversions > 20:
		apply(10, "solid conversion volume (>20)")
	case c.Conversions < 10:
		apply(-10, "thin conversion volume (<10)")
	}

	if c.Spend > 1000 {
		apply(10, "significant spend (>$1000)")
	} else if c.Spend < 100 {
		apply(-10, "low spend (<$100)")
	}

	if trendAligned(m.Tags, c) {
		apply(5, "trend direction supports the rule")
	}
	if m.Priority == domain.PriorityUrgent {
		apply(5, "urgent-priority rule")
	}

	if score > maxScore {
		score = maxScore
	}
	if score < minScore {
		score = minScore
	}
	return score, factors
}

// trendAligned reports whether the context's trend direction matches a
// direction tag carried by the rule.
func trendAligned(tags []string, c knowledge.AnalysisContext) bool {
	for _, t := range tags {
		switch t {
		case "declining":
			if c.ROASTrend == domain.TrendDeclining || c.CTRTrend == domain.TrendDeclining {
				return true
			}
		case "improving":
			if c.ROASTrend == domain.TrendImproving || c.CTRTrend == domain.TrendImproving {
				return true
			}
		}
	}
	return false
}

// Dedupe collapses duplicate recommendations, keeping the one with the
// higher confidence score. Only rule matches collapse on the base rule id:
// their ids share a base key and differ by campaign suffix, so the same rule
// firing across campaigns surfaces once. Analyzer suggestions already carry
// one id per keyword, product, segment, or campaign; collapsing those on the
// two-token prefix would reduce every analyzer to a single finding, so they
// only collapse on an exact id repeat.
func Dedupe(recs []domain.Recommendation) []domain.Recommendation {
	best := map[string]int{} // dedupe key -> index into out
	var out []domain.Recommendation
	for _, r := range recs {
		key := dedupeKey(r)
		if i, ok := best[key]; ok {
			if r.ConfidenceScore > out[i].ConfidenceScore {
				out[i] = r
			}
			continue
		}
		best[key] = len(out)
		out = append(out, r)
	}
	return out
}

func dedupeKey(r domain.Recommendation) string {
	switch r.Source {
	case knowledge.SourceKnowledgeBase, knowledge.SourceLearning:
		return domain.BaseRuleID(r.ID)
	default:
		return r.ID
	}
}

// Sort orders recommendations by ascending priority, then descending
// confidence within a priority bucket.
func Sort(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority < recs[j].Priority
		}
		return recs[i].ConfidenceScore > recs[j].ConfidenceScore
	})
}

// idSuffix turns a campaign name into the per-campaign id suffix.
func idSuffix(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ' || r == '-' || r == '/':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "campaign"
	}
	return string(out)
}
