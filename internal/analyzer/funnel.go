package analyzer

import (
	"context"
	"fmt"

	"github.com/ignite/adpilot/internal/domain"
	"github.com/ignite/adpilot/internal/knowledge"
)

// FunnelAnalyzer assesses each campaign against benchmarks for its funnel
// stage: CPM for awareness, CPC for consideration, ROAS for conversion and
// retention. Cost metrics grade lower-is-better; ROAS higher-is-better.
type FunnelAnalyzer struct {
	src DataSource
}

// NewFunnelAnalyzer creates a funnel-aware performance analyzer.
func NewFunnelAnalyzer(src DataSource) *FunnelAnalyzer {
	return &FunnelAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *FunnelAnalyzer) Name() string { return "funnel" }

type stageBenchmark struct {
	metric        string
	lowerIsBetter bool
	// grade cutoffs, in excellent/good/fair order
	excellent, good, fair float64
}

var stageBenchmarks = map[domain.FunnelStage]stageBenchmark{
	domain.StageAwareness:     {metric: "CPM", lowerIsBetter: true, excellent: 8, good: 15, fair: 25},
	domain.StageConsideration: {metric: "CPC", lowerIsBetter: true, excellent: 0.75, good: 1.50, fair: 3.00},
	domain.StageConversion:    {metric: "ROAS", lowerIsBetter: false, excellent: 4, good: 2.5, fair: 1.5},
	domain.StageRetention:     {metric: "ROAS", lowerIsBetter: false, excellent: 6, good: 4, fair: 2},
}

func grade(b stageBenchmark, v float64) string {
	if b.lowerIsBetter {
		switch {
		case v <= b.excellent:
			return "excellent"
		case v <= b.good:
			return "good"
		case v <= b.fair:
			return "fair"
		default:
			return "poor"
		}
	}
	switch {
	case v >= b.excellent:
		return "excellent"
	case v >= b.good:
		return "good"
	case v >= b.fair:
		return "fair"
	default:
		return "poor"
	}
}

// Analyze implements Analyzer.
func (a *FunnelAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	now := lookback(0)
	snaps, err := a.src.Snapshots(ctx, accountID, domain.PlatformBoth, lookback(DefaultLookbackDays), now)
	if err != nil {
		return nil, fmt.Errorf("funnel snapshots: %w", err)
	}

	var recs []domain.Recommendation
	for _, s := range snaps {
		if s.Spend < 50 {
			continue // not enough spend to judge
		}
		stage := knowledge.StageForType(knowledge.InferCampaignType(s.Name))
		b := stageBenchmarks[stage]

		var value float64
		switch b.metric {
		case "CPM":
			value = s.CPM()
		case "CPC":
			value = s.CPC()
		default:
			value = s.ROAS()
		}
		if value == 0 {
			continue
		}

		g := grade(b, value)
		var rec domain.Recommendation
		switch g {
		case "poor":
			rec = domain.Recommendation{
				ID:       "funnel_poor_" + slug(s.Name),
				Priority: domain.PriorityUrgent,
				Recommendation: fmt.Sprintf("Restructure %q: %s of %.2f is poor for a %s-stage campaign",
					s.Name, b.metric, value, stage),
			}
		case "fair":
			rec = domain.Recommendation{
				ID:       "funnel_fair_" + slug(s.Name),
				Priority: domain.PriorityImportant,
				Recommendation: fmt.Sprintf("Tune %q: %s of %.2f is below the %s-stage benchmark",
					s.Name, b.metric, value, stage),
			}
		case "excellent":
			rec = domain.Recommendation{
				ID:       "funnel_excellent_" + slug(s.Name),
				Priority: domain.PriorityInfo,
				Recommendation: fmt.Sprintf("%q is excellent for its %s stage (%s %.2f); a scaling candidate",
					s.Name, stage, b.metric, value),
			}
		default:
			continue
		}

		rec.Category = domain.CategoryOptimization
		rec.Explanation = fmt.Sprintf("Stage-specific assessment uses %s as the primary metric for %s campaigns; grade: %s.",
			b.metric, stage, g)
		rec.DataPoints = []string{
			fmt.Sprintf("%s: %.2f", b.metric, value),
			fmt.Sprintf("Stage: %s", stage),
			fmt.Sprintf("Spend: $%.2f", s.Spend),
		}
		rec.ConfidenceScore = 60
		rec.ConfidenceLevel = domain.ConfidenceMedium
		rec.Source = a.Name()
		rec.Platform = s.Platform
		rec.CampaignName = s.Name
		rec.Tags = []string{string(stage), g}
		recs = append(recs, rec)
	}
	return recs, nil
}
