package analyzer

import (
	"context"
	"fmt"

	"github.com/ignite/adpilot/internal/domain"
)

// MultiPeriodAnalyzer compares the current 30-day window against the prior
// one per campaign, flagging sustained ROAS decline and spend creep that a
// single-window view hides.
type MultiPeriodAnalyzer struct {
	src DataSource
}

// NewMultiPeriodAnalyzer creates a period-over-period analyzer.
func NewMultiPeriodAnalyzer(src DataSource) *MultiPeriodAnalyzer {
	return &MultiPeriodAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *MultiPeriodAnalyzer) Name() string { return "multi_period" }

const (
	roasDeclineThreshold = 0.15 // 15% drop period over period
	spendCreepThreshold  = 0.20 // 20% spend growth
	flatRevenueBand      = 0.05 // revenue within ±5% counts as flat
)

// Analyze implements Analyzer.
func (a *MultiPeriodAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	current, err := a.src.Snapshots(ctx, accountID, domain.PlatformBoth,
		lookback(DefaultLookbackDays), lookback(0))
	if err != nil {
		return nil, fmt.Errorf("multi-period current window: %w", err)
	}
	prior, err := a.src.Snapshots(ctx, accountID, domain.PlatformBoth,
		lookback(2*DefaultLookbackDays), lookback(DefaultLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("multi-period prior window: %w", err)
	}
	if len(current) == 0 || len(prior) == 0 {
		return nil, nil
	}

	priorByName := map[string]domain.CampaignSnapshot{}
	for _, s := range prior {
		priorByName[s.Name] = s
	}

	var recs []domain.Recommendation
	for _, cur := range current {
		prev, ok := priorByName[cur.Name]
		if !ok || cur.Spend < 100 || prev.Spend < 100 {
			continue
		}

		// Spend creep is checked first: flat revenue on growing spend
		// mathematically implies a ROAS drop, and the budget lever is the
		// more actionable finding for that shape.
		spendGrowth := (cur.Spend - prev.Spend) / prev.Spend
		revenueDelta := 0.0
		if prev.Revenue > 0 {
			revenueDelta = (cur.Revenue - prev.Revenue) / prev.Revenue
		}
		if spendGrowth > spendCreepThreshold && revenueDelta < flatRevenueBand && revenueDelta > -flatRevenueBand {
			recs = append(recs, domain.Recommendation{
				ID:       "period_creep_" + slug(cur.Name),
				Priority: domain.PriorityImportant,
				Category: domain.CategoryBudget,
				Recommendation: fmt.Sprintf("Cap budget on %q: spend grew %.0f%% period-over-period with flat revenue",
					cur.Name, spendGrowth*100),
				Explanation: "Spending more for the same revenue means marginal dollars are not converting; hold budget until efficiency recovers.",
				DataPoints: []string{
					fmt.Sprintf("Prior spend: $%.2f", prev.Spend),
					fmt.Sprintf("Current spend: $%.2f", cur.Spend),
					fmt.Sprintf("Revenue delta: %.1f%%", revenueDelta*100),
				},
				ConfidenceScore: 65,
				ConfidenceLevel: domain.ConfidenceMedium,
				Source:          a.Name(),
				Platform:        cur.Platform,
				CampaignName:    cur.Name,
				Tags:            []string{"budget"},
			})
			continue
		}

		curROAS, prevROAS := cur.ROAS(), prev.ROAS()
		if prevROAS > 0 && (prevROAS-curROAS)/prevROAS > roasDeclineThreshold {
			drop := (prevROAS - curROAS) / prevROAS * 100
			recs = append(recs, domain.Recommendation{
				ID:       "period_decline_" + slug(cur.Name),
				Priority: domain.PriorityUrgent,
				Category: domain.CategoryBidStrategy,
				Recommendation: fmt.Sprintf("Investigate %q: ROAS fell %.0f%% versus the prior %d-day period",
					cur.Name, drop, DefaultLookbackDays),
				Explanation: fmt.Sprintf("ROAS moved from %.2fx to %.2fx across consecutive windows; a sustained drop, not day-to-day noise.",
					prevROAS, curROAS),
				DataPoints: []string{
					fmt.Sprintf("Prior ROAS: %.2fx", prevROAS),
					fmt.Sprintf("Current ROAS: %.2fx", curROAS),
					fmt.Sprintf("Drop: %.0f%%", drop),
				},
				ConfidenceScore: 70,
				ConfidenceLevel: domain.ConfidenceMedium,
				Source:          a.Name(),
				Platform:        cur.Platform,
				CampaignName:    cur.Name,
				Tags:            []string{"declining"},
			})
		}
	}
	return recs, nil
}
