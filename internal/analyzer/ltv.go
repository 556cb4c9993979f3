package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/ignite/adpilot/internal/domain"
)

// LTVAnalyzer compares average customer lifetime value per acquisition
// source against the account average and recommends bid adjustments toward
// the sources that bring durable customers, not just first orders.
type LTVAnalyzer struct {
	src DataSource
}

// NewLTVAnalyzer creates a lifetime-value analyzer.
func NewLTVAnalyzer(src DataSource) *LTVAnalyzer {
	return &LTVAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *LTVAnalyzer) Name() string { return "ltv" }

// Analyze implements Analyzer.
func (a *LTVAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	customers, err := a.src.Customers(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ltv customers: %w", err)
	}
	if len(customers) == 0 {
		return nil, nil
	}

	type bucket struct {
		count  int
		spend  float64
		repeat int
	}
	bySource := map[string]*bucket{}
	var totalSpend float64
	for _, c := range customers {
		totalSpend += c.LifetimeSpend
		src := c.FirstSource
		if src == "" {
			continue
		}
		b := bySource[src]
		if b == nil {
			b = &bucket{}
			bySource[src] = b
		}
		b.count++
		b.spend += c.LifetimeSpend
		if c.OrderCount > 1 {
			b.repeat++
		}
	}
	accountAvg := totalSpend / float64(len(customers))
	if accountAvg <= 0 {
		return nil, nil
	}

	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	var recs []domain.Recommendation
	for _, s := range sources {
		b := bySource[s]
		if b.count < minSegmentSize {
			continue
		}
		avg := b.spend / float64(b.count)
		adj := BidAdjustmentForRatio(avg / accountAvg)
		if adj == 0 {
			continue
		}

		verb, priority := "Increase", domain.PriorityInfo
		if adj < 0 {
			verb, priority = "Decrease", domain.PriorityImportant
		}
		repeatRate := float64(b.repeat) / float64(b.count) * 100
		recs = append(recs, domain.Recommendation{
			ID:       fmt.Sprintf("ltv_bid_%s", slug(s)),
			Priority: priority,
			Category: domain.CategoryBidStrategy,
			Recommendation: fmt.Sprintf("%s bids %+d%% on acquisition source %q based on customer lifetime value",
				verb, adj, s),
			Explanation: fmt.Sprintf("Customers from %s average $%.2f lifetime spend vs $%.2f account-wide (%.0f%% repeat purchasers, n=%d).",
				s, avg, accountAvg, repeatRate, b.count),
			DataPoints: []string{
				fmt.Sprintf("Customers: %d", b.count),
				fmt.Sprintf("Avg LTV: $%.2f", avg),
				fmt.Sprintf("Account avg LTV: $%.2f", accountAvg),
				fmt.Sprintf("Repeat rate: %.0f%%", repeatRate),
			},
			ConfidenceScore: 65,
			ConfidenceLevel: domain.ConfidenceMedium,
			Source:          a.Name(),
			Tags:            []string{"ltv", "acquisition"},
		})
	}
	return recs, nil
}
