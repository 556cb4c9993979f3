package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ignite/adpilot/internal/domain"
)

// KeywordAnalyzer mines on-site search terms for paid-search opportunities:
// queries visitors already use that convert well are strong keyword
// candidates, with a suggested CPC backed into from their conversion value.
type KeywordAnalyzer struct {
	src DataSource
}

// NewKeywordAnalyzer creates a keyword-opportunity analyzer.
func NewKeywordAnalyzer(src DataSource) *KeywordAnalyzer {
	return &KeywordAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *KeywordAnalyzer) Name() string { return "keyword_opportunity" }

const (
	minTermOccurrences = 5
	minTermConvRate    = 0.02
	maxKeywordRecs     = 10
)

// Analyze implements Analyzer.
func (a *KeywordAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	events, err := a.src.Events(ctx, accountID,
		[]domain.SiteEventType{domain.EventSearch}, lookback(DefaultLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("keyword events: %w", err)
	}
	orders, err := a.src.Orders(ctx, accountID, lookback(DefaultLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("keyword orders: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	avgOrderValue := 0.0
	if len(orders) > 0 {
		var total float64
		for _, o := range orders {
			total += o.Total
		}
		avgOrderValue = total / float64(len(orders))
	}

	type term struct {
		query     string
		count     int
		converted int
	}
	terms := map[string]*term{}
	for _, e := range events {
		q := strings.ToLower(strings.TrimSpace(e.Query))
		if q == "" {
			continue
		}
		t := terms[q]
		if t == nil {
			t = &term{query: q}
			terms[q] = t
		}
		t.count++
		if e.Converted {
			t.converted++
		}
	}

	type opportunity struct {
		term  *term
		rate  float64
		value float64
	}
	var opps []opportunity
	for _, t := range terms {
		if t.count < minTermOccurrences {
			continue
		}
		rate := float64(t.converted) / float64(t.count)
		if rate < minTermConvRate {
			continue
		}
		opps = append(opps, opportunity{
			term:  t,
			rate:  rate,
			value: rate * avgOrderValue * float64(t.count),
		})
	}
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].value != opps[j].value {
			return opps[i].value > opps[j].value
		}
		return opps[i].term.query < opps[j].term.query
	})
	if len(opps) > maxKeywordRecs {
		opps = opps[:maxKeywordRecs]
	}

	var recs []domain.Recommendation
	for _, o := range opps {
		cpc := SuggestedCPC(avgOrderValue, o.rate)
		recs = append(recs, domain.Recommendation{
			ID:       "keyword_opp_" + slug(o.term.query),
			Priority: domain.PriorityImportant,
			Category: domain.CategoryStructure,
			Recommendation: fmt.Sprintf("Add paid-search keyword %q with a max CPC around $%.2f",
				o.term.query, cpc),
			Explanation: fmt.Sprintf("Visitors searched this %d times in %d days and %.1f%% of those sessions converted; demand already exists on-site.",
				o.term.count, DefaultLookbackDays, o.rate*100),
			DataPoints: []string{
				fmt.Sprintf("Searches: %d", o.term.count),
				fmt.Sprintf("Conv rate: %.1f%%", o.rate*100),
				fmt.Sprintf("Avg order value: $%.2f", avgOrderValue),
				fmt.Sprintf("Suggested CPC: $%.2f", cpc),
			},
			ConfidenceScore: 65,
			ConfidenceLevel: domain.ConfidenceMedium,
			Source:          a.Name(),
			Platform:        domain.PlatformSearch,
			Tags:            []string{"keyword", "opportunity"},
		})
	}
	return recs, nil
}
