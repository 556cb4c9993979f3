package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/ignite/adpilot/internal/domain"
)

// CannibalizationAnalyzer scores each organic/paid keyword overlap for paid
// spend wasted where organic already captures the click. Scores are 0-100;
// at or above the cutoff the keyword is flagged as cannibalized. The inverse
// case, weak organic rank with strong paid ROAS, is a paid opportunity.
type CannibalizationAnalyzer struct {
	src DataSource
}

// NewCannibalizationAnalyzer creates an organic/paid overlap analyzer.
func NewCannibalizationAnalyzer(src DataSource) *CannibalizationAnalyzer {
	return &CannibalizationAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *CannibalizationAnalyzer) Name() string { return "cannibalization" }

const cannibalizedCutoff = 50

// cannibalizationScore weighs how likely paid clicks on this keyword are
// clicks organic would have captured anyway. Product-tuned weights.
func cannibalizationScore(k domain.KeywordOverlap) int {
	score := 0
	switch {
	case k.OrganicRank > 0 && k.OrganicRank <= 3:
		score += 40
	case k.OrganicRank > 0 && k.OrganicRank <= 10:
		score += 25
	}
	if k.OrganicCTR >= 5 {
		score += 20
	} else if k.OrganicCTR >= 2 {
		score += 10
	}
	if k.PaidCPC >= 1 {
		score += 15
	}
	if k.PaidClicks >= 50 {
		score += 15
	}
	if k.PaidROAS < 1 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Analyze implements Analyzer.
func (a *CannibalizationAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	overlaps, err := a.src.KeywordOverlaps(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("cannibalization overlaps: %w", err)
	}
	if len(overlaps) == 0 {
		return nil, nil
	}
	sort.Slice(overlaps, func(i, j int) bool { return overlaps[i].Keyword < overlaps[j].Keyword })

	var recs []domain.Recommendation
	for _, k := range overlaps {
		score := cannibalizationScore(k)
		switch {
		case score >= cannibalizedCutoff:
			recs = append(recs, domain.Recommendation{
				ID:       "cannibal_paid_" + slug(k.Keyword),
				Priority: domain.PriorityImportant,
				Category: domain.CategoryBidStrategy,
				Recommendation: fmt.Sprintf("Pause or sharply reduce paid bids on %q: organic already owns this query (score %d/100)",
					k.Keyword, score),
				Explanation: fmt.Sprintf("Organic ranks %.0f with %.1f%% CTR while paid spends $%.2f at $%.2f CPC; most paid clicks here are clicks organic would capture.",
					k.OrganicRank, k.OrganicCTR, k.PaidSpend, k.PaidCPC),
				DataPoints: []string{
					fmt.Sprintf("Cannibalization score: %d/100", score),
					fmt.Sprintf("Organic rank: %.0f", k.OrganicRank),
					fmt.Sprintf("Paid spend: $%.2f", k.PaidSpend),
					fmt.Sprintf("Paid ROAS: %.2fx", k.PaidROAS),
				},
				ConfidenceScore: 70,
				ConfidenceLevel: domain.ConfidenceMedium,
				Source:          a.Name(),
				Platform:        domain.PlatformSearch,
				Tags:            []string{"cannibalization", "cost"},
			})
		case k.OrganicRank > 10 && k.PaidROAS >= 2:
			recs = append(recs, domain.Recommendation{
				ID:       "cannibal_opp_" + slug(k.Keyword),
				Priority: domain.PriorityInfo,
				Category: domain.CategoryBidStrategy,
				Recommendation: fmt.Sprintf("Increase paid bids on %q: organic is weak here and paid returns %.1fx",
					k.Keyword, k.PaidROAS),
				Explanation: fmt.Sprintf("Organic rank %.0f means little free traffic for this query; paid is the only effective presence and it is profitable.",
					k.OrganicRank),
				DataPoints: []string{
					fmt.Sprintf("Organic rank: %.0f", k.OrganicRank),
					fmt.Sprintf("Paid ROAS: %.2fx", k.PaidROAS),
					fmt.Sprintf("Paid clicks: %d", k.PaidClicks),
				},
				ConfidenceScore: 60,
				ConfidenceLevel: domain.ConfidenceMedium,
				Source:          a.Name(),
				Platform:        domain.PlatformSearch,
				Tags:            []string{"opportunity"},
			})
		}
	}
	return recs, nil
}
