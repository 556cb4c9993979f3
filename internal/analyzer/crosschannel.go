package analyzer

import (
	"context"
	"fmt"

	"github.com/ignite/adpilot/internal/domain"
)

// CrossChannelAnalyzer compares aggregate paid-search and paid-social
// efficiency for the account and recommends shifting budget toward the
// stronger channel when the gap is material.
type CrossChannelAnalyzer struct {
	src DataSource
}

// NewCrossChannelAnalyzer creates a cross-channel budget analyzer.
func NewCrossChannelAnalyzer(src DataSource) *CrossChannelAnalyzer {
	return &CrossChannelAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *CrossChannelAnalyzer) Name() string { return "cross_channel" }

// minChannelSpend is the spend floor per channel before the comparison is
// considered meaningful.
const minChannelSpend = 500.0

// Analyze implements Analyzer.
func (a *CrossChannelAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	snaps, err := a.src.Snapshots(ctx, accountID, domain.PlatformBoth, lookback(DefaultLookbackDays), lookback(0))
	if err != nil {
		return nil, fmt.Errorf("cross-channel snapshots: %w", err)
	}

	var spend, revenue [2]float64 // 0=search 1=social
	for _, s := range snaps {
		switch s.Platform {
		case domain.PlatformSearch:
			spend[0] += s.Spend
			revenue[0] += s.Revenue
		case domain.PlatformSocial:
			spend[1] += s.Spend
			revenue[1] += s.Revenue
		}
	}
	if spend[0] < minChannelSpend || spend[1] < minChannelSpend {
		return nil, nil
	}

	searchROAS := revenue[0] / spend[0]
	socialROAS := revenue[1] / spend[1]

	strong, weak := domain.PlatformSearch, domain.PlatformSocial
	strongROAS, weakROAS := searchROAS, socialROAS
	if socialROAS > searchROAS {
		strong, weak = domain.PlatformSocial, domain.PlatformSearch
		strongROAS, weakROAS = socialROAS, searchROAS
	}
	if weakROAS <= 0 || strongROAS/weakROAS < 1.5 {
		return nil, nil
	}

	return []domain.Recommendation{{
		ID:       fmt.Sprintf("channel_shift_%s", strong),
		Priority: domain.PriorityImportant,
		Category: domain.CategoryBudget,
		Recommendation: fmt.Sprintf("Shift 10-20%% of paid-%s budget to paid-%s: %.2fx vs %.2fx ROAS",
			weak, strong, strongROAS, weakROAS),
		Explanation: fmt.Sprintf("Paid-%s is returning at least 50%% more per dollar over the last %d days with meaningful spend on both channels.",
			strong, DefaultLookbackDays),
		DataPoints: []string{
			fmt.Sprintf("Search: $%.0f spend, %.2fx ROAS", spend[0], searchROAS),
			fmt.Sprintf("Social: $%.0f spend, %.2fx ROAS", spend[1], socialROAS),
		},
		ConfidenceScore: 70,
		ConfidenceLevel: domain.ConfidenceMedium,
		Source:          a.Name(),
		Platform:        domain.PlatformBoth,
		Tags:            []string{"budget", "cross-channel"},
	}}, nil
}
