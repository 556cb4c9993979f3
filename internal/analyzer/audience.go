package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/ignite/adpilot/internal/domain"
)

// AudienceAnalyzer compares per-segment conversion rates (device, region,
// last-touch source) against the account average and recommends bounded
// bid adjustments for segments that deviate.
type AudienceAnalyzer struct {
	src DataSource
}

// NewAudienceAnalyzer creates an audience segment analyzer.
func NewAudienceAnalyzer(src DataSource) *AudienceAnalyzer {
	return &AudienceAnalyzer{src: src}
}

// Name implements Analyzer.
func (a *AudienceAnalyzer) Name() string { return "audience" }

type segmentStats struct {
	label     string
	dimension string
	sessions  map[string]bool
	converted map[string]bool
}

// Analyze implements Analyzer.
func (a *AudienceAnalyzer) Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error) {
	events, err := a.src.Events(ctx, accountID,
		[]domain.SiteEventType{domain.EventSearch, domain.EventPurchase}, lookback(DefaultLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("audience events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	segments := map[string]*segmentStats{}
	accountSessions := map[string]bool{}
	accountConverted := map[string]bool{}

	track := func(dimension, label string, e domain.SiteEvent) {
		if label == "" {
			return
		}
		key := dimension + ":" + label
		seg := segments[key]
		if seg == nil {
			seg = &segmentStats{
				label: label, dimension: dimension,
				sessions: map[string]bool{}, converted: map[string]bool{},
			}
			segments[key] = seg
		}
		seg.sessions[e.SessionID] = true
		if e.Type == domain.EventPurchase || e.Converted {
			seg.converted[e.SessionID] = true
		}
	}

	for _, e := range events {
		accountSessions[e.SessionID] = true
		if e.Type == domain.EventPurchase || e.Converted {
			accountConverted[e.SessionID] = true
		}
		track("device", e.Device, e)
		track("region", e.Region, e)
		track("source", e.LastTouchSource, e)
	}

	if len(accountSessions) == 0 || len(accountConverted) == 0 {
		return nil, nil
	}
	accountRate := float64(len(accountConverted)) / float64(len(accountSessions))

	keys := make([]string, 0, len(segments))
	for k := range segments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var recs []domain.Recommendation
	for _, k := range keys {
		seg := segments[k]
		n := len(seg.sessions)
		if n < minSegmentSize {
			continue
		}
		rate := float64(len(seg.converted)) / float64(n)
		adj := BidAdjustmentForRatio(rate / accountRate)
		if adj == 0 {
			continue
		}

		verb, priority := "Increase", domain.PriorityInfo
		if adj < 0 {
			verb, priority = "Decrease", domain.PriorityImportant
		}
		recs = append(recs, domain.Recommendation{
			ID:       fmt.Sprintf("audience_bid_%s_%s", seg.dimension, slug(seg.label)),
			Priority: priority,
			Category: domain.CategoryAudience,
			Recommendation: fmt.Sprintf("%s bids %+d%% for %s segment %q",
				verb, adj, seg.dimension, seg.label),
			Explanation: fmt.Sprintf("Segment converts at %.1f%% vs %.1f%% account average over %d sessions.",
				rate*100, accountRate*100, n),
			DataPoints: []string{
				fmt.Sprintf("Sessions: %d", n),
				fmt.Sprintf("Segment conv rate: %.2f%%", rate*100),
				fmt.Sprintf("Account conv rate: %.2f%%", accountRate*100),
			},
			ConfidenceScore: 60,
			ConfidenceLevel: domain.ConfidenceMedium,
			Source:          a.Name(),
			Tags:            []string{"segment", seg.dimension},
		})
	}
	return recs, nil
}
