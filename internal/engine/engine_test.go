package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/analyzer"
	"github.com/ignite/adpilot/internal/domain"
	"github.com/ignite/adpilot/internal/knowledge"
)

type fakeMetrics struct {
	snapshots []domain.CampaignSnapshot
	trends    map[string]domain.TrendSet
	snapErr   error
	trendErr  error
	lastSince time.Time
}

func (f *fakeMetrics) Snapshots(_ context.Context, _ string, _ domain.Platform, since, _ time.Time) ([]domain.CampaignSnapshot, error) {
	f.lastSince = since
	return f.snapshots, f.snapErr
}

func (f *fakeMetrics) Trends(_ context.Context, _ string, _ domain.Platform) (map[string]domain.TrendSet, error) {
	return f.trends, f.trendErr
}

func TestScoreFactors(t *testing.T) {
	m := knowledge.Match{
		Confidence: knowledge.TierHigh,
		Priority:   domain.PriorityUrgent,
		Tags:       []string{"declining"},
	}
	c := knowledge.AnalysisContext{
		Conversions: 60,
		Spend:       1500,
		ROASTrend:   domain.TrendDeclining,
	}
	score, factors := Score(m, c)

	// 50 +20 +15 +10 +5 +5 = 105, clamped to 100.
	assert.Equal(t, 100, score)
	assert.Len(t, factors, 5)
	assert.Equal(t, domain.ConfidenceHigh, domain.LevelForScore(score))
}

func TestScoreFloor(t *testing.T) {
	m := knowledge.Match{Confidence: knowledge.TierLow}
	c := knowledge.AnalysisContext{Conversions: 2, Spend: 40}

	// 50 -10 -10 = 30, above the floor.
	score, _ := Score(m, c)
	assert.Equal(t, 30, score)
	assert.Equal(t, domain.ConfidenceLow, domain.LevelForScore(score))

	// The floor holds even if more penalties stack up in the future.
	assert.GreaterOrEqual(t, score, 20)
}

func TestScoreMediumBand(t *testing.T) {
	m := knowledge.Match{Confidence: knowledge.TierMedium}
	c := knowledge.AnalysisContext{Conversions: 30, Spend: 500}

	// 50 +10 +10 = 70: medium.
	score, factors := Score(m, c)
	assert.Equal(t, 70, score)
	assert.Equal(t, domain.ConfidenceMedium, domain.LevelForScore(score))
	assert.Contains(t, factors, "+10: medium-confidence rule")
	assert.Contains(t, factors, "+10: solid conversion volume (>20)")
}

func TestTrendAlignment(t *testing.T) {
	c := knowledge.AnalysisContext{CTRTrend: domain.TrendImproving}
	assert.True(t, trendAligned([]string{"improving"}, c))
	assert.False(t, trendAligned([]string{"declining"}, c))
	assert.False(t, trendAligned([]string{"ctr"}, c))
}

func TestDedupeKeepsHigherConfidence(t *testing.T) {
	recs := []domain.Recommendation{
		{ID: "roas_declining_campaign_a", Source: knowledge.SourceKnowledgeBase, ConfidenceScore: 60},
		{ID: "roas_declining_campaign_b", Source: knowledge.SourceKnowledgeBase, ConfidenceScore: 85},
		{ID: "scale_winner_campaign_a", Source: knowledge.SourceKnowledgeBase, ConfidenceScore: 90},
	}
	out := Dedupe(recs)
	require.Len(t, out, 2)

	byBase := map[string]domain.Recommendation{}
	for _, r := range out {
		byBase[domain.BaseRuleID(r.ID)] = r
	}
	assert.Equal(t, 85, byBase["roas_declining"].ConfidenceScore)
	assert.Equal(t, "roas_declining_campaign_b", byBase["roas_declining"].ID)
	assert.Equal(t, 90, byBase["scale_winner"].ConfidenceScore)
}

func TestDedupeKeepsDistinctAnalyzerFindings(t *testing.T) {
	// Analyzer ids share a fixed two-token prefix per analyzer; each finding
	// must survive on its own id, not collapse to one per analyzer.
	recs := []domain.Recommendation{
		{ID: "keyword_opp_blue-shoes", Source: "keyword_opportunity", ConfidenceScore: 70},
		{ID: "keyword_opp_red-hats", Source: "keyword_opportunity", ConfidenceScore: 65},
		{ID: "product_opp_sku-hero", Source: "product_opportunity", ConfidenceScore: 60},
		{ID: "audience_bid_device-mobile", Source: "audience", ConfidenceScore: 60},
		{ID: "audience_bid_device-desktop", Source: "audience", ConfidenceScore: 55},
		{ID: "cannibal_paid_acme-widgets", Source: "cannibalization", ConfidenceScore: 75},
		{ID: "cannibal_paid_blue-widgets", Source: "cannibalization", ConfidenceScore: 72},
	}
	out := Dedupe(recs)
	assert.Len(t, out, len(recs))

	// An exact id repeat from re-running the same analyzer still collapses.
	repeat := append(recs, domain.Recommendation{
		ID: "keyword_opp_blue-shoes", Source: "keyword_opportunity", ConfidenceScore: 90,
	})
	out = Dedupe(repeat)
	require.Len(t, out, len(recs))
	for _, r := range out {
		if r.ID == "keyword_opp_blue-shoes" {
			assert.Equal(t, 90, r.ConfidenceScore)
		}
	}
}

func TestSortPriorityThenConfidence(t *testing.T) {
	recs := []domain.Recommendation{
		{ID: "a_b", Priority: 2, ConfidenceScore: 90},
		{ID: "c_d", Priority: 1, ConfidenceScore: 60},
		{ID: "e_f", Priority: 1, ConfidenceScore: 80},
		{ID: "g_h", Priority: 3, ConfidenceScore: 99},
	}
	Sort(recs)

	assert.Equal(t, "e_f", recs[0].ID)
	assert.Equal(t, "c_d", recs[1].ID)
	assert.Equal(t, "a_b", recs[2].ID)
	assert.Equal(t, "g_h", recs[3].ID)
}

func TestIDSuffix(t *testing.T) {
	assert.Equal(t, "summer_sale_us", idSuffix("Summer Sale/US"))
	assert.Equal(t, "brand_exact", idSuffix("Brand Exact"))
	assert.Equal(t, "campaign", idSuffix("!!!"))
}

func TestGenerateEndToEnd(t *testing.T) {
	metrics := &fakeMetrics{
		snapshots: []domain.CampaignSnapshot{
			{
				// ROAS 5 on $800: scale_winner fires.
				AccountID: "acct-1", Platform: domain.PlatformSearch, Name: "Generic Strong",
				Spend: 800, Revenue: 4000, Impressions: 40000, Clicks: 1200, Conversions: 80,
			},
			{
				// Clicks with zero conversions: tracking_issue fires.
				AccountID: "acct-1", Platform: domain.PlatformSearch, Name: "Broken Pixel",
				Spend: 300, Revenue: 0, Impressions: 9000, Clicks: 180, Conversions: 0,
			},
		},
		trends: map[string]domain.TrendSet{
			"Generic Strong": {ROAS: domain.TrendImproving, CTR: domain.TrendImproving},
		},
	}

	eng := New(knowledge.New(nil), analyzer.NewRunner(), metrics, 0)
	recs, err := eng.Generate(context.Background(), "acct-1", domain.PlatformBoth)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	ids := map[string]domain.Recommendation{}
	for _, r := range recs {
		ids[domain.BaseRuleID(r.ID)] = r
	}
	assert.Contains(t, ids, "scale_winner")
	assert.Contains(t, ids, "tracking_issue")

	// Ordering: priority ascending, confidence descending within a bucket.
	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		assert.LessOrEqual(t, prev.Priority, cur.Priority)
		if prev.Priority == cur.Priority {
			assert.GreaterOrEqual(t, prev.ConfidenceScore, cur.ConfidenceScore)
		}
	}

	// No duplicate base rules survive dedup.
	seen := map[string]bool{}
	for _, r := range recs {
		base := domain.BaseRuleID(r.ID)
		assert.False(t, seen[base], "duplicate base rule %s", base)
		seen[base] = true
	}
}

type listAnalyzer struct {
	name string
	recs []domain.Recommendation
}

func (l *listAnalyzer) Name() string { return l.name }

func (l *listAnalyzer) Analyze(_ context.Context, _ string) ([]domain.Recommendation, error) {
	return l.recs, nil
}

func TestGenerateKeepsEveryAnalyzerOpportunity(t *testing.T) {
	kw := &listAnalyzer{name: "keyword_opportunity", recs: []domain.Recommendation{
		{ID: "keyword_opp_blue-shoes", Source: "keyword_opportunity", Priority: domain.PriorityInfo, ConfidenceScore: 70},
		{ID: "keyword_opp_red-hats", Source: "keyword_opportunity", Priority: domain.PriorityInfo, ConfidenceScore: 65},
	}}
	eng := New(knowledge.New(nil), analyzer.NewRunner(kw), &fakeMetrics{}, 0)

	recs, err := eng.Generate(context.Background(), "acct-1", domain.PlatformBoth)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	ids := []string{recs[0].ID, recs[1].ID}
	assert.ElementsMatch(t, []string{"keyword_opp_blue-shoes", "keyword_opp_red-hats"}, ids)
}

func TestGenerateUsesConfiguredLookback(t *testing.T) {
	metrics := &fakeMetrics{}
	eng := New(knowledge.New(nil), nil, metrics, 7)

	_, err := eng.Generate(context.Background(), "acct-1", domain.PlatformBoth)
	require.NoError(t, err)

	want := time.Now().AddDate(0, 0, -7)
	assert.WithinDuration(t, want, metrics.lastSince, time.Minute)
}

func TestGenerateSnapshotFailure(t *testing.T) {
	eng := New(knowledge.New(nil), nil, &fakeMetrics{snapErr: errors.New("db down")}, 0)
	_, err := eng.Generate(context.Background(), "acct-1", domain.PlatformBoth)
	assert.Error(t, err)
}

func TestGenerateTrendFailureIsTolerated(t *testing.T) {
	metrics := &fakeMetrics{
		snapshots: []domain.CampaignSnapshot{{
			AccountID: "acct-1", Platform: domain.PlatformSearch, Name: "Generic Strong",
			Spend: 800, Revenue: 4000, Conversions: 80, Impressions: 40000, Clicks: 1200,
		}},
		trendErr: errors.New("trend service down"),
	}
	eng := New(knowledge.New(nil), nil, metrics, 0)
	recs, err := eng.Generate(context.Background(), "acct-1", domain.PlatformBoth)
	require.NoError(t, err)
	assert.NotEmpty(t, recs)
}

func TestSummarize(t *testing.T) {
	recs := []domain.Recommendation{
		{Priority: 1, Category: domain.CategoryBudget, ConfidenceScore: 90},
		{Priority: 1, Category: domain.CategoryBidStrategy, ConfidenceScore: 80},
		{Priority: 2, Category: domain.CategoryBudget, ConfidenceScore: 70},
	}
	s := Summarize(recs)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ByPriority[1])
	assert.Equal(t, 1, s.ByPriority[2])
	assert.Equal(t, 2, s.ByCategory[domain.CategoryBudget])
	assert.InDelta(t, 80.0, s.AvgConfidence, 0.001)
	assert.Len(t, s.Top, 3)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Top)
	assert.Zero(t, s.AvgConfidence)
}
