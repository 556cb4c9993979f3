package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/domain"
)

func TestCrossChannelRecommendsShiftTowardStrongerChannel(t *testing.T) {
	snaps := []domain.CampaignSnapshot{
		{Name: "Search A", Platform: domain.PlatformSearch, Spend: 1000, Revenue: 4000},
		{Name: "Social A", Platform: domain.PlatformSocial, Spend: 1000, Revenue: 2000},
	}

	recs, err := NewCrossChannelAnalyzer(&fakeSource{snapshots: snaps}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "channel_shift_search", r.ID)
	assert.Equal(t, domain.CategoryBudget, r.Category)
	assert.Contains(t, r.Recommendation, "paid-social budget to paid-search")
	assert.Contains(t, r.Recommendation, "4.00x vs 2.00x")
}

func TestCrossChannelQuietWhenGapIsSmall(t *testing.T) {
	// 4.0x vs 3.0x is a 1.33 ratio, under the 1.5 bar.
	snaps := []domain.CampaignSnapshot{
		{Name: "Search A", Platform: domain.PlatformSearch, Spend: 1000, Revenue: 4000},
		{Name: "Social A", Platform: domain.PlatformSocial, Spend: 1000, Revenue: 3000},
	}

	recs, err := NewCrossChannelAnalyzer(&fakeSource{snapshots: snaps}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCrossChannelRequiresSpendOnBothChannels(t *testing.T) {
	snaps := []domain.CampaignSnapshot{
		{Name: "Search A", Platform: domain.PlatformSearch, Spend: 1000, Revenue: 4000},
		{Name: "Social A", Platform: domain.PlatformSocial, Spend: 100, Revenue: 50},
	}

	recs, err := NewCrossChannelAnalyzer(&fakeSource{snapshots: snaps}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
