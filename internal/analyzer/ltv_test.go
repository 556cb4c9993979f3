package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/domain"
)

func TestLTVAnalyzerAdjustsBySource(t *testing.T) {
	var customers []domain.Customer
	// 10 google customers at $300 lifetime, all repeat buyers.
	for i := 0; i < 10; i++ {
		customers = append(customers, domain.Customer{
			Email: fmt.Sprintf("g-%d", i), FirstSource: "google",
			LifetimeSpend: 300, OrderCount: 2,
		})
	}
	// 10 facebook customers at $100 lifetime, one-time buyers.
	for i := 0; i < 10; i++ {
		customers = append(customers, domain.Customer{
			Email: fmt.Sprintf("f-%d", i), FirstSource: "facebook",
			LifetimeSpend: 100, OrderCount: 1,
		})
	}

	recs, err := NewLTVAnalyzer(&fakeSource{customers: customers}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Sources come out alphabetically. Account avg is $200: facebook sits at
	// a 0.5 ratio (-30), google at 1.5 (+50).
	fb, gg := recs[0], recs[1]
	assert.Equal(t, "ltv_bid_facebook", fb.ID)
	assert.Contains(t, fb.Recommendation, "Decrease bids -30%")
	assert.Equal(t, domain.PriorityImportant, fb.Priority)

	assert.Equal(t, "ltv_bid_google", gg.ID)
	assert.Contains(t, gg.Recommendation, "Increase bids +50%")
	assert.Equal(t, domain.PriorityInfo, gg.Priority)
	assert.Contains(t, gg.Explanation, "$300.00")
	assert.Contains(t, gg.Explanation, "$200.00")
	assert.Contains(t, gg.Explanation, "100% repeat")
}

func TestLTVAnalyzerIgnoresSmallSources(t *testing.T) {
	var customers []domain.Customer
	// 5 outlier customers: below the segment floor, never recommended on.
	for i := 0; i < 5; i++ {
		customers = append(customers, domain.Customer{
			Email: fmt.Sprintf("t-%d", i), FirstSource: "tiktok",
			LifetimeSpend: 900, OrderCount: 3,
		})
	}

	recs, err := NewLTVAnalyzer(&fakeSource{customers: customers}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLTVAnalyzerNoCustomers(t *testing.T) {
	recs, err := NewLTVAnalyzer(&fakeSource{}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
