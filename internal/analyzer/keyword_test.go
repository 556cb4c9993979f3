package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/domain"
)

func TestKeywordAnalyzerSurfacesConvertingTerms(t *testing.T) {
	var events []domain.SiteEvent
	// "red sneakers": 10 searches, 3 conversions.
	for i := 0; i < 10; i++ {
		events = append(events, domain.SiteEvent{
			SessionID: fmt.Sprintf("s-%d", i), Type: domain.EventSearch,
			Query: "Red Sneakers", Converted: i < 3,
		})
	}
	// "free stuff": high volume, never converts.
	for i := 0; i < 20; i++ {
		events = append(events, domain.SiteEvent{
			SessionID: fmt.Sprintf("f-%d", i), Type: domain.EventSearch,
			Query: "free stuff",
		})
	}
	// Rare term, below the occurrence floor.
	events = append(events, domain.SiteEvent{
		SessionID: "r-1", Type: domain.EventSearch, Query: "rare term", Converted: true,
	})

	orders := []domain.Order{{ID: "o-1", Total: 100}, {ID: "o-2", Total: 60}}

	recs, err := NewKeywordAnalyzer(&fakeSource{events: events, orders: orders}).
		Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "keyword_opp_red-sneakers", r.ID)
	assert.Equal(t, domain.PlatformSearch, r.Platform)
	// AOV $80 at 30% conversion: 80*0.3/3 = $8.00 suggested CPC.
	assert.Contains(t, r.Recommendation, "$8.00")
}

func TestKeywordAnalyzerNoEvents(t *testing.T) {
	recs, err := NewKeywordAnalyzer(&fakeSource{}).Analyze(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
