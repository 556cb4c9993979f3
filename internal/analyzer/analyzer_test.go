package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/domain"
)

// fakeSource is an in-memory DataSource shared by the analyzer tests.
type fakeSource struct {
	snapshots []domain.CampaignSnapshot
	orders    []domain.Order
	customers []domain.Customer
	events    []domain.SiteEvent
	overlaps  []domain.KeywordOverlap
	err       error
}

func (f *fakeSource) Snapshots(_ context.Context, _ string, platform domain.Platform, _, _ time.Time) ([]domain.CampaignSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.CampaignSnapshot
	for _, s := range f.snapshots {
		if platform.Includes(s.Platform) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) Orders(_ context.Context, _ string, _ time.Time) ([]domain.Order, error) {
	return f.orders, f.err
}

func (f *fakeSource) Customers(_ context.Context, _ string) ([]domain.Customer, error) {
	return f.customers, f.err
}

func (f *fakeSource) Events(_ context.Context, _ string, types []domain.SiteEventType, _ time.Time) ([]domain.SiteEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SiteEvent
	for _, e := range f.events {
		for _, t := range types {
			if e.Type == t {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeSource) KeywordOverlaps(_ context.Context, _ string) ([]domain.KeywordOverlap, error) {
	return f.overlaps, f.err
}

type stubAnalyzer struct {
	name string
	recs []domain.Recommendation
	err  error
	boom bool
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(_ context.Context, _ string) ([]domain.Recommendation, error) {
	if s.boom {
		panic("analyzer exploded")
	}
	return s.recs, s.err
}

func TestRunnerIsolatesFailures(t *testing.T) {
	good := &stubAnalyzer{name: "good", recs: []domain.Recommendation{{ID: "audience_bid_mobile"}}}
	failing := &stubAnalyzer{name: "failing", err: errors.New("data source down")}
	panicking := &stubAnalyzer{name: "panicking", boom: true}

	results := NewRunner(good, failing, panicking).Run(context.Background(), "acct-1")
	require.Len(t, results, 3)

	// Registration order is preserved.
	assert.Equal(t, "good", results[0].Source)
	assert.Equal(t, "failing", results[1].Source)
	assert.Equal(t, "panicking", results[2].Source)

	assert.True(t, results[0].HasData)
	assert.Len(t, results[0].Suggestions, 1)

	for _, r := range results[1:] {
		assert.False(t, r.HasData)
		assert.Empty(t, r.Suggestions)
	}
}

func TestRunnerStampsMetadata(t *testing.T) {
	a := &stubAnalyzer{name: "stamped", recs: []domain.Recommendation{{ID: "ltv_bid_email"}}}
	results := NewRunner(a).Run(context.Background(), "acct-9")
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "stamped", r.Source)
	assert.Equal(t, "acct-9", r.AccountID)
	assert.False(t, r.AnalyzedAt.IsZero())
	assert.GreaterOrEqual(t, r.DurationMS, int64(0))
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	a := &stubAnalyzer{name: "quiet"}
	results := NewRunner(a).Run(context.Background(), "acct-1")
	require.Len(t, results, 1)
	assert.False(t, results[0].HasData)
	assert.Empty(t, results[0].Suggestions)
}

func TestMerge(t *testing.T) {
	results := []Result{
		{Suggestions: []domain.Recommendation{{ID: "a_b"}, {ID: "c_d"}}},
		{},
		{Suggestions: []domain.Recommendation{{ID: "e_f"}}},
	}
	merged := Merge(results)
	require.Len(t, merged, 3)
	assert.Equal(t, "a_b", merged[0].ID)
	assert.Equal(t, "e_f", merged[2].ID)
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, out string }{
		{"Summer Sale - US", "summer-sale---us"},
		{"Brand/Exact", "brand-exact"},
		{"  CAPS  ", "caps"},
		{"***", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, slug(tt.in), "slug(%q)", tt.in)
	}
}
