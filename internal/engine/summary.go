package engine

import "github.com/ignite/adpilot/internal/domain"

// topSliceSize is how many recommendations the summary surfaces directly.
const topSliceSize = 5

// Summarize aggregates one recommendation batch. Pure; no side effects.
func Summarize(recs []domain.Recommendation) domain.RecommendationSummary {
	s := domain.RecommendationSummary{
		Total:      len(recs),
		ByPriority: map[int]int{},
		ByCategory: map[domain.Category]int{},
	}
	if len(recs) == 0 {
		return s
	}

	total := 0
	for _, r := range recs {
		s.ByPriority[r.Priority]++
		s.ByCategory[r.Category]++
		total += r.ConfidenceScore
	}
	s.AvgConfidence = float64(total) / float64(len(recs))

	n := topSliceSize
	if len(recs) < n {
		n = len(recs)
	}
	s.Top = append([]domain.Recommendation(nil), recs[:n]...)
	return s
}
