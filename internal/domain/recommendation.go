package domain

import "strings"

// Recommendation priorities. Lower is more urgent.
const (
	PriorityUrgent    = 1
	PriorityImportant = 2
	PriorityInfo      = 3
)

// Category groups recommendations by the lever they pull.
type Category string

const (
	CategoryBidStrategy  Category = "bid_strategy"
	CategoryAudience     Category = "audience"
	CategoryCreative     Category = "creative"
	CategoryBudget       Category = "budget"
	CategoryStructure    Category = "structure"
	CategoryOptimization Category = "optimization"
)

// ConfidenceLevel buckets a numeric confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelForScore maps a 0-100 confidence score to its level.
func LevelForScore(score int) ConfidenceLevel {
	switch {
	case score >= 75:
		return ConfidenceHigh
	case score < 50:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// Recommendation is one explainable, prioritized optimization suggestion.
// It is immutable once produced and lives only for the duration of one
// pipeline run unless logged by the tracker.
type Recommendation struct {
	ID              string          `json:"id"`
	Priority        int             `json:"priority"`
	Category        Category        `json:"category"`
	Recommendation  string          `json:"recommendation"`
	Explanation     string          `json:"explanation"`
	DataPoints      []string        `json:"data_points"`
	ConfidenceScore int             `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	Factors         []string        `json:"factors,omitempty"`
	Source          string          `json:"source"`
	Platform        Platform        `json:"platform,omitempty"`
	CampaignName    string          `json:"campaign_name,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
}

// BaseRuleID strips the per-campaign suffix from a recommendation ID,
// returning the first two underscore-delimited tokens. Rule IDs are always
// two tokens, so "roas_declining_summer_sale" reduces to "roas_declining".
func BaseRuleID(id string) string {
	parts := strings.Split(id, "_")
	if len(parts) <= 2 {
		return id
	}
	return parts[0] + "_" + parts[1]
}

// HasTag reports whether the recommendation carries the given tag.
func (r Recommendation) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RecommendationSummary is a pure aggregation over one batch.
type RecommendationSummary struct {
	Total         int              `json:"total"`
	ByPriority    map[int]int      `json:"by_priority"`
	ByCategory    map[Category]int `json:"by_category"`
	AvgConfidence float64          `json:"avg_confidence"`
	Top           []Recommendation `json:"top"`
}
