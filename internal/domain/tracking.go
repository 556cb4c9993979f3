package domain

import "time"

// LogStatus enumerates the lifecycle states of a logged recommendation.
// Transitions are one-way: pending -> implemented | dismissed | expired.
type LogStatus string

const (
	LogPending     LogStatus = "pending"
	LogImplemented LogStatus = "implemented"
	LogDismissed   LogStatus = "dismissed"
	LogExpired     LogStatus = "expired"
)

// RecommendationLog is the append-only record of one emitted recommendation
// instance and what happened to it.
type RecommendationLog struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	// RecommendationID is the base rule id, stripped of the per-campaign
	// suffix, so outcomes aggregate across campaigns.
	RecommendationID string `json:"recommendation_id"`
	// Recommendation is the rendered text as emitted, kept so derived
	// learnings can quote a real sample instead of synthesizing one.
	Recommendation   string          `json:"recommendation,omitempty"`
	Category         Category        `json:"category"`
	Priority         int             `json:"priority"`
	Platform         Platform        `json:"platform"`
	CampaignName     string          `json:"campaign_name"`
	ConfidenceScore  int             `json:"confidence_score"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	DataPoints       []string        `json:"data_points,omitempty"`
	Tags             []string        `json:"tags,omitempty"`

	Status        LogStatus `json:"status"`
	DismissReason string    `json:"dismiss_reason,omitempty"`

	// Outcome, set only via RecordOutcome. WasSuccessful is derived from
	// RoasChange and never set independently.
	RoasBefore    *float64 `json:"roas_before,omitempty"`
	RoasAfter     *float64 `json:"roas_after,omitempty"`
	RoasChange    *float64 `json:"roas_change,omitempty"`
	WasSuccessful *bool    `json:"was_successful,omitempty"`
	OutcomeNotes  string   `json:"outcome_notes,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	ImplementedAt *time.Time `json:"implemented_at,omitempty"`
	DismissedAt   *time.Time `json:"dismissed_at,omitempty"`
	ExpiredAt     *time.Time `json:"expired_at,omitempty"`
	OutcomeAt     *time.Time `json:"outcome_at,omitempty"`
}

// Feedback is the user's verdict on a pending recommendation.
type Feedback struct {
	Status        LogStatus `json:"status"` // implemented or dismissed
	DismissReason string    `json:"dismiss_reason,omitempty"`
}

// Outcome reports measured ROAS before and after a recommendation was acted on.
type Outcome struct {
	RoasBefore float64 `json:"roas_before"`
	RoasAfter  float64 `json:"roas_after"`
	Notes      string  `json:"notes,omitempty"`
}

// Change returns the percentage ROAS change, 0 when the baseline is 0.
func (o Outcome) Change() float64 {
	if o.RoasBefore == 0 {
		return 0
	}
	return (o.RoasAfter - o.RoasBefore) / o.RoasBefore * 100
}

// Successful reports whether the measured change was an improvement.
func (o Outcome) Successful() bool {
	return o.Change() > 0
}

// RulePerformance summarizes outcomes for one base rule id.
type RulePerformance struct {
	RecommendationID string  `json:"recommendation_id"`
	Implemented      int     `json:"implemented"`
	Successful       int     `json:"successful"`
	SuccessRate      float64 `json:"success_rate"`
	AvgRoasChange    float64 `json:"avg_roas_change"`
}

// RecommendationStats aggregates an account's recommendation history.
type RecommendationStats struct {
	AccountID          string               `json:"account_id"`
	WindowDays         int                  `json:"window_days"`
	Total              int                  `json:"total"`
	ByStatus           map[LogStatus]int    `json:"by_status"`
	ByCategory         map[Category]int     `json:"by_category"`
	SuccessRate        float64              `json:"success_rate"`
	AvgRoasImprovement float64              `json:"avg_roas_improvement"`
	CategorySuccess    map[Category]float64 `json:"category_success"`
	TopRules           []RulePerformance    `json:"top_rules"`
}
