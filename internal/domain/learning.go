package domain

import "time"

// LearningSource identifies how a learning was authored.
type LearningSource string

const (
	LearningSourceUser LearningSource = "user"
	LearningSourceAI   LearningSource = "ai_derived"
)

// Learning is an account-scoped rule layered on top of the static knowledge
// base. User-authored learnings start active; AI-derived learnings always
// start pending and require explicit approval before they participate in
// matching.
type Learning struct {
	ID             string         `json:"id"`
	AccountID      string         `json:"account_id"`
	Platform       Platform       `json:"platform"`
	Category       Category       `json:"category"`
	Condition      string         `json:"condition"`
	Recommendation string         `json:"recommendation"`
	Explanation    string         `json:"explanation"`
	Source         LearningSource `json:"source"`
	IsActive       bool           `json:"is_active"`
	IsPending      bool           `json:"is_pending"`
	AppliedCount   int            `json:"applied_count"`
	SuccessCount   int            `json:"success_count"`
	// DerivedFrom links an ai_derived learning back to the recommendation
	// log rows whose outcomes produced it.
	DerivedFrom []string  `json:"derived_from,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SuccessRate returns the fraction of applications that were later marked
// successful, 0 when the learning has never been applied.
func (l Learning) SuccessRate() float64 {
	if l.AppliedCount <= 0 {
		return 0
	}
	return float64(l.SuccessCount) / float64(l.AppliedCount)
}
