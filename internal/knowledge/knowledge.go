package knowledge

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/ignite/adpilot/internal/domain"
)

// Source labels carried on matches so downstream consumers can tell static
// rule matches from learned ones.
const (
	SourceKnowledgeBase = "knowledge_base"
	SourceLearning      = "learning"
)

// Match is one rule (static or learned) that fired against a context.
type Match struct {
	RuleID         string
	Category       domain.Category
	Priority       int
	Confidence     Tier
	Recommendation string
	Explanation    string
	Tags           []string
	DataPoints     []string
	Source         string // SourceKnowledgeBase or SourceLearning
}

// LearningSource is the account-scoped rule overlay. It is injected
// explicitly; a nil source means static-only matching.
type LearningSource interface {
	ListActive(ctx context.Context, accountID string) ([]domain.Learning, error)
	IncrementApplied(ctx context.Context, learningID string) error
}

// KnowledgeBase evaluates the static rule table, optionally overlaid with
// account learnings.
type KnowledgeBase struct {
	rules     []Rule
	learnings LearningSource
}

// New builds a knowledge base over the default rule table.
func New(learnings LearningSource) *KnowledgeBase {
	return &KnowledgeBase{rules: DefaultRules(), learnings: learnings}
}

// NewWithRules builds a knowledge base over a caller-supplied table.
func NewWithRules(rules []Rule, learnings LearningSource) *KnowledgeBase {
	return &KnowledgeBase{rules: rules, learnings: learnings}
}

// FindMatches evaluates the static table against one context. A rule whose
// platform scope excludes the context is skipped; a predicate that panics is
// treated as a non-match. Results are sorted by priority, most urgent first.
func (kb *KnowledgeBase) FindMatches(c AnalysisContext) []Match {
	var matches []Match
	for _, r := range kb.rules {
		if !r.Platform.Includes(c.Platform) {
			continue
		}
		if !safeEval(r, c) {
			continue
		}
		matches = append(matches, Match{
			RuleID:         r.ID,
			Category:       r.Category,
			Priority:       r.Priority,
			Confidence:     r.Confidence,
			Recommendation: r.Recommendation,
			Explanation:    r.Explanation,
			Tags:           r.Tags,
			DataPoints:     dataPointsFor(r.Category, c),
			Source:         SourceKnowledgeBase,
		})
	}
	sortMatches(matches)
	return matches
}

// FindMatchesWithLearnings merges static matches with the account's active,
// approved learnings. If the learning store is unavailable the static
// matches are returned alone; the overlay never breaks matching.
func (kb *KnowledgeBase) FindMatchesWithLearnings(ctx context.Context, c AnalysisContext, accountID string) []Match {
	matches := kb.FindMatches(c)
	if kb.learnings == nil || accountID == "" {
		return matches
	}

	rows, err := kb.learnings.ListActive(ctx, accountID)
	if err != nil {
		log.Printf("[knowledge] learning lookup failed for account %s, static-only: %v", accountID, err)
		return matches
	}

	for _, l := range rows {
		if l.IsPending || !l.IsActive {
			continue
		}
		if !l.Platform.Includes(c.Platform) {
			continue
		}
		if !matchCondition(l.Condition, c) {
			continue
		}
		if err := kb.learnings.IncrementApplied(ctx, l.ID); err != nil {
			log.Printf("[knowledge] applied-count increment failed for learning %s: %v", l.ID, err)
		}
		matches = append(matches, Match{
			RuleID:         "learning_" + l.ID,
			Category:       l.Category,
			Priority:       domain.PriorityImportant,
			Confidence:     learningTier(l),
			Recommendation: l.Recommendation,
			Explanation:    l.Explanation,
			Tags:           []string{"learned", string(l.Source)},
			DataPoints:     dataPointsFor(l.Category, c),
			Source:         SourceLearning,
		})
	}
	sortMatches(matches)
	return matches
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority < matches[j].Priority
	})
}

// safeEval runs a rule predicate, converting a panic into a non-match so a
// single bad rule can never abort matching.
func safeEval(r Rule, c AnalysisContext) (matched bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[knowledge] rule %s predicate panicked: %v", r.ID, rec)
			matched = false
		}
	}()
	if r.Match == nil {
		return false
	}
	return r.Match(c)
}

// learningTier derives a confidence tier from a learning's track record.
func learningTier(l domain.Learning) Tier {
	rate := l.SuccessRate()
	switch {
	case rate > 0.6:
		return TierHigh
	case rate > 0.3:
		return TierMedium
	default:
		return TierLow
	}
}

// dataPointsFor renders the metric strings shown alongside a match,
// picked per category so the evidence matches the lever being pulled.
func dataPointsFor(cat domain.Category, c AnalysisContext) []string {
	switch cat {
	case domain.CategoryBidStrategy:
		return []string{
			fmt.Sprintf("ROAS: %.2fx", c.ROAS),
			fmt.Sprintf("CPA: $%.2f", c.CPA),
			fmt.Sprintf("CPC: $%.2f", c.CPC),
		}
	case domain.CategoryCreative:
		return []string{
			fmt.Sprintf("CTR: %.2f%%", c.CTR),
			fmt.Sprintf("CPM: $%.2f", c.CPM),
			fmt.Sprintf("Impressions: %d", c.Impressions),
		}
	case domain.CategoryBudget:
		return []string{
			fmt.Sprintf("Spend: $%.2f", c.Spend),
			fmt.Sprintf("ROAS: %.2fx", c.ROAS),
			fmt.Sprintf("Conversions: %d", c.Conversions),
		}
	case domain.CategoryAudience:
		return []string{
			fmt.Sprintf("ROAS: %.2fx", c.ROAS),
			fmt.Sprintf("Frequency: %.1f", c.Frequency),
			fmt.Sprintf("Clicks: %d", c.Clicks),
		}
	case domain.CategoryStructure:
		return []string{
			fmt.Sprintf("Conversions: %d", c.Conversions),
			fmt.Sprintf("ROAS: %.2fx", c.ROAS),
		}
	default:
		return []string{
			fmt.Sprintf("Clicks: %d", c.Clicks),
			fmt.Sprintf("Conversions: %d", c.Conversions),
			fmt.Sprintf("Spend: $%.2f", c.Spend),
		}
	}
}
