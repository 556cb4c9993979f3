package knowledge

import "github.com/ignite/adpilot/internal/domain"

// Tier is a rule author's coarse confidence in a rule.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Rule is one static optimization rule. Rules are pure data plus a pure
// predicate over AnalysisContext; the table is loaded once and never mutated
// at runtime. Rule IDs are always two underscore-delimited tokens so that
// per-campaign recommendation IDs reduce back to the rule ID.
type Rule struct {
	ID             string
	Platform       domain.Platform
	Category       domain.Category
	Priority       int
	Confidence     Tier
	Recommendation string
	Explanation    string
	Tags           []string
	Match          func(c AnalysisContext) bool
}

// DefaultRules returns the built-in expertise table.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:             "tracking_issue",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryOptimization,
			Priority:       domain.PriorityUrgent,
			Confidence:     TierHigh,
			Recommendation: "Verify conversion tracking: clicks are arriving but zero conversions are recorded",
			Explanation:    "Significant click volume with no conversions at all usually means a broken pixel or tag, not a performance problem.",
			Tags:           []string{"tracking"},
			Match: func(c AnalysisContext) bool {
				return c.Clicks > 100 && c.Conversions == 0
			},
		},
		{
			ID:             "roas_declining",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryBidStrategy,
			Priority:       domain.PriorityUrgent,
			Confidence:     TierHigh,
			Recommendation: "Review bids and search terms: return on ad spend has been declining",
			Explanation:    "A sustained ROAS decline on a performance campaign typically signals rising CPCs or query drift. Awareness campaigns are excluded since ROAS is not their objective.",
			Tags:           []string{"declining"},
			Match: func(c AnalysisContext) bool {
				return c.FunnelStage != domain.StageAwareness &&
					c.ROASTrend == domain.TrendDeclining && c.Spend >= 100
			},
		},
		{
			ID:             "high_cpa",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryBidStrategy,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Lower bids or tighten targeting: cost per acquisition is above the acceptable band",
			Explanation:    "CPA above $50 on a conversion-stage campaign erodes margin. Only applies where conversions are the campaign objective.",
			Tags:           []string{"cost"},
			Match: func(c AnalysisContext) bool {
				inScope := c.FunnelStage == domain.StageConversion || c.FunnelStage == domain.StageRetention
				return inScope && c.Conversions > 0 && c.CPA > 50
			},
		},
		{
			ID:             "scale_winner",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryBudget,
			Priority:       domain.PriorityUrgent,
			Confidence:     TierHigh,
			Recommendation: "Increase budget 20-30%: this campaign is a proven winner",
			Explanation:    "ROAS at or above 4x with meaningful spend indicates unmet demand; incremental budget usually holds efficiency.",
			Tags:           []string{"improving", "scale"},
			Match: func(c AnalysisContext) bool {
				return c.ROAS >= 4 && c.Spend >= 500
			},
		},
		{
			ID:             "awareness_reach",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryOptimization,
			Priority:       domain.PriorityInfo,
			Confidence:     TierMedium,
			Recommendation: "Awareness CPM is efficient; consider extending reach or frequency caps",
			Explanation:    "CPM at or under $15 for an awareness campaign is cheap reach for most verticals.",
			Tags:           []string{"awareness"},
			Match: func(c AnalysisContext) bool {
				return c.FunnelStage == domain.StageAwareness && c.CPM > 0 && c.CPM <= 15
			},
		},
		{
			ID:             "awareness_cpm",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryCreative,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Refresh creative or broaden audience: awareness CPM is running hot",
			Explanation:    "CPM above $25 on reach objectives usually means audience saturation or low-relevance creative.",
			Tags:           []string{"awareness", "cost"},
			Match: func(c AnalysisContext) bool {
				return c.FunnelStage == domain.StageAwareness && c.CPM > 25
			},
		},
		{
			ID:             "low_ctr",
			Platform:       domain.PlatformSearch,
			Category:       domain.CategoryCreative,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Rewrite ad copy and review keyword relevance: click-through rate is under 1%",
			Explanation:    "Search CTR under 1% at meaningful volume drags quality score and raises CPC across the campaign.",
			Tags:           []string{"ctr"},
			Match: func(c AnalysisContext) bool {
				return c.Impressions >= 1000 && c.CTR > 0 && c.CTR < 1
			},
		},
		{
			ID:             "creative_fatigue",
			Platform:       domain.PlatformSocial,
			Category:       domain.CategoryCreative,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Rotate in fresh creative: frequency is high and CTR is declining",
			Explanation:    "Average frequency above 5 combined with a declining CTR trend is the classic fatigue signature.",
			Tags:           []string{"declining", "frequency"},
			Match: func(c AnalysisContext) bool {
				return c.Frequency > 5 && c.CTRTrend == domain.TrendDeclining
			},
		},
		{
			ID:             "spend_bleed",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryBudget,
			Priority:       domain.PriorityUrgent,
			Confidence:     TierHigh,
			Recommendation: "Pause or restructure: spend is well above $250 with ROAS under 0.5",
			Explanation:    "A conversion campaign returning less than half its spend is burning budget that stronger campaigns could use.",
			Tags:           []string{"cost"},
			Match: func(c AnalysisContext) bool {
				return c.FunnelStage == domain.StageConversion && c.Spend >= 250 && c.ROAS < 0.5 && c.Conversions > 0
			},
		},
		{
			ID:             "learning_phase",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryOptimization,
			Priority:       domain.PriorityInfo,
			Confidence:     TierMedium,
			Recommendation: "Hold off on major edits: the campaign is still in its learning phase",
			Explanation:    "Bid and budget edits during the learning phase reset delivery optimization and delay stable results.",
			Tags:           []string{"learning"},
			Match: func(c AnalysisContext) bool {
				return c.InLearningPhase || (c.DaysSinceLaunch > 0 && c.DaysSinceLaunch <= 7)
			},
		},
		{
			ID:             "retargeting_weak",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryAudience,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Review retargeting windows and exclusions: ROAS is low for a warm audience",
			Explanation:    "Retargeting normally outperforms prospecting; ROAS under 2x suggests stale audiences or missing purchaser exclusions.",
			Tags:           []string{"audience"},
			Match: func(c AnalysisContext) bool {
				return c.CampaignType == domain.CampaignRetargeting && c.Spend >= 100 && c.ROAS > 0 && c.ROAS < 2
			},
		},
		{
			ID:             "brand_cpc",
			Platform:       domain.PlatformSearch,
			Category:       domain.CategoryBidStrategy,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Reduce brand keyword bids: brand CPC is above $1",
			Explanation:    "Brand terms rarely need aggressive bids; a CPC above $1 usually means competitors are being outbid unnecessarily.",
			Tags:           []string{"cost"},
			Match: func(c AnalysisContext) bool {
				return c.CampaignType == domain.CampaignBrand && c.CPC > 1
			},
		},
		{
			ID:             "cpc_high",
			Platform:       domain.PlatformSearch,
			Category:       domain.CategoryBidStrategy,
			Priority:       domain.PriorityImportant,
			Confidence:     TierMedium,
			Recommendation: "Shift to broader match with smart bidding: consideration-stage CPC is above $3",
			Explanation:    "Mid-funnel traffic should be cheap; CPC above $3 here suggests over-narrow targeting or bid inflation.",
			Tags:           []string{"cost"},
			Match: func(c AnalysisContext) bool {
				return c.FunnelStage == domain.StageConsideration && c.CPC > 3
			},
		},
		{
			ID:             "shopping_split",
			Platform:       domain.PlatformSearch,
			Category:       domain.CategoryStructure,
			Priority:       domain.PriorityInfo,
			Confidence:     TierMedium,
			Recommendation: "Split top sellers into their own shopping campaign for bid control",
			Explanation:    "A shopping campaign converting at volume benefits from isolating hero products with dedicated budgets.",
			Tags:           []string{"structure"},
			Match: func(c AnalysisContext) bool {
				return c.CampaignType == domain.CampaignShopping && c.Conversions > 30 && c.ROAS >= 3
			},
		},
		{
			ID:             "ctr_momentum",
			Platform:       domain.PlatformBoth,
			Category:       domain.CategoryCreative,
			Priority:       domain.PriorityInfo,
			Confidence:     TierMedium,
			Recommendation: "CTR is strong and improving; replicate this creative angle elsewhere",
			Explanation:    "CTR above 3% with an improving trend marks creative worth porting to weaker campaigns.",
			Tags:           []string{"improving", "ctr"},
			Match: func(c AnalysisContext) bool {
				return c.CTR > 3 && c.CTRTrend == domain.TrendImproving
			},
		},
	}
}
