package knowledge

import (
	"strings"

	"github.com/ignite/adpilot/internal/domain"
)

// fuzzyMatchThreshold is the product-tuned cutoff for the free-text
// condition heuristic. A learning matches when more than half of the
// signals its condition mentions are satisfied by the context.
const fuzzyMatchThreshold = 0.5

// matchCondition scores a learning's free-text condition against a context
// using keyword overlap. Each metric keyword the condition mentions counts
// as one check; the check passes when the context exhibits the mentioned
// state. This is intentionally the legacy heuristic; a structured condition
// representation would slot in here.
func matchCondition(condition string, c AnalysisContext) bool {
	cond := strings.ToLower(condition)
	if cond == "" {
		return false
	}

	total, matched := 0, 0
	check := func(mentioned, satisfied bool) {
		if mentioned {
			total++
			if satisfied {
				matched++
			}
		}
	}

	if strings.Contains(cond, "roas") {
		switch {
		case strings.Contains(cond, "declining"):
			check(true, c.ROASTrend == domain.TrendDeclining)
		case strings.Contains(cond, "low"):
			check(true, c.ROAS > 0 && c.ROAS < 1.5)
		case strings.Contains(cond, "high"):
			check(true, c.ROAS >= 3)
		default:
			check(true, c.ROAS > 0)
		}
	}
	if strings.Contains(cond, "ctr") {
		switch {
		case strings.Contains(cond, "declining"):
			check(true, c.CTRTrend == domain.TrendDeclining)
		case strings.Contains(cond, "low"):
			check(true, c.CTR > 0 && c.CTR < 1)
		default:
			check(true, c.CTR >= 1)
		}
	}
	if strings.Contains(cond, "cpa") {
		if strings.Contains(cond, "low") {
			check(true, c.CPA > 0 && c.CPA <= 20)
		} else {
			check(true, c.CPA > 50)
		}
	}
	if strings.Contains(cond, "conversion") {
		if strings.Contains(cond, "no conversion") || strings.Contains(cond, "zero") {
			check(true, c.Conversions == 0)
		} else {
			check(true, c.Conversions > 0)
		}
	}
	for _, stage := range []domain.FunnelStage{
		domain.StageAwareness, domain.StageConsideration, domain.StageConversion, domain.StageRetention,
	} {
		// "conversion" doubles as a metric keyword; handled above.
		if stage == domain.StageConversion {
			continue
		}
		check(strings.Contains(cond, string(stage)), stage == c.FunnelStage)
	}
	for _, ct := range []domain.CampaignType{
		domain.CampaignBrand, domain.CampaignProspecting, domain.CampaignRetargeting,
		domain.CampaignShopping, domain.CampaignLoyalty,
	} {
		check(strings.Contains(cond, string(ct)), ct == c.CampaignType)
	}

	if total == 0 {
		return false
	}
	return float64(matched)/float64(total) > fuzzyMatchThreshold
}
