package knowledge

import (
	"strings"

	"github.com/ignite/adpilot/internal/domain"
)

// AnalysisContext is the normalized metric snapshot a rule predicate sees.
// It is ephemeral: built per campaign per invocation, never persisted.
type AnalysisContext struct {
	Platform     domain.Platform
	CampaignType domain.CampaignType
	CampaignName string

	Spend       float64
	ROAS        float64
	CTR         float64
	CPC         float64
	CPA         float64
	CPM         float64
	Conversions int64
	Impressions int64
	Clicks      int64

	ROASTrend domain.TrendDirection
	CTRTrend  domain.TrendDirection

	FunnelStage domain.FunnelStage

	DaysSinceLaunch int
	Frequency       float64
	InLearningPhase bool
}

// BuildContext normalizes a campaign snapshot plus upstream trend indicators
// into the canonical context rule predicates evaluate against.
func BuildContext(snap domain.CampaignSnapshot, trends domain.TrendSet) AnalysisContext {
	ctype := InferCampaignType(snap.Name)
	return AnalysisContext{
		Platform:        snap.Platform,
		CampaignType:    ctype,
		CampaignName:    snap.Name,
		Spend:           snap.Spend,
		ROAS:            snap.ROAS(),
		CTR:             snap.CTR(),
		CPC:             snap.CPC(),
		CPA:             snap.CPA(),
		CPM:             snap.CPM(),
		Conversions:     snap.Conversions,
		Impressions:     snap.Impressions,
		Clicks:          snap.Clicks,
		ROASTrend:       orStable(trends.ROAS),
		CTRTrend:        orStable(trends.CTR),
		FunnelStage:     StageForType(ctype),
		DaysSinceLaunch: snap.DaysSinceLaunch,
		Frequency:       snap.Frequency,
		InLearningPhase: snap.InLearningPhase,
	}
}

func orStable(d domain.TrendDirection) domain.TrendDirection {
	if d == "" {
		return domain.TrendStable
	}
	return d
}

// campaignTypePatterns maps name substrings to campaign types, checked in
// order so the more specific patterns win.
var campaignTypePatterns = []struct {
	pattern string
	ctype   domain.CampaignType
}{
	{"retarget", domain.CampaignRetargeting},
	{"remarket", domain.CampaignRetargeting},
	{"rtg", domain.CampaignRetargeting},
	{"shopping", domain.CampaignShopping},
	{"pmax", domain.CampaignShopping},
	{"catalog", domain.CampaignShopping},
	{"awareness", domain.CampaignAwareness},
	{"reach", domain.CampaignAwareness},
	{"video", domain.CampaignAwareness},
	{"brand", domain.CampaignBrand},
	{"prospect", domain.CampaignProspecting},
	{"cold", domain.CampaignProspecting},
	{"lookalike", domain.CampaignProspecting},
	{"loyal", domain.CampaignLoyalty},
	{"winback", domain.CampaignLoyalty},
	{"crm", domain.CampaignLoyalty},
}

// InferCampaignType classifies a campaign by its name.
func InferCampaignType(name string) domain.CampaignType {
	lower := strings.ToLower(name)
	for _, p := range campaignTypePatterns {
		if strings.Contains(lower, p.pattern) {
			return p.ctype
		}
	}
	return domain.CampaignGeneric
}

// StageForType maps a campaign type to its funnel stage.
func StageForType(t domain.CampaignType) domain.FunnelStage {
	switch t {
	case domain.CampaignAwareness:
		return domain.StageAwareness
	case domain.CampaignProspecting:
		return domain.StageConsideration
	case domain.CampaignLoyalty:
		return domain.StageRetention
	case domain.CampaignBrand, domain.CampaignRetargeting, domain.CampaignShopping, domain.CampaignGeneric:
		return domain.StageConversion
	default:
		return domain.StageConversion
	}
}
