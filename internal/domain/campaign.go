package domain

import "time"

// Platform scopes a campaign, rule, or recommendation to an ad channel.
type Platform string

const (
	PlatformSearch Platform = "search"
	PlatformSocial Platform = "social"
	PlatformBoth   Platform = "both"
)

// Includes reports whether a platform scope covers the given platform.
// A "both" scope covers everything; an empty scope is treated as "both".
func (p Platform) Includes(other Platform) bool {
	if p == PlatformBoth || p == "" || other == PlatformBoth {
		return true
	}
	return p == other
}

// CampaignType classifies a campaign by its intent, inferred from naming.
type CampaignType string

const (
	CampaignBrand       CampaignType = "brand"
	CampaignProspecting CampaignType = "prospecting"
	CampaignRetargeting CampaignType = "retargeting"
	CampaignShopping    CampaignType = "shopping"
	CampaignAwareness   CampaignType = "awareness"
	CampaignLoyalty     CampaignType = "loyalty"
	CampaignGeneric     CampaignType = "generic"
)

// FunnelStage classifies a campaign's purpose in the marketing funnel.
type FunnelStage string

const (
	StageAwareness     FunnelStage = "awareness"
	StageConsideration FunnelStage = "consideration"
	StageConversion    FunnelStage = "conversion"
	StageRetention     FunnelStage = "retention"
)

// TrendDirection indicates how a metric has been moving over the window.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// CampaignSnapshot is a pre-aggregated metric snapshot for one campaign over
// a fixed lookback window. Snapshots are produced by the ingestion layer;
// this core never computes them from raw events.
type CampaignSnapshot struct {
	AccountID   string    `json:"account_id"`
	Platform    Platform  `json:"platform"`
	CampaignID  string    `json:"campaign_id"`
	Name        string    `json:"name"`
	Spend       float64   `json:"spend"`
	Revenue     float64   `json:"revenue"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	// Optional context supplied by the ingestion layer when known.
	DaysSinceLaunch int     `json:"days_since_launch,omitempty"`
	Frequency       float64 `json:"frequency,omitempty"`
	InLearningPhase bool    `json:"in_learning_phase,omitempty"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
}

// ROAS returns revenue over spend, 0 when there is no spend.
func (s CampaignSnapshot) ROAS() float64 {
	if s.Spend <= 0 {
		return 0
	}
	return s.Revenue / s.Spend
}

// CTR returns clicks over impressions as a percentage.
func (s CampaignSnapshot) CTR() float64 {
	if s.Impressions <= 0 {
		return 0
	}
	return float64(s.Clicks) / float64(s.Impressions) * 100
}

// CPC returns spend per click, 0 when there are no clicks.
func (s CampaignSnapshot) CPC() float64 {
	if s.Clicks <= 0 {
		return 0
	}
	return s.Spend / float64(s.Clicks)
}

// CPA returns spend per conversion, 0 when there are no conversions.
func (s CampaignSnapshot) CPA() float64 {
	if s.Conversions <= 0 {
		return 0
	}
	return s.Spend / float64(s.Conversions)
}

// CPM returns spend per thousand impressions.
func (s CampaignSnapshot) CPM() float64 {
	if s.Impressions <= 0 {
		return 0
	}
	return s.Spend / float64(s.Impressions) * 1000
}

// TrendSet carries per-campaign trend directions computed upstream.
type TrendSet struct {
	ROAS TrendDirection `json:"roas"`
	CTR  TrendDirection `json:"ctr"`
}
