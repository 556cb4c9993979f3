package analyzer

import "math"

// minSegmentSize is the minimum observation count before a segment-level
// bid adjustment is emitted. Smaller samples are noise.
const minSegmentSize = 10

// targetROAS is the account-level return target used to back into
// suggested bids and budgets.
const targetROAS = 3.0

// BidAdjustmentForRatio maps a segment-vs-account performance ratio to a
// bounded percentage bid adjustment using fixed product-tuned breakpoints.
func BidAdjustmentForRatio(ratio float64) int {
	switch {
	case ratio >= 1.5:
		return 50
	case ratio >= 1.3:
		return 30
	case ratio >= 1.1:
		return 15
	case ratio >= 0.9:
		return 0
	case ratio >= 0.7:
		return -15
	case ratio >= 0.5:
		return -30
	default:
		return -50
	}
}

// SuggestedCPC derives a max CPC from average conversion value and
// conversion rate at the target ROAS, rounded to a 5-cent increment and
// clamped to a sane band.
func SuggestedCPC(avgValue, convRate float64) float64 {
	cpc := avgValue * convRate / targetROAS
	cpc = math.Round(cpc/0.05) * 0.05
	return clamp(cpc, 0.25, 20.00)
}

// SuggestedDailyBudget derives a daily budget from window revenue at the
// target ROAS, rounded to the dollar and clamped.
func SuggestedDailyBudget(windowRevenue float64, windowDays int) float64 {
	if windowDays <= 0 {
		windowDays = DefaultLookbackDays
	}
	budget := math.Round(windowRevenue / float64(windowDays) / targetROAS)
	return clamp(budget, 5, 500)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
