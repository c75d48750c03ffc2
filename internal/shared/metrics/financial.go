package metrics

import "math"

// MarginTier 毛利分级
type MarginTier string

const (
	MarginPositive MarginTier = "positive"
	MarginLow      MarginTier = "low"
	MarginNegative MarginTier = "negative"
)

const (
	marginPositiveFloor = 15.0
	marginLowFloor      = 5.0
)

// MarginPct 毛利率。报价为空或<=0、成本为空时不可计算，返回ok=false（区别于0%毛利）
func MarginPct(bidAmount, estimatedCost *float64) (float64, bool) {
	if bidAmount == nil || *bidAmount <= 0 || estimatedCost == nil {
		return 0, false
	}
	return (*bidAmount - *estimatedCost) / *bidAmount * 100, true
}

// ClassifyMargin >=15 positive, [5,15) low, <5 negative
func ClassifyMargin(pct float64) MarginTier {
	switch {
	case pct >= marginPositiveFloor:
		return MarginPositive
	case pct >= marginLowFloor:
		return MarginLow
	default:
		return MarginNegative
	}
}

// MarginTierOf 不可计算的毛利没有分级，返回空串
func MarginTierOf(pct float64, ok bool) MarginTier {
	if !ok {
		return ""
	}
	return ClassifyMargin(pct)
}

// BidMargin 投标毛利
func BidMargin(b BidRecord) (float64, bool) {
	return MarginPct(b.BidAmount, b.EstimatedCost)
}

// UtilizationTier 预算使用分级
type UtilizationTier string

const (
	UtilizationOver    UtilizationTier = "over"
	UtilizationWarning UtilizationTier = "warning"
	UtilizationWithin  UtilizationTier = "within"
)

// BudgetUtilizationPct round(actual/contract*100)，任一为空或合同额为0时返回0
func BudgetUtilizationPct(actualCost, contractAmount *float64) int {
	if actualCost == nil || contractAmount == nil || *contractAmount == 0 {
		return 0
	}
	return int(math.Round(*actualCost / *contractAmount * 100))
}

// ClassifyUtilization over优先于warning
func ClassifyUtilization(pct int) UtilizationTier {
	if pct > 100 {
		return UtilizationOver
	}
	if pct > 85 {
		return UtilizationWarning
	}
	return UtilizationWithin
}
