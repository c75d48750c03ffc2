package metrics

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotComputable 不可计算指标的展示文本
const NotComputable = "N/A"

// FormatCurrency 美元格式，保留两位小数并加千分位，如 $1,234,567.89
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

// FormatPercent 保留places位小数，如 20.0%
func FormatPercent(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places) + "%"
}

// FormatMargin 不可计算时返回N/A
func FormatMargin(pct float64, ok bool) string {
	if !ok {
		return NotComputable
	}
	return FormatPercent(pct, 1)
}

// RoundCents 金额四舍五入到分
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
