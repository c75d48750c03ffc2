package report

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money 金额单元格，空值留空
func Money(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return ""
	}
	f, _ := d.Decimal.Round(2).Float64()
	return f
}

// Date 日期单元格 yyyy-mm-dd
func Date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Percent 可空百分比，一位小数，空值显示N/A
func Percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return decimal.NewFromFloat(*v).StringFixed(1) + "%"
}

// ContentTypeFor 按扩展名推断上传类型
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return ContentType
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
