package metrics

import "github.com/shopspring/decimal"

// FromNullDecimal 数据库金额转为引擎使用的可空浮点
func FromNullDecimal(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}

// ToNullDecimal 引擎结果写回金额字段，保留两位小数
func ToNullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v).Round(2))
}
