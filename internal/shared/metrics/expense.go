package metrics

import "sort"

// ToMonthlyEquivalent 折算为月度金额。一次性费用不计入经常性月度支出，返回0
func ToMonthlyEquivalent(amount float64, freq Frequency) float64 {
	switch freq {
	case FrequencyMonthly:
		return amount
	case FrequencyQuarterly:
		return amount / 3
	case FrequencySemiAnnual:
		return amount / 6
	case FrequencyAnnual:
		return amount / 12
	default:
		return 0
	}
}

// MonthlyRunRate 月度经常性支出合计
func MonthlyRunRate(expenses []PropertyExpenseRecord) float64 {
	total := 0.0
	for _, e := range expenses {
		total += ToMonthlyEquivalent(e.Amount, e.Frequency)
	}
	return total
}

// AnnualTotal 12 × 月度合计
func AnnualTotal(expenses []PropertyExpenseRecord) float64 {
	return 12 * MonthlyRunRate(expenses)
}

// ExpenseFilter 空字段表示不过滤
type ExpenseFilter struct {
	PropertyID  string
	ExpenseType string
}

// Match 是否命中过滤条件
func (f ExpenseFilter) Match(e PropertyExpenseRecord) bool {
	if f.PropertyID != "" && e.PropertyID != f.PropertyID {
		return false
	}
	if f.ExpenseType != "" && e.ExpenseType != f.ExpenseType {
		return false
	}
	return true
}

// FilterExpenses 返回新切片，不修改原记录
func FilterExpenses(expenses []PropertyExpenseRecord, f ExpenseFilter) []PropertyExpenseRecord {
	out := make([]PropertyExpenseRecord, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// ExpenseTypeTotal 按费用类型汇总
type ExpenseTypeTotal struct {
	ExpenseType string  `json:"expense_type"`
	Count       int     `json:"count"`
	Monthly     float64 `json:"monthly"`
	Annual      float64 `json:"annual"`
	OneTime     float64 `json:"one_time"`
}

// ExpenseSummary 费用汇总。OneTimeTotal单独列出，不进入经常性合计
type ExpenseSummary struct {
	Count          int                `json:"count"`
	MonthlyRunRate float64            `json:"monthly_run_rate"`
	AnnualTotal    float64            `json:"annual_total"`
	OneTimeTotal   float64            `json:"one_time_total"`
	ByType         []ExpenseTypeTotal `json:"by_type"`
}

// SummarizeExpenses 先过滤再汇总，汇总只覆盖实际展示的记录
func SummarizeExpenses(expenses []PropertyExpenseRecord, f ExpenseFilter) ExpenseSummary {
	shown := FilterExpenses(expenses, f)
	s := ExpenseSummary{Count: len(shown)}
	byType := make(map[string]*ExpenseTypeTotal)
	for _, e := range shown {
		monthly := ToMonthlyEquivalent(e.Amount, e.Frequency)
		s.MonthlyRunRate += monthly
		t := byType[e.ExpenseType]
		if t == nil {
			t = &ExpenseTypeTotal{ExpenseType: e.ExpenseType}
			byType[e.ExpenseType] = t
		}
		t.Count++
		t.Monthly += monthly
		if e.Frequency == FrequencyOneTime {
			s.OneTimeTotal += e.Amount
			t.OneTime += e.Amount
		}
	}
	s.AnnualTotal = 12 * s.MonthlyRunRate

	s.ByType = make([]ExpenseTypeTotal, 0, len(byType))
	for _, t := range byType {
		t.Annual = 12 * t.Monthly
		s.ByType = append(s.ByType, *t)
	}
	sort.Slice(s.ByType, func(i, j int) bool { return s.ByType[i].ExpenseType < s.ByType[j].ExpenseType })
	return s
}
