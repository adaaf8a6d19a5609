// Package metrics derives dashboard figures from a set of transactions.
// Everything here is a pure function of its input.
package metrics

import (
	"sort"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

const anomalyFactor = 2

var hundred = decimal.NewFromInt(100)

// Compute builds FinancialMetrics from txs. An empty input yields zeroed
// metrics with the N/A top category.
func Compute(txs []models.Transaction) models.FinancialMetrics {
	income, expenses := totals(txs)
	breakdown := categoryTotals(txs)

	m := models.FinancialMetrics{
		TotalIncome:        income.InexactFloat64(),
		TotalExpenses:      expenses.InexactFloat64(),
		Balance:            income.Sub(expenses).InexactFloat64(),
		CategoryTotals:     make(map[string]float64, len(breakdown)),
		TopCategory:        models.NoTopCategory,
		AnomalyCount:       countAnomalies(txs),
		MonthlyAverage:     MonthlyAverage(txs),
		PredictedNextMonth: Forecast(txs),
		TransactionCount:   len(txs),
	}

	if income.IsPositive() {
		m.ExpenseToIncomeRatio = expenses.Div(income).Mul(hundred).InexactFloat64()
	}
	m.HealthGrade = Grade(m.ExpenseToIncomeRatio)

	for _, c := range breakdown {
		m.CategoryTotals[c.Name] = c.Value
	}
	if len(breakdown) > 0 {
		top := breakdown[0]
		m.TopCategory = models.TopCategory{Name: top.Name, Amount: top.Value}
		if expenses.IsPositive() {
			m.TopCategory.Percentage = top.Value / m.TotalExpenses * 100
		}
	}

	return m
}

// Summarize returns the income, expense and balance totals
func Summarize(txs []models.Transaction) models.IncomeExpenseStats {
	income, expenses := totals(txs)
	return models.IncomeExpenseStats{
		TotalIncome:   income.InexactFloat64(),
		TotalExpenses: expenses.InexactFloat64(),
		Balance:       income.Sub(expenses).InexactFloat64(),
	}
}

// CategoryBreakdown sums expenses per category, largest first. Categories with
// equal totals keep the order in which they were first seen in txs.
func CategoryBreakdown(txs []models.Transaction) []models.CategoryTotal {
	return categoryTotals(txs)
}

// Grade maps an expense-to-income ratio (percent) to a health grade
func Grade(ratio float64) models.HealthGrade {
	switch {
	case ratio < 50:
		return models.GradeExcellent
	case ratio < 70:
		return models.GradeGood
	case ratio < 90:
		return models.GradeCaution
	default:
		return models.GradeCritical
	}
}

func totals(txs []models.Transaction) (income, expenses decimal.Decimal) {
	for _, t := range txs {
		switch t.Type {
		case models.Income:
			income = income.Add(t.Amount)
		case models.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return income, expenses
}

func categoryTotals(txs []models.Transaction) []models.CategoryTotal {
	index := make(map[string]int)
	var sums []decimal.Decimal
	var names []string
	for _, t := range txs {
		if t.Type != models.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(names)
			index[t.Category] = i
			names = append(names, t.Category)
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(t.Amount)
	}

	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sums[order[a]].GreaterThan(sums[order[b]])
	})

	out := make([]models.CategoryTotal, 0, len(order))
	for _, i := range order {
		out = append(out, models.CategoryTotal{Name: names[i], Value: sums[i].InexactFloat64()})
	}
	return out
}

func countAnomalies(txs []models.Transaction) int {
	var sum decimal.Decimal
	n := 0
	for _, t := range txs {
		if t.Type == models.Expense {
			sum = sum.Add(t.Amount)
			n++
		}
	}
	if n == 0 {
		return 0
	}

	threshold := sum.Div(decimal.NewFromInt(int64(n))).Mul(decimal.NewFromInt(anomalyFactor))
	count := 0
	for _, t := range txs {
		if t.Type == models.Expense && t.Amount.GreaterThan(threshold) {
			count++
		}
	}
	return count
}
