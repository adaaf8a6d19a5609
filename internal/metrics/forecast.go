package metrics

import (
	"sort"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

const (
	forecastWindow = 3
	maxGrowth      = 0.20
)

// recency weights, oldest first, for windows of two and three months
var forecastWeights = map[int][]float64{
	2: {1, 1.5},
	3: {1, 1.5, 2},
}

type monthTotal struct {
	month string
	total decimal.Decimal
}

// Forecast predicts next month's expenses from the last three monthly totals.
// The weighted average leans on recent months and is scaled by the growth from
// the first to the last month, clamped to ±20%. With fewer than two months of
// expenses it falls back to the plain monthly average.
func Forecast(txs []models.Transaction) float64 {
	months := expenseMonths(txs)
	if len(months) < 2 {
		var total decimal.Decimal
		for _, m := range months {
			total = total.Add(m.total)
		}
		return total.InexactFloat64() / float64(max(1, len(months)))
	}

	recent := months
	if len(recent) > forecastWindow {
		recent = recent[len(recent)-forecastWindow:]
	}
	weights := forecastWeights[len(recent)]

	var weighted, weightSum float64
	for i, m := range recent {
		weighted += m.total.InexactFloat64() * weights[i]
		weightSum += weights[i]
	}
	avg := weighted / weightSum

	first := recent[0].total.InexactFloat64()
	last := recent[len(recent)-1].total.InexactFloat64()
	growth := 0.0
	if first != 0 {
		growth = (last - first) / first
	}
	growth = min(max(growth, -maxGrowth), maxGrowth)

	return avg * (1 + growth)
}

// MonthlyAverage divides total expenses by the number of distinct months that
// have any transaction.
func MonthlyAverage(txs []models.Transaction) float64 {
	seen := make(map[string]struct{})
	var expenses decimal.Decimal
	for _, t := range txs {
		seen[t.Month()] = struct{}{}
		if t.Type == models.Expense {
			expenses = expenses.Add(t.Amount)
		}
	}
	return expenses.InexactFloat64() / float64(max(1, len(seen)))
}

func expenseMonths(txs []models.Transaction) []monthTotal {
	byMonth := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != models.Expense {
			continue
		}
		m := t.Month()
		byMonth[m] = byMonth[m].Add(t.Amount)
	}

	out := make([]monthTotal, 0, len(byMonth))
	for m, total := range byMonth {
		out = append(out, monthTotal{month: m, total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].month < out[j].month })
	return out
}
