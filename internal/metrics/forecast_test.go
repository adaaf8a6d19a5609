package metrics

import (
	"testing"

	"github.com/Dan9191/finance-insights/internal/models"
)

func TestForecast(t *testing.T) {
	cases := []struct {
		name string
		txs  []models.Transaction
		want float64
	}{
		{
			name: "no expenses",
			txs:  []models.Transaction{tx(models.Income, 500, "Salary", "2025-01-01")},
			want: 0,
		},
		{
			name: "single month",
			txs: []models.Transaction{
				tx(models.Expense, 400, "Food", "2025-01-03"),
				tx(models.Expense, 600, "Rent", "2025-01-20"),
			},
			want: 1000,
		},
		{
			name: "two months at the growth cap",
			txs: []models.Transaction{
				tx(models.Expense, 1200, "Rent", "2025-02-01"),
				tx(models.Expense, 1000, "Rent", "2025-01-01"),
			},
			// (1000*1 + 1200*1.5) / 2.5 = 1120, growth 0.2
			want: 1344,
		},
		{
			name: "three months growth clamped",
			txs: []models.Transaction{
				tx(models.Expense, 100, "Food", "2025-01-05"),
				tx(models.Expense, 100, "Food", "2025-02-05"),
				tx(models.Expense, 300, "Food", "2025-03-05"),
			},
			// (100 + 150 + 600) / 4.5, growth 2.0 clamped to 0.2
			want: 850.0 / 4.5 * 1.2,
		},
		{
			name: "decline clamped",
			txs: []models.Transaction{
				tx(models.Expense, 1000, "Food", "2025-01-05"),
				tx(models.Expense, 500, "Food", "2025-02-05"),
			},
			// (1000 + 750) / 2.5 = 700, growth -0.5 clamped to -0.2
			want: 560,
		},
		{
			name: "only last three months count",
			txs: []models.Transaction{
				tx(models.Expense, 9999, "Food", "2024-10-05"),
				tx(models.Expense, 200, "Food", "2024-11-05"),
				tx(models.Expense, 200, "Food", "2024-12-05"),
				tx(models.Expense, 200, "Food", "2025-01-05"),
			},
			want: 200,
		},
		{
			name: "zero first month disables growth",
			txs: []models.Transaction{
				tx(models.Expense, 0, "Food", "2025-01-05"),
				tx(models.Expense, 250, "Food", "2025-02-05"),
			},
			// (0 + 375) / 2.5
			want: 150,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Forecast(c.txs); !near(got, c.want) {
				t.Fatalf("want %f got %f", c.want, got)
			}
		})
	}
}

func TestMonthlyAverage(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Income, 3000, "Salary", "2025-01-01"),
		tx(models.Expense, 300, "Food", "2025-02-10"),
		tx(models.Expense, 300, "Food", "2025-03-10"),
	}

	// three distinct months across all transactions
	if got := MonthlyAverage(txs); !near(got, 200) {
		t.Fatalf("want 200 got %f", got)
	}
}
