package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

func recent(n int) []models.Transaction {
	txs := make([]models.Transaction, n)
	for i := range txs {
		txs[i] = models.Transaction{
			ID:          fmt.Sprintf("id-%d", i),
			Type:        models.Expense,
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Category:    "Food",
			Description: fmt.Sprintf("meal-%02d", i),
			Date:        "2025-01-01",
		}
	}
	return txs
}

func TestInsightsUsesFormat(t *testing.T) {
	m := models.FinancialMetrics{
		TotalIncome:          5000,
		TotalExpenses:        2500,
		ExpenseToIncomeRatio: 50,
		TopCategory:          models.TopCategory{Name: "Rent", Amount: 1500, Percentage: 60},
		PredictedNextMonth:   1344,
		AnomalyCount:         2,
		HealthGrade:          models.GradeGood,
	}

	got := Insights(m, recent(15), Format{CurrencySymbol: "€", CurrencyName: "Euros"})

	for _, want := range []string{"€5000.00", "€1344.00", "50.0%", "Rent (60.0% of expenses)", "Unusual Transactions Detected: 2", "Euros"} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "₹") {
		t.Fatalf("prompt leaked default currency:\n%s", got)
	}
	if !strings.Contains(got, "meal-09") || strings.Contains(got, "meal-10") {
		t.Fatalf("prompt should carry exactly %d transactions", InsightSampleSize)
	}
	if strings.Contains(got, "id-0") {
		t.Fatalf("prompt should not carry transaction ids")
	}
}

func TestCoachContext(t *testing.T) {
	s := models.IncomeExpenseStats{TotalIncome: 1000, TotalExpenses: 400, Balance: 600}
	breakdown := []models.CategoryTotal{{Name: "Food", Value: 400}}

	got := Coach(s, breakdown, recent(30), "How can I save more?", DefaultFormat)

	for _, want := range []string{"Net Savings: ₹600.00", `{"Food":400}`, "User Question: How can I save more?", "meal-19"} {
		if !strings.Contains(got, want) {
			t.Fatalf("coach prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "meal-20") {
		t.Fatalf("coach prompt should be capped at %d transactions", CoachSampleSize)
	}
}

func TestCategorizeListsLabels(t *testing.T) {
	got := Categorize("Uber to airport", models.Expense, []string{"Food", "Transport", "Other"})
	if !strings.Contains(got, `"Uber to airport"`) || !strings.HasSuffix(got, "Food, Transport, Other") {
		t.Fatalf("unexpected prompt: %s", got)
	}
}

func TestParseInsights(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"\n  \n", 0},
		{"💰 one\n\n📉 two\n  🎯 three  ", 3},
		{"a\nb\nc\nd\ne\nf\ng\nh", MaxInsights},
	}

	for _, c := range cases {
		got := ParseInsights(c.text)
		if len(got) != c.want {
			t.Fatalf("ParseInsights(%q): want %d lines got %d", c.text, c.want, len(got))
		}
		for _, line := range got {
			if line != strings.TrimSpace(line) || line == "" {
				t.Fatalf("line not trimmed: %q", line)
			}
		}
	}
}
