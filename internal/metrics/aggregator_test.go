package metrics

import (
	"math"
	"testing"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

const eps = 1e-9

func tx(typ models.TransactionType, amount float64, category, date string) models.Transaction {
	return models.Transaction{
		Type:     typ,
		Amount:   decimal.NewFromFloat(amount),
		Category: category,
		Date:     date,
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestComputeScenario(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Income, 5000, "Salary", "2025-03-01"),
		tx(models.Expense, 2000, "Food", "2025-03-02"),
		tx(models.Expense, 3000, "Rent", "2025-03-03"),
	}

	m := Compute(txs)

	if !near(m.TotalIncome, 5000) || !near(m.TotalExpenses, 5000) {
		t.Fatalf("wrong totals: income %f expenses %f", m.TotalIncome, m.TotalExpenses)
	}
	if !near(m.ExpenseToIncomeRatio, 100) {
		t.Fatalf("wrong ratio. want 100 got %f", m.ExpenseToIncomeRatio)
	}
	if m.HealthGrade != models.GradeCritical {
		t.Fatalf("wrong grade. want Critical got %s", m.HealthGrade)
	}
	if m.TopCategory.Name != "Rent" || !near(m.TopCategory.Amount, 3000) || !near(m.TopCategory.Percentage, 60) {
		t.Fatalf("wrong top category: %+v", m.TopCategory)
	}
	if !near(m.CategoryTotals["Food"], 2000) {
		t.Fatalf("wrong Food total %f", m.CategoryTotals["Food"])
	}
	if !near(m.Balance, 0) {
		t.Fatalf("wrong balance %f", m.Balance)
	}
	if !m.HasData() {
		t.Fatalf("expected HasData for non-empty input")
	}
}

func TestComputeEmpty(t *testing.T) {
	m := Compute(nil)

	if m.HasData() {
		t.Fatalf("expected no data")
	}
	if m.TopCategory != models.NoTopCategory {
		t.Fatalf("wrong sentinel: %+v", m.TopCategory)
	}
	if m.TotalIncome != 0 || m.TotalExpenses != 0 || m.ExpenseToIncomeRatio != 0 ||
		m.AnomalyCount != 0 || m.PredictedNextMonth != 0 || m.MonthlyAverage != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", m)
	}
}

func TestComputeNoIncome(t *testing.T) {
	m := Compute([]models.Transaction{
		tx(models.Expense, 120, "Food", "2025-01-10"),
		tx(models.Expense, 80, "Travel", "2025-01-11"),
	})

	if m.ExpenseToIncomeRatio != 0 {
		t.Fatalf("ratio must be 0 without income, got %f", m.ExpenseToIncomeRatio)
	}
	if math.IsNaN(m.ExpenseToIncomeRatio) || math.IsInf(m.ExpenseToIncomeRatio, 0) {
		t.Fatalf("ratio is not finite")
	}
}

func TestComputeNoExpenses(t *testing.T) {
	m := Compute([]models.Transaction{
		tx(models.Income, 900, "Salary", "2025-01-01"),
		tx(models.Income, 100, "Gift", "2025-02-01"),
	})

	if m.TopCategory != models.NoTopCategory {
		t.Fatalf("wrong sentinel: %+v", m.TopCategory)
	}
	if m.AnomalyCount != 0 {
		t.Fatalf("expected no anomalies, got %d", m.AnomalyCount)
	}
	if len(m.CategoryTotals) != 0 {
		t.Fatalf("expected empty category totals, got %v", m.CategoryTotals)
	}
}

func TestAnomalyCount(t *testing.T) {
	base := []models.Transaction{
		tx(models.Expense, 100, "Food", "2025-01-01"),
		tx(models.Expense, 100, "Food", "2025-01-02"),
		tx(models.Expense, 100, "Food", "2025-01-03"),
		tx(models.Expense, 400, "Travel", "2025-01-04"), // mean 175, threshold 350
	}
	if got := Compute(base).AnomalyCount; got != 1 {
		t.Fatalf("wrong anomaly count. want 1 got %d", got)
	}

	// exactly twice the mean is not an anomaly: mean 100, threshold 200
	edge := []models.Transaction{
		tx(models.Expense, 50, "Food", "2025-01-01"),
		tx(models.Expense, 50, "Food", "2025-01-02"),
		tx(models.Expense, 200, "Food", "2025-01-03"),
		tx(models.Expense, 100, "Food", "2025-01-04"),
	}
	if got := Compute(edge).AnomalyCount; got != 0 {
		t.Fatalf("amount equal to 2x mean counted as anomaly, got %d", got)
	}
}

func TestAnomalyCountIgnoresIncome(t *testing.T) {
	expenses := []models.Transaction{
		tx(models.Expense, 10, "Food", "2025-01-01"),
		tx(models.Expense, 10, "Food", "2025-01-02"),
		tx(models.Expense, 100, "Bills", "2025-01-03"),
	}
	want := Compute(expenses).AnomalyCount

	for _, income := range []float64{0, 1, 50, 1e6} {
		txs := append([]models.Transaction{tx(models.Income, income, "Salary", "2025-01-01")}, expenses...)
		if got := Compute(txs).AnomalyCount; got != want {
			t.Fatalf("income %f changed anomaly count: want %d got %d", income, want, got)
		}
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		ratio float64
		want  models.HealthGrade
	}{
		{0, models.GradeExcellent},
		{50 - eps, models.GradeExcellent},
		{50, models.GradeGood},
		{50 + eps, models.GradeGood},
		{70 - eps, models.GradeGood},
		{70, models.GradeCaution},
		{90 - eps, models.GradeCaution},
		{90, models.GradeCritical},
		{90 + eps, models.GradeCritical},
		{250, models.GradeCritical},
	}

	for _, c := range cases {
		if got := Grade(c.ratio); got != c.want {
			t.Fatalf("Grade(%v): want %s got %s", c.ratio, c.want, got)
		}
	}
}

func TestTopCategoryTieKeepsFirstSeen(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Expense, 300, "Transport", "2025-01-01"),
		tx(models.Expense, 100, "Food", "2025-01-02"),
		tx(models.Expense, 200, "Food", "2025-01-03"),
	}

	m := Compute(txs)
	if m.TopCategory.Name != "Transport" {
		t.Fatalf("tie should go to first-seen category, got %s", m.TopCategory.Name)
	}
	if !near(m.TopCategory.Percentage, 50) {
		t.Fatalf("wrong percentage %f", m.TopCategory.Percentage)
	}
}

func TestCategoryBreakdownOrder(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Expense, 10, "Food", "2025-01-01"),
		tx(models.Income, 999, "Salary", "2025-01-01"),
		tx(models.Expense, 30, "Bills", "2025-01-02"),
		tx(models.Expense, 15, "Food", "2025-01-03"),
	}

	got := CategoryBreakdown(txs)
	if len(got) != 2 {
		t.Fatalf("want 2 categories, got %d", len(got))
	}
	if got[0].Name != "Bills" || !near(got[0].Value, 30) {
		t.Fatalf("wrong first slice: %+v", got[0])
	}
	if got[1].Name != "Food" || !near(got[1].Value, 25) {
		t.Fatalf("wrong second slice: %+v", got[1])
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]models.Transaction{
		tx(models.Income, 1000.10, "Salary", "2025-01-01"),
		tx(models.Expense, 0.20, "Food", "2025-01-02"),
	})

	if !near(got.TotalIncome, 1000.10) || !near(got.TotalExpenses, 0.20) || !near(got.Balance, 999.90) {
		t.Fatalf("wrong summary: %+v", got)
	}
}
