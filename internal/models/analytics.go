package models

// HealthGrade summarises the expense-to-income ratio
type HealthGrade string

const (
	GradeExcellent HealthGrade = "Excellent"
	GradeGood      HealthGrade = "Good"
	GradeCaution   HealthGrade = "Caution"
	GradeCritical  HealthGrade = "Critical"
)

// IncomeExpenseStats represents the dashboard totals
type IncomeExpenseStats struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Balance       float64 `json:"balance"`
}

// CategoryTotal is one slice of the expense breakdown chart
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TopCategory is the expense category with the largest total
type TopCategory struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"` // share of total expenses, 0-100
}

// NoTopCategory is reported when there are no expenses
var NoTopCategory = TopCategory{Name: "N/A"}

// FinancialMetrics is derived from a transaction set on every request and never stored
type FinancialMetrics struct {
	TotalIncome          float64            `json:"totalIncome"`
	TotalExpenses        float64            `json:"totalExpenses"`
	Balance              float64            `json:"balance"`
	ExpenseToIncomeRatio float64            `json:"expenseToIncomeRatio"`
	CategoryTotals       map[string]float64 `json:"categoryTotals"`
	TopCategory          TopCategory        `json:"topCategory"`
	AnomalyCount         int                `json:"anomalyCount"`
	MonthlyAverage       float64            `json:"monthlyAverage"`
	PredictedNextMonth   float64            `json:"predictedNextMonth"`
	HealthGrade          HealthGrade        `json:"healthGrade"`
	TransactionCount     int                `json:"transactionCount"`
}

// HasData reports whether the metrics were computed from at least one transaction
func (m FinancialMetrics) HasData() bool {
	return m.TransactionCount > 0
}
