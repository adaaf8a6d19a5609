// Package prompt turns metrics and transactions into text for the generation client.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Dan9191/finance-insights/internal/models"
)

const (
	// InsightSampleSize bounds the transactions embedded in the insight prompt
	InsightSampleSize = 10
	// CoachSampleSize bounds the transactions embedded in the coach context
	CoachSampleSize = 20
	// MaxInsights is the most insight lines returned to callers
	MaxInsights = 6
)

// Format controls how money is presented to the model
type Format struct {
	CurrencySymbol string
	CurrencyName   string
}

// DefaultFormat matches the currency the dashboard was first built for
var DefaultFormat = Format{CurrencySymbol: "₹", CurrencyName: "Indian Rupees"}

func (f Format) money(v float64) string {
	return fmt.Sprintf("%s%.2f", f.CurrencySymbol, v)
}

// InsightsSystem is the analyst persona for insight generation
func InsightsSystem(f Format) string {
	return fmt.Sprintf("You are a financial analyst. Provide clear, specific insights based on the data. "+
		"Be encouraging but honest about financial health. Always use %s (%s) symbol when mentioning amounts.",
		f.CurrencySymbol, f.CurrencyName)
}

// Insights builds the user prompt asking for short insight sentences.
// recent is expected most-recent-first; only the first InsightSampleSize are used.
func Insights(m models.FinancialMetrics, recent []models.Transaction, f Format) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this financial data and provide 5-6 insights (all amounts are in %s %s):\n\n", f.CurrencyName, f.CurrencySymbol)
	b.WriteString("Financial Overview:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", f.money(m.TotalIncome))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", f.money(m.TotalExpenses))
	fmt.Fprintf(&b, "- Expense-to-Income Ratio: %.1f%%\n", m.ExpenseToIncomeRatio)
	fmt.Fprintf(&b, "- Financial Health: %s\n", m.HealthGrade)
	fmt.Fprintf(&b, "- Top Spending Category: %s (%.1f%% of expenses)\n", m.TopCategory.Name, m.TopCategory.Percentage)
	fmt.Fprintf(&b, "- Average Monthly Spending: %s\n", f.money(m.MonthlyAverage))
	fmt.Fprintf(&b, "- Predicted Next Month Spending: %s (trend-adjusted)\n", f.money(m.PredictedNextMonth))
	fmt.Fprintf(&b, "- Unusual Transactions Detected: %d\n\n", m.AnomalyCount)
	fmt.Fprintf(&b, "Recent Transactions: %s\n\n", sample(recent, InsightSampleSize))
	b.WriteString(`Provide insights covering:
1. Expense-to-income ratio health assessment
2. Top spending category analysis
3. Specific savings recommendations
4. Next month spending forecast
5. Any anomalies or unusual patterns
6. Actionable tips

`)
	fmt.Fprintf(&b, "IMPORTANT: Always mention amounts with %s (%s) symbol.\n", f.CurrencySymbol, f.CurrencyName)
	b.WriteString("Format each insight as a clear, actionable sentence on its own line. Start each with an emoji.")
	return b.String()
}

// CoachSystem is the advisor persona for the chat coach
func CoachSystem() string {
	return "You are a knowledgeable financial advisor. Provide clear, actionable advice based on the user's " +
		"transaction data. Be encouraging and helpful."
}

// Coach builds the financial context block followed by the user's question
func Coach(s models.IncomeExpenseStats, breakdown []models.CategoryTotal, recent []models.Transaction, question string, f Format) string {
	byCategory := make(map[string]float64, len(breakdown))
	for _, c := range breakdown {
		byCategory[c.Name] = c.Value
	}
	categories, _ := json.Marshal(byCategory)

	var b strings.Builder
	b.WriteString("User's Financial Data:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", f.money(s.TotalIncome))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", f.money(s.TotalExpenses))
	fmt.Fprintf(&b, "- Net Savings: %s\n", f.money(s.Balance))
	fmt.Fprintf(&b, "- Expense by Category: %s\n\n", categories)
	fmt.Fprintf(&b, "Transaction History (most recent %d):\n%s\n\n", CoachSampleSize, sample(recent, CoachSampleSize))
	fmt.Fprintf(&b, "User Question: %s\n\n", question)
	b.WriteString("Provide a helpful, personalized answer based on their actual financial data. " +
		"Include specific numbers and actionable advice.")
	return b.String()
}

// Categorize asks for exactly one label out of labels
func Categorize(description string, typ models.TransactionType, labels []string) string {
	return fmt.Sprintf("Categorize this %s: %q. Return only one word from: %s",
		typ, description, strings.Join(labels, ", "))
}

// ParseInsights splits generated text into at most MaxInsights non-blank lines
func ParseInsights(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == MaxInsights {
			break
		}
	}
	return out
}

type sampleRow struct {
	Type        models.TransactionType `json:"type"`
	Amount      string                 `json:"amount"`
	Category    string                 `json:"category"`
	Description string                 `json:"description,omitempty"`
	Date        string                 `json:"date"`
}

// sample serialises the first n transactions without ids
func sample(txs []models.Transaction, n int) string {
	if len(txs) > n {
		txs = txs[:n]
	}
	rows := make([]sampleRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, sampleRow{
			Type:        t.Type,
			Amount:      t.Amount.StringFixed(2),
			Category:    t.Category,
			Description: t.Description,
			Date:        t.Date,
		})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
