package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/finance-insights/internal/config"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Digest is the content of one periodic summary email
type Digest struct {
	Metrics  models.FinancialMetrics
	Insights []string
	Currency string
	Date     time.Time
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendDigest sends the weekly financial summary
func (s *Sender) SendDigest(to string, d Digest) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your financial summary for %s", d.Date.Format("2 Jan 2006"))
	e.Text = []byte(DigestBody(d))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// DigestBody renders the plain-text digest
func DigestBody(d Digest) string {
	m := d.Metrics
	var b strings.Builder
	b.WriteString("Hello,\n\nHere is where your money went.\n\n")
	fmt.Fprintf(&b, "Income:            %s%.2f\n", d.Currency, m.TotalIncome)
	fmt.Fprintf(&b, "Expenses:          %s%.2f\n", d.Currency, m.TotalExpenses)
	fmt.Fprintf(&b, "Balance:           %s%.2f\n", d.Currency, m.Balance)
	fmt.Fprintf(&b, "Expense ratio:     %.1f%% (%s)\n", m.ExpenseToIncomeRatio, m.HealthGrade)
	fmt.Fprintf(&b, "Top category:      %s (%.0f%%)\n", m.TopCategory.Name, m.TopCategory.Percentage)
	fmt.Fprintf(&b, "Next month (est.): %s%.2f\n", d.Currency, m.PredictedNextMonth)
	fmt.Fprintf(&b, "Unusual expenses:  %d\n", m.AnomalyCount)

	if len(d.Insights) > 0 {
		b.WriteString("\nInsights:\n")
		for _, insight := range d.Insights {
			fmt.Fprintf(&b, "  %s\n", insight)
		}
	}
	b.WriteString("\nBest regards,\nFinance Insights")
	return b.String()
}
