package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/Dan9191/finance-insights/internal/integrations/llm"
	"github.com/Dan9191/finance-insights/internal/metrics"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/prompt"
	"github.com/patrickmn/go-cache"
)

// CoachHistoryLimit is how many recent transactions the coach looks at
const CoachHistoryLimit = 100

// DefaultCategory is used whenever categorization cannot produce a known label
const DefaultCategory = "Other"

// Categories is the fixed label set for categorization
var Categories = []string{
	"Food", "Transport", "Shopping", "Entertainment", "Bills",
	"Healthcare", "Education", "Travel", DefaultCategory,
}

// Fallback payloads returned instead of upstream errors
var (
	NoDataInsights   = []string{"Add transactions to get personalized insights!"}
	FailedInsights   = []string{"Unable to generate insights at this time."}
	TimedOutInsights = []string{"Insight generation timed out. Please try again."}
	NoDataAnswer     = "Please add some transactions first so I can help you better!"
	FailedAnswer     = "Sorry, I encountered an error. Please try again."
	TimedOutAnswer   = "Sorry, generating an answer timed out. Please try again."
)

// Categorize asks the model for one label from Categories. It makes at most
// one call and returns DefaultCategory on any failure or unknown answer.
func (s *Service) Categorize(ctx context.Context, description string, typ models.TransactionType) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return DefaultCategory
	}

	key := string(typ) + "|" + strings.ToLower(description)
	if v, ok := s.categories.Get(key); ok {
		return v.(string)
	}

	text, err := s.llm.Complete(ctx, "", prompt.Categorize(description, typ, Categories))
	if err != nil {
		s.log.WithError(err).Warn("Categorization failed, using default")
		return DefaultCategory
	}

	category, ok := matchCategory(text)
	if !ok {
		s.log.WithField("answer", text).Warn("Model returned an unknown category")
		return DefaultCategory
	}
	s.categories.Set(key, category, cache.DefaultExpiration)
	return category
}

// matchCategory maps free model output like "food." or "**Travel**" onto a label
func matchCategory(text string) (string, bool) {
	word := strings.TrimFunc(strings.TrimSpace(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, c := range Categories {
		if strings.EqualFold(word, c) {
			return c, true
		}
	}
	return "", false
}

// GenerateInsights returns up to six insight sentences for the user. It never
// fails; problems are logged and a fallback list is returned.
func (s *Service) GenerateInsights(ctx context.Context, userID string) []string {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		s.log.WithError(err).WithField("user", userID).Error("Failed to load transactions for insights")
		return FailedInsights
	}

	m := metrics.Compute(txs)
	if !m.HasData() {
		return NoDataInsights
	}

	text, err := s.llm.Complete(ctx, prompt.InsightsSystem(s.format), prompt.Insights(m, txs, s.format))
	if err != nil {
		return s.insightFallback(userID, err)
	}

	insights := prompt.ParseInsights(text)
	if len(insights) == 0 {
		s.log.WithField("user", userID).Warn("Model returned no insights")
		return FailedInsights
	}
	return insights
}

func (s *Service) insightFallback(userID string, err error) []string {
	entry := s.log.WithError(err).WithField("user", userID)
	if errors.Is(err, llm.ErrTimeout) {
		entry.Warn("Insight generation timed out")
		return TimedOutInsights
	}
	entry.Error("Insight generation failed")
	return FailedInsights
}

// AskCoach answers a question using the user's recent transactions as
// context. The model's answer is returned verbatim; failures yield a fallback.
func (s *Service) AskCoach(ctx context.Context, userID, question string) string {
	txs, err := s.store.ListTransactions(ctx, userID, CoachHistoryLimit)
	if err != nil {
		s.log.WithError(err).WithField("user", userID).Error("Failed to load transactions for coach")
		return FailedAnswer
	}
	if len(txs) == 0 {
		return NoDataAnswer
	}

	userPrompt := prompt.Coach(metrics.Summarize(txs), metrics.CategoryBreakdown(txs), txs, question, s.format)
	answer, err := s.llm.Complete(ctx, prompt.CoachSystem(), userPrompt)
	if err != nil {
		entry := s.log.WithError(err).WithField("user", userID)
		if errors.Is(err, llm.ErrTimeout) {
			entry.Warn("Coach answer timed out")
			return TimedOutAnswer
		}
		entry.Error("Coach answer failed")
		return FailedAnswer
	}
	return answer
}
