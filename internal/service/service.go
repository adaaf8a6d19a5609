package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finance-insights/internal/integrations/llm"
	"github.com/Dan9191/finance-insights/internal/metrics"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/prompt"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=service.go -destination=mocks/store.go -package=mocks
//go:generate mockgen -destination=mocks/completer.go -package=mocks github.com/Dan9191/finance-insights/internal/integrations/llm Completer

// TransactionStore is the persistence the service needs
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// Publisher is told about every local write so subscribers refresh without
// waiting for the database notification
type Publisher interface {
	Publish(userID string)
}

// Service handles business logic
type Service struct {
	store      TransactionStore
	llm        llm.Completer
	log        *logrus.Logger
	format     prompt.Format
	categories *cache.Cache
	publisher  Publisher
}

// Snapshot is everything the dashboard renders for one user
type Snapshot struct {
	Stats      models.IncomeExpenseStats `json:"stats"`
	Metrics    models.FinancialMetrics   `json:"metrics"`
	Categories []models.CategoryTotal    `json:"categories"`
}

// NewService initializes a new service
func NewService(store TransactionStore, completer llm.Completer, log *logrus.Logger, format prompt.Format) *Service {
	return &Service{
		store:      store,
		llm:        completer,
		log:        log,
		format:     format,
		categories: cache.New(24*time.Hour, time.Hour),
	}
}

// SetPublisher attaches the realtime publisher notified after writes
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

func (s *Service) publish(userID string) {
	if s.publisher != nil {
		s.publisher.Publish(userID)
	}
}

// Snapshot reads all of the user's transactions once and derives every dashboard figure
func (s *Service) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Stats:      metrics.Summarize(txs),
		Metrics:    metrics.Compute(txs),
		Categories: metrics.CategoryBreakdown(txs),
	}, nil
}

// Stats returns income, expense and balance totals
func (s *Service) Stats(ctx context.Context, userID string) (models.IncomeExpenseStats, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return models.IncomeExpenseStats{}, err
	}
	return metrics.Summarize(txs), nil
}

// Metrics returns the full set of derived financial metrics
func (s *Service) Metrics(ctx context.Context, userID string) (models.FinancialMetrics, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return models.FinancialMetrics{}, err
	}
	return metrics.Compute(txs), nil
}

// CategoryBreakdown returns expense totals per category for the chart
func (s *Service) CategoryBreakdown(ctx context.Context, userID string) ([]models.CategoryTotal, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return metrics.CategoryBreakdown(txs), nil
}
