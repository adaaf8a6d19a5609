package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 500
)

// ErrValidation marks input rejected before any store or network call
var ErrValidation = errors.New("invalid transaction")

// TransactionInput is the user-editable part of a transaction
type TransactionInput struct {
	Type        models.TransactionType `json:"type"`
	Amount      *decimal.Decimal       `json:"amount"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
}

// Validate checks required fields and normalizes the date
func (in *TransactionInput) Validate(now time.Time) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: type must be income or expense", ErrValidation)
	}
	if in.Amount == nil {
		return fmt.Errorf("%w: amount is required", ErrValidation)
	}
	if in.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Date == "" {
		in.Date = now.Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

// ListTransactions returns the most recent transactions, newest first
func (s *Service) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.ListTransactions(ctx, userID, limit)
}

// CreateTransaction validates and stores a transaction, categorizing it when
// no category was supplied
func (s *Service) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if err := in.Validate(time.Now()); err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = s.Categorize(ctx, in.Description, in.Type)
	}

	t := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        in.Type,
		Amount:      *in.Amount,
		Category:    category,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s created for user %s: %s %s", t.ID, userID, t.Type, t.Category)
	s.publish(userID)
	return t, nil
}

// UpdateTransaction replaces a transaction's fields. The category is
// recomputed only when none is given and the description changed.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id string, in TransactionInput) (*models.Transaction, error) {
	if err := in.Validate(time.Now()); err != nil {
		return nil, err
	}

	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = existing.Category
		if in.Description != existing.Description {
			category = s.Categorize(ctx, in.Description, in.Type)
		}
	}

	t := &models.Transaction{
		ID:          id,
		UserID:      userID,
		Type:        in.Type,
		Amount:      *in.Amount,
		Category:    category,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s updated for user %s", id, userID)
	s.publish(userID)
	return t, nil
}

// DeleteTransaction removes a transaction
func (s *Service) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.log.Infof("Transaction %s deleted for user %s", id, userID)
	s.publish(userID)
	return nil
}
