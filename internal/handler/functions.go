package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/shopspring/decimal"
)

type categorizeRequest struct {
	Description string                 `json:"description"`
	Type        models.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
}

type coachRequest struct {
	Question string `json:"question"`
}

// CategorizeExpense always answers with a label from the fixed set
func (h *Handler) CategorizeExpense(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.WithError(err).Debug("Unreadable categorize request")
		writeJSON(w, http.StatusOK, map[string]string{"category": service.DefaultCategory})
		return
	}
	if !req.Type.Valid() {
		req.Type = models.Expense
	}

	category := h.svc.Categorize(r.Context(), req.Description, req.Type)
	writeJSON(w, http.StatusOK, map[string]string{"category": category})
}

// FinancialCoach answers a free-form question about the caller's finances
func (h *Handler) FinancialCoach(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req coachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer := h.svc.AskCoach(r.Context(), userID, strings.TrimSpace(req.Question))
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// GenerateInsights returns short insight sentences for the caller
func (h *Handler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"insights": h.svc.GenerateInsights(r.Context(), userID)})
}
