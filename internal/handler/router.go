package handler

import (
	"net/http"

	"github.com/Dan9191/finance-insights/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Routes wires every endpoint. auth guards everything but /health; aiLimit
// additionally throttles the three text-generation endpoints. CORS wraps the
// router so preflight requests are answered before route matching.
func Routes(h *Handler, auth, aiLimit mux.MiddlewareFunc, ws http.HandlerFunc, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(middleware.Logging(log)))

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Text-generation functions
	fn := r.PathPrefix("/functions/v1").Subrouter()
	fn.Use(auth, aiLimit)
	fn.HandleFunc("/categorize-expense", h.CategorizeExpense).Methods(http.MethodPost)
	fn.HandleFunc("/financial-coach", h.FinancialCoach).Methods(http.MethodPost)
	fn.HandleFunc("/generate-insights", h.GenerateInsights).Methods(http.MethodPost)

	// Protected routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth)
	api.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/metrics", h.Metrics).Methods(http.MethodGet)
	api.HandleFunc("/expenses/by-category", h.ExpensesByCategory).Methods(http.MethodGet)
	if ws != nil {
		api.HandleFunc("/ws", ws).Methods(http.MethodGet)
	}

	return middleware.CORS(r)
}
