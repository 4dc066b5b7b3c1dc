package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"ledgerlink/internal/domain/aggregation"
	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/shared/middleware"
)

type TransactionHandler struct {
	txService *aggregation.TransactionService
}

func NewTransactionHandler(txService *aggregation.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// HandleTransactions serves GET /api/transactions?bankLinkId=&startDate=&endDate=.
// Dates are YYYY-MM-DD; both omitted means the trailing thirty days.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bankLinkID, err := strconv.ParseInt(r.URL.Query().Get("bankLinkId"), 10, 64)
	if err != nil {
		http.Error(w, "Valid bankLinkId is required", http.StatusBadRequest)
		return
	}

	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")

	transactions, err := h.txService.ListTransactions(r.Context(), userID, bankLinkID, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, aggregation.ErrInvalidDateRange):
			http.Error(w, "Invalid date range", http.StatusBadRequest)
		case errors.Is(err, banklink.ErrLinkNotFound):
			http.Error(w, "Bank link not found", http.StatusNotFound)
		case errors.Is(err, banklink.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Printf("User %d: error listing transactions for link %d: %v", userID, bankLinkID, err)
			http.Error(w, "Failed to list transactions", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}
