package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/domain/notification"
	"ledgerlink/internal/domain/transfer"
	"ledgerlink/internal/shared/middleware"
)

type TransferHandler struct {
	transferService *transfer.Service
	notifications   *notification.Service
}

func NewTransferHandler(transferService *transfer.Service, notifications *notification.Service) *TransferHandler {
	return &TransferHandler{transferService: transferService, notifications: notifications}
}

type CreateTransferRequest struct {
	ReceiverShareableID string `json:"receiverShareableId"`
	SenderBankLinkID    int64  `json:"senderBankLinkId"`
	Amount              string `json:"amount"`
}

// HandleTransfers serves POST /api/transfers: submits an ACH transfer
// from the sender's funding source to the receiver identified by a
// shareable id.
func (h *TransferHandler) HandleTransfers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	result, err := h.transferService.CreateTransfer(r.Context(), userID, transfer.CreateParams{
		ReceiverShareableID: req.ReceiverShareableID,
		SenderBankLinkID:    req.SenderBankLinkID,
		Amount:              amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrInvalidAmount):
			http.Error(w, "Amount must be positive with at most two decimal places", http.StatusBadRequest)
		case errors.Is(err, transfer.ErrSenderLinkNeeded):
			http.Error(w, "Multiple bank links; senderBankLinkId is required", http.StatusBadRequest)
		case errors.Is(err, banklink.ErrEncoding):
			http.Error(w, "Invalid receiver shareable ID", http.StatusBadRequest)
		case errors.Is(err, banklink.ErrLinkNotFound):
			http.Error(w, "Bank link not found", http.StatusNotFound)
		case errors.Is(err, banklink.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, banklink.ErrIntegrity):
			log.Printf("User %d: integrity violation on transfer: %v", userID, err)
			http.Error(w, "Conflicting bank links for receiver account", http.StatusConflict)
		case errors.Is(err, transfer.ErrNoFundingSource):
			http.Error(w, "Bank link has no funding source", http.StatusUnprocessableEntity)
		case errors.Is(err, transfer.ErrTransferRejected):
			http.Error(w, "Transfer rejected by payment network", http.StatusBadGateway)
		default:
			log.Printf("User %d: error creating transfer: %v", userID, err)
			http.Error(w, "Failed to create transfer", http.StatusInternalServerError)
		}
		return
	}

	if h.notifications != nil {
		h.notifications.SendTransferInitiated(r.Context(), userID, result.Amount.StringFixed(2))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}
