package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/domain/notification"
	"ledgerlink/internal/domain/user"
	"ledgerlink/internal/shared/middleware"
)

type BankLinkHandler struct {
	linkService   *banklink.Service
	userRepo      user.Repository
	notifications *notification.Service
}

func NewBankLinkHandler(linkService *banklink.Service, userRepo user.Repository, notifications *notification.Service) *BankLinkHandler {
	return &BankLinkHandler{
		linkService:   linkService,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

type CreateBankLinkRequest struct {
	PublicToken string `json:"publicToken"`
}

// HandleBankLinks routes /api/bank-links by method
func (h *BankLinkHandler) HandleBankLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createBankLink(w, r)
	case http.MethodGet:
		h.listBankLinks(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BankLinkHandler) createBankLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateBankLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PublicToken == "" {
		http.Error(w, "Public token is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	userModel, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("Error fetching user %d for bank link: %v", userID, err)
		http.Error(w, "Failed to fetch user", http.StatusInternalServerError)
		return
	}

	link, err := h.linkService.LinkAccount(ctx, req.PublicToken, userModel)
	if err != nil {
		switch {
		case errors.Is(err, banklink.ErrNoCustomer):
			http.Error(w, "No payment customer provisioned for this account", http.StatusPreconditionFailed)
		case errors.Is(err, banklink.ErrExchange):
			http.Error(w, "Public token is invalid or already used", http.StatusBadRequest)
		case errors.Is(err, banklink.ErrNoAccount):
			http.Error(w, "No bank account available for this link", http.StatusUnprocessableEntity)
		case errors.Is(err, banklink.ErrProcessorToken), errors.Is(err, banklink.ErrFundingSource):
			http.Error(w, "Payment provider error", http.StatusBadGateway)
		default:
			log.Printf("User %d: error linking account: %v", userID, err)
			http.Error(w, "Failed to link bank account", http.StatusInternalServerError)
		}
		return
	}

	if h.notifications != nil {
		h.notifications.SendBankLinked(ctx, userID, link.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

func (h *BankLinkHandler) listBankLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	links, err := h.linkService.ListBankLinks(r.Context(), userID)
	if err != nil {
		log.Printf("User %d: error listing bank links: %v", userID, err)
		http.Error(w, "Failed to list bank links", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []*banklink.BankLink{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

// HandleBankLinkByID serves GET /api/bank-links/{id}
func (h *BankLinkHandler) HandleBankLinkByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid bank link ID", http.StatusBadRequest)
		return
	}

	link, err := h.linkService.GetBankLink(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, banklink.ErrLinkNotFound):
			http.Error(w, "Bank link not found", http.StatusNotFound)
		case errors.Is(err, banklink.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Printf("User %d: error fetching bank link %d: %v", userID, id, err)
			http.Error(w, "Failed to fetch bank link", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(link)
}

// HandleBankLinkByShareableID serves GET /api/bank-links/by-account/{shareableId}.
// Used to resolve a transfer receiver; the response exposes only public fields.
func (h *BankLinkHandler) HandleBankLinkByShareableID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shareableID := r.PathValue("shareableId")
	if shareableID == "" {
		http.Error(w, "Shareable ID is required", http.StatusBadRequest)
		return
	}

	link, err := h.linkService.GetBankLinkByShareableID(r.Context(), shareableID)
	if err != nil {
		switch {
		case errors.Is(err, banklink.ErrEncoding):
			http.Error(w, "Invalid shareable ID", http.StatusBadRequest)
		case errors.Is(err, banklink.ErrLinkNotFound):
			http.Error(w, "Bank link not found", http.StatusNotFound)
		case errors.Is(err, banklink.ErrIntegrity):
			log.Printf("Integrity violation resolving shareable id %s: %v", shareableID, err)
			http.Error(w, "Conflicting bank links for this account", http.StatusConflict)
		default:
			log.Printf("Error resolving shareable id %s: %v", shareableID, err)
			http.Error(w, "Failed to resolve bank link", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(link)
}
