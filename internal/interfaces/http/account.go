package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ledgerlink/internal/domain/account"
	"ledgerlink/internal/domain/aggregation"
	"ledgerlink/internal/shared/middleware"
)

// AccountCache is the read-through cache for account-list responses.
// A nil cache disables caching entirely.
type AccountCache interface {
	GetAccounts(ctx context.Context, userID int64) ([]*account.Account, error)
	SetAccounts(ctx context.Context, userID int64, accounts []*account.Account) error
}

type AccountHandler struct {
	accountService *account.Service
	syncService    *aggregation.AccountSyncService
	cache          AccountCache
}

func NewAccountHandler(accountService *account.Service, syncService *aggregation.AccountSyncService, cache AccountCache) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		syncService:    syncService,
		cache:          cache,
	}
}

// HandleAccounts serves GET /api/accounts with a cache read-through:
// a cache hit skips the database, a miss or error falls back to it.
func (h *AccountHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()

	if h.cache != nil {
		if cached, err := h.cache.GetAccounts(ctx, userID); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	accounts, err := h.accountService.ListAccountsByUserID(ctx, userID)
	if err != nil {
		log.Printf("User %d: error listing accounts: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}

	if h.cache != nil {
		if err := h.cache.SetAccounts(ctx, userID, accounts); err != nil {
			log.Printf("User %d: failed to cache accounts: %v", userID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// HandleAccountByID serves GET /api/accounts/{id}
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	acc, err := h.accountService.GetAccount(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		case errors.Is(err, account.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Printf("User %d: error fetching account %s: %v", userID, id, err)
			http.Error(w, "Failed to fetch account", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acc)
}

// HandleAccountSync serves POST /api/accounts/sync: pulls fresh account
// data from the aggregator for every bank link the user has.
func (h *AccountHandler) HandleAccountSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.syncService.SyncUserAccounts(r.Context(), userID)
	if err != nil {
		if errors.Is(err, aggregation.ErrNoBankLinks) {
			http.Error(w, "No bank links to sync", http.StatusUnprocessableEntity)
			return
		}
		log.Printf("User %d: error syncing accounts: %v", userID, err)
		http.Error(w, "Failed to sync accounts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
