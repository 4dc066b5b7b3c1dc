// Package aggregation provides domain services for refreshing locally
// stored account data from the aggregation API.
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ledgerlink/internal/domain/account"
	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/infrastructure/aggregator"
)

// ErrNoBankLinks is returned when a sync is requested for a user who
// has not linked any bank account yet.
var ErrNoBankLinks = errors.New("user has no linked bank accounts")

// SyncResult contains the results of a sync operation
type SyncResult struct {
	UserID         int64    `json:"userId"`
	BankLinksFound int      `json:"bankLinksFound"`
	AccountsFound  int      `json:"accountsFound"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Errors         []string `json:"errors"`
}

// AccountCacheInvalidator drops the cached account-list view for a user.
type AccountCacheInvalidator interface {
	InvalidateAccounts(ctx context.Context, userID int64) error
}

// AccountSyncService refreshes account snapshots for every bank link a
// user holds, using the access token stored with each link.
type AccountSyncService struct {
	client         aggregator.ClientInterface
	linkService    *banklink.Service
	accountService *account.Service
	cache          AccountCacheInvalidator
}

// NewAccountSyncService creates a new account sync service. cache may
// be nil when no view caching is configured.
func NewAccountSyncService(
	client aggregator.ClientInterface,
	linkService *banklink.Service,
	accountService *account.Service,
	cache AccountCacheInvalidator,
) *AccountSyncService {
	return &AccountSyncService{
		client:         client,
		linkService:    linkService,
		accountService: accountService,
		cache:          cache,
	}
}

// SyncUserAccounts refreshes the account snapshots behind every bank
// link the user holds. Each link syncs independently: a failure on one
// is recorded in the result and the rest still run.
func (s *AccountSyncService) SyncUserAccounts(ctx context.Context, userID int64) (*SyncResult, error) {
	links, err := s.linkService.ListBankLinks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank links: %w", err)
	}
	if len(links) == 0 {
		return nil, ErrNoBankLinks
	}

	result := &SyncResult{
		UserID:         userID,
		BankLinksFound: len(links),
		Errors:         []string{},
	}

	log.Printf("User %d: Syncing accounts across %d bank links", userID, len(links))

	for _, link := range links {
		if err := s.syncBankLink(ctx, link, result); err != nil {
			errMsg := fmt.Sprintf("failed to sync bank link %d: %v", link.ID, err)
			result.Errors = append(result.Errors, errMsg)
			log.Printf("User %d: %s", userID, errMsg)
		}
	}

	if result.Created > 0 || result.Updated > 0 {
		s.invalidateCache(ctx, userID)
	}

	log.Printf("User %d: Sync complete - Accounts: %d, Created: %d, Updated: %d, Errors: %d",
		userID, result.AccountsFound, result.Created, result.Updated, len(result.Errors))

	return result, nil
}

// syncBankLink fetches the live account list for one bank link and
// upserts a snapshot per account.
func (s *AccountSyncService) syncBankLink(ctx context.Context, link *banklink.BankLink, result *SyncResult) error {
	accounts, err := s.client.GetAccounts(ctx, link.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts from aggregator: %w", err)
	}

	result.AccountsFound += len(accounts)

	for _, apiAccount := range accounts {
		if err := s.syncAccount(ctx, link, apiAccount, result); err != nil {
			errMsg := fmt.Sprintf("failed to sync account %s: %v", apiAccount.AccountID, err)
			result.Errors = append(result.Errors, errMsg)
			log.Printf("User %d: %s", link.UserID, errMsg)
		}
	}

	return nil
}

// syncAccount upserts the snapshot for a single account entry.
func (s *AccountSyncService) syncAccount(ctx context.Context, link *banklink.BankLink, apiAccount aggregator.Account, result *SyncResult) error {
	if apiAccount.AccountID == "" {
		return errors.New("account entry has no id")
	}

	exists, err := s.accountService.AccountExists(ctx, apiAccount.AccountID)
	if err != nil {
		return fmt.Errorf("failed to check account existence: %w", err)
	}

	params := account.UpsertParams{
		ID:               apiAccount.AccountID,
		UserID:           link.UserID,
		BankLinkID:       link.ID,
		Name:             apiAccount.Name,
		OfficialName:     apiAccount.OfficialName,
		Mask:             apiAccount.Mask,
		AccountType:      apiAccount.Type,
		Subtype:          apiAccount.Subtype,
		AvailableBalance: apiAccount.Balances.Available,
		CurrentBalance:   apiAccount.Balances.Current,
	}
	if apiAccount.Balances.CurrencyCode != nil {
		params.Currency = *apiAccount.Balances.CurrencyCode
	}

	if _, err := s.accountService.UpsertAccount(ctx, params); err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	if exists {
		result.Updated++
		log.Printf("User %d: Updated account %s (%s)", link.UserID, apiAccount.Name, apiAccount.AccountID)
	} else {
		result.Created++
		log.Printf("User %d: Created account %s (%s)", link.UserID, apiAccount.Name, apiAccount.AccountID)
	}

	return nil
}

// invalidateCache is best-effort: a stale view never fails a sync.
func (s *AccountSyncService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAccounts(ctx, userID); err != nil {
		log.Printf("User %d: failed to invalidate account cache: %v", userID, err)
	}
}
