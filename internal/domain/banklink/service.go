// Package banklink coordinates the account-linking workflow: exchanging
// a public token, selecting an account, scoping a processor token,
// provisioning a funding source, and persisting the resulting link.
package banklink

import (
	"context"
	"fmt"
	"log"

	"ledgerlink/internal/domain/user"
	"ledgerlink/internal/infrastructure/aggregator"
	"ledgerlink/internal/infrastructure/payments"
)

// processorName identifies the payment network as the consumer of
// processor tokens requested from the aggregator.
const processorName = "dwolla"

// linkStage names each step of the linking workflow. Failures are logged
// with the stage they occurred in, which makes the missing-compensation
// window between funding-source creation and persistence visible.
type linkStage string

const (
	stageExchange       linkStage = "exchange"
	stageSelectAccount  linkStage = "select_account"
	stageProcessorToken linkStage = "processor_token"
	stageFundingSource  linkStage = "funding_source"
	stageEncode         linkStage = "encode"
	stagePersist        linkStage = "persist"
	stageInvalidate     linkStage = "invalidate_cache"
)

// AccountCacheInvalidator drops any cached rendering of the user's
// account-list view so subsequent reads reflect a new link.
type AccountCacheInvalidator interface {
	InvalidateAccounts(ctx context.Context, userID int64) error
}

// Service contains the business logic for bank link operations.
type Service struct {
	repo       Repository
	aggregator aggregator.ClientInterface
	payments   payments.ClientInterface
	cache      AccountCacheInvalidator
}

// NewService creates a new bank link service. cache may be nil when no
// view caching is configured.
func NewService(repo Repository, agg aggregator.ClientInterface, pay payments.ClientInterface, cache AccountCacheInvalidator) *Service {
	return &Service{repo: repo, aggregator: agg, payments: pay, cache: cache}
}

// linkState accumulates the intermediate values of one linking attempt.
type linkState struct {
	publicToken string
	user        *user.User

	accessToken      string
	itemID           string
	account          aggregator.Account
	processorToken   string
	fundingSourceURL string
	shareableID      string
	link             *BankLink
}

// LinkAccount executes the linking workflow strictly in sequence. Every
// stage is a hard dependency on the previous one; the first failure
// aborts the rest and no compensation is attempted. The operation is
// durable only once the bank link row commits. Public tokens are
// single-use, so the call is deliberately not idempotent: a consumed
// token fails at the exchange stage with zero side effects.
func (s *Service) LinkAccount(ctx context.Context, publicToken string, u *user.User) (*BankLink, error) {
	if publicToken == "" {
		return nil, fmt.Errorf("%w: empty public token", ErrExchange)
	}
	if u == nil || !u.HasPaymentCustomer() {
		return nil, ErrNoCustomer
	}

	st := &linkState{publicToken: publicToken, user: u}

	steps := []struct {
		stage linkStage
		run   func(context.Context, *linkState) error
	}{
		{stageExchange, s.exchange},
		{stageSelectAccount, s.selectAccount},
		{stageProcessorToken, s.requestProcessorToken},
		{stageFundingSource, s.provisionFundingSource},
		{stageEncode, s.encodeShareableID},
		{stagePersist, s.persist},
		{stageInvalidate, s.invalidateCache},
	}

	for _, step := range steps {
		if err := step.run(ctx, st); err != nil {
			log.Printf("User %d: account linking aborted at stage %s: %v", u.ID, step.stage, err)
			return nil, err
		}
	}

	log.Printf("User %d: linked account %s (bank %s)", u.ID, st.account.AccountID, st.itemID)
	return st.link, nil
}

func (s *Service) exchange(ctx context.Context, st *linkState) error {
	result, err := s.aggregator.ExchangePublicToken(ctx, st.publicToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExchange, err)
	}
	st.accessToken = result.AccessToken
	st.itemID = result.ItemID
	return nil
}

func (s *Service) selectAccount(ctx context.Context, st *linkState) error {
	accounts, err := s.aggregator.GetAccounts(ctx, st.accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoAccount, err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: empty account list", ErrNoAccount)
	}
	if accounts[0].AccountID == "" {
		return fmt.Errorf("%w: first account entry has no id", ErrNoAccount)
	}
	st.account = accounts[0]
	return nil
}

func (s *Service) requestProcessorToken(ctx context.Context, st *linkState) error {
	token, err := s.aggregator.CreateProcessorToken(ctx, st.accessToken, st.account.AccountID, processorName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcessorToken, err)
	}
	st.processorToken = token
	return nil
}

// provisionFundingSource obtains a fresh on-demand authorization and
// creates the funding source with it. The authorization is single-use
// and short-lived: if funding-source creation fails it is simply
// discarded, leaving nothing in an ambiguous state.
func (s *Service) provisionFundingSource(ctx context.Context, st *linkState) error {
	authLink, err := s.payments.CreateOnDemandAuthorization(ctx)
	if err != nil {
		return fmt.Errorf("%w: authorization: %v", ErrFundingSource, err)
	}

	fundingSourceURL, err := s.payments.CreateFundingSource(ctx, *st.user.PaymentCustomerURL, payments.FundingSourceParams{
		Name:              bankName(st.account),
		ProcessorToken:    st.processorToken,
		AuthorizationLink: authLink,
	})
	if err != nil {
		return fmt.Errorf("%w: creation: %v", ErrFundingSource, err)
	}
	st.fundingSourceURL = fundingSourceURL
	return nil
}

func (s *Service) encodeShareableID(ctx context.Context, st *linkState) error {
	shareableID, err := EncodeShareableID(st.account.AccountID)
	if err != nil {
		return err
	}
	st.shareableID = shareableID
	return nil
}

// persist writes the bank link row. A funding source created above is
// not retracted if this write fails; that inconsistency window is
// accepted and only ever shows up in the stage log.
func (s *Service) persist(ctx context.Context, st *linkState) error {
	params := CreateParams{
		UserID:           st.user.ID,
		BankID:           st.itemID,
		AccountID:        st.account.AccountID,
		Name:             bankName(st.account),
		AccessToken:      st.accessToken,
		FundingSourceURL: st.fundingSourceURL,
		ShareableID:      st.shareableID,
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	link, err := s.repo.Create(ctx, params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	st.link = link
	return nil
}

// invalidateCache is best-effort: a stale account-list view never fails
// a link that has already committed.
func (s *Service) invalidateCache(ctx context.Context, st *linkState) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateAccounts(ctx, st.user.ID); err != nil {
		log.Printf("User %d: failed to invalidate account cache: %v", st.user.ID, err)
	}
	return nil
}

// bankName picks a human-readable name for the linked account.
func bankName(acc aggregator.Account) string {
	if acc.OfficialName != "" {
		return acc.OfficialName
	}
	if acc.Name != "" {
		return acc.Name
	}
	return "Checking"
}

// ListBankLinks retrieves all bank links for a user.
func (s *Service) ListBankLinks(ctx context.Context, userID int64) ([]*BankLink, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("valid user ID is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// GetBankLink retrieves one bank link by record id and verifies ownership.
func (s *Service) GetBankLink(ctx context.Context, id, userID int64) (*BankLink, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.UserID != userID {
		return nil, ErrForbidden
	}
	return link, nil
}

// GetBankLinkByAccountID returns the unique bank link for an external
// account id. Zero matches is a not-found; two or more indicate a
// data-integrity violation and are surfaced, never silently resolved.
func (s *Service) GetBankLinkByAccountID(ctx context.Context, accountID string) (*BankLink, error) {
	if accountID == "" {
		return nil, ErrLinkNotFound
	}

	links, err := s.repo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	switch len(links) {
	case 0:
		return nil, ErrLinkNotFound
	case 1:
		return links[0], nil
	default:
		return nil, fmt.Errorf("%w: account %s has %d links", ErrIntegrity, accountID, len(links))
	}
}

// GetBankLinkByShareableID decodes a shareable id and resolves the
// unique bank link for the underlying account id.
func (s *Service) GetBankLinkByShareableID(ctx context.Context, shareableID string) (*BankLink, error) {
	accountID, err := DecodeShareableID(shareableID)
	if err != nil {
		return nil, err
	}
	return s.GetBankLinkByAccountID(ctx, accountID)
}
