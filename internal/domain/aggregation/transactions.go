package aggregation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/infrastructure/aggregator"
)

// ErrInvalidDateRange is returned when a requested transaction window
// is malformed or inverted.
var ErrInvalidDateRange = errors.New("invalid date range")

const (
	dateLayout        = "2006-01-02"
	defaultWindowDays = 30
)

// TransactionService fetches transactions on demand from the
// aggregation API. Nothing is stored locally: the caller always sees
// the provider's current view.
type TransactionService struct {
	client      aggregator.ClientInterface
	linkService *banklink.Service
}

// NewTransactionService creates a new transaction service
func NewTransactionService(client aggregator.ClientInterface, linkService *banklink.Service) *TransactionService {
	return &TransactionService{client: client, linkService: linkService}
}

// ListTransactions fetches transactions for one bank link after
// verifying ownership. An empty start or end date defaults to the last
// 30 days ending today.
func (s *TransactionService) ListTransactions(ctx context.Context, userID, bankLinkID int64, startDate, endDate string) ([]aggregator.Transaction, error) {
	link, err := s.linkService.GetBankLink(ctx, bankLinkID, userID)
	if err != nil {
		return nil, err
	}

	start, end, err := resolveWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	transactions, err := s.client.GetTransactions(ctx, link.AccessToken, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return transactions, nil
}

// resolveWindow validates the requested date window, defaulting to the
// trailing 30 days when either bound is missing.
func resolveWindow(startDate, endDate string) (string, string, error) {
	if startDate == "" || endDate == "" {
		now := time.Now().UTC()
		return now.AddDate(0, 0, -defaultWindowDays).Format(dateLayout), now.Format(dateLayout), nil
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: start date %q", ErrInvalidDateRange, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: end date %q", ErrInvalidDateRange, endDate)
	}
	if end.Before(start) {
		return "", "", fmt.Errorf("%w: end date precedes start date", ErrInvalidDateRange)
	}

	return startDate, endDate, nil
}
