package aggregation

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/infrastructure/aggregator"
)

func ownedLinkRepo() *MockLinkRepo {
	return &MockLinkRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*banklink.BankLink, error) {
			return &banklink.BankLink{ID: id, UserID: 42, AccessToken: "acc_1"}, nil
		},
	}
}

func TestListTransactions_UsesStoredAccessToken(t *testing.T) {
	ctx := context.Background()

	var requestedToken, requestedStart, requestedEnd string
	client := &MockClient{
		GetTransactionsFunc: func(ctx context.Context, accessToken, startDate, endDate string) ([]aggregator.Transaction, error) {
			requestedToken = accessToken
			requestedStart = startDate
			requestedEnd = endDate
			return []aggregator.Transaction{{TransactionID: "t1", AccountID: "a1", Amount: 12.34}}, nil
		},
	}
	svc := NewTransactionService(client, banklink.NewService(ownedLinkRepo(), nil, nil, nil))

	transactions, err := svc.ListTransactions(ctx, 42, 1, "2026-07-01", "2026-07-31")
	if err != nil {
		t.Fatalf("ListTransactions() failed: %v", err)
	}
	if len(transactions) != 1 || transactions[0].TransactionID != "t1" {
		t.Errorf("ListTransactions() = %v, want single transaction t1", transactions)
	}
	if requestedToken != "acc_1" {
		t.Errorf("fetch used access token %q, want %q", requestedToken, "acc_1")
	}
	if requestedStart != "2026-07-01" || requestedEnd != "2026-07-31" {
		t.Errorf("fetch window = %s..%s, want 2026-07-01..2026-07-31", requestedStart, requestedEnd)
	}
}

func TestListTransactions_DefaultsToTrailingWindow(t *testing.T) {
	ctx := context.Background()

	var requestedStart, requestedEnd string
	client := &MockClient{
		GetTransactionsFunc: func(ctx context.Context, accessToken, startDate, endDate string) ([]aggregator.Transaction, error) {
			requestedStart = startDate
			requestedEnd = endDate
			return nil, nil
		},
	}
	svc := NewTransactionService(client, banklink.NewService(ownedLinkRepo(), nil, nil, nil))

	if _, err := svc.ListTransactions(ctx, 42, 1, "", ""); err != nil {
		t.Fatalf("ListTransactions() failed: %v", err)
	}

	start, err := time.Parse(dateLayout, requestedStart)
	if err != nil {
		t.Fatalf("default start date %q is not parseable: %v", requestedStart, err)
	}
	end, err := time.Parse(dateLayout, requestedEnd)
	if err != nil {
		t.Fatalf("default end date %q is not parseable: %v", requestedEnd, err)
	}
	if days := int(end.Sub(start).Hours() / 24); days != defaultWindowDays {
		t.Errorf("default window is %d days, want %d", days, defaultWindowDays)
	}
}

func TestListTransactions_EnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(&MockClient{}, banklink.NewService(ownedLinkRepo(), nil, nil, nil))

	_, err := svc.ListTransactions(ctx, 7, 1, "", "")
	if !errors.Is(err, banklink.ErrForbidden) {
		t.Errorf("ListTransactions() for non-owner error = %v, want ErrForbidden", err)
	}
}

func TestListTransactions_InvalidWindows(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(&MockClient{}, banklink.NewService(ownedLinkRepo(), nil, nil, nil))

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"malformed start", "July 1", "2026-07-31"},
		{"malformed end", "2026-07-01", "31/07/2026"},
		{"inverted range", "2026-07-31", "2026-07-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListTransactions(ctx, 42, 1, tt.start, tt.end)
			if !errors.Is(err, ErrInvalidDateRange) {
				t.Errorf("ListTransactions() error = %v, want ErrInvalidDateRange", err)
			}
		})
	}
}
