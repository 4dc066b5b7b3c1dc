package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/infrastructure/payments"
)

// MockLinkRepo implements banklink.Repository (minimal implementation for transfers)
type MockLinkRepo struct {
	GetByIDFunc         func(ctx context.Context, id int64) (*banklink.BankLink, error)
	ListByUserIDFunc    func(ctx context.Context, userID int64) ([]*banklink.BankLink, error)
	ListByAccountIDFunc func(ctx context.Context, accountID string) ([]*banklink.BankLink, error)
}

func (m *MockLinkRepo) Create(ctx context.Context, params banklink.CreateParams) (*banklink.BankLink, error) {
	return nil, nil
}

func (m *MockLinkRepo) GetByID(ctx context.Context, id int64) (*banklink.BankLink, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockLinkRepo) ListByUserID(ctx context.Context, userID int64) ([]*banklink.BankLink, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLinkRepo) ListByAccountID(ctx context.Context, accountID string) ([]*banklink.BankLink, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *MockLinkRepo) ListDuplicateAccountIDs(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

// MockPayments implements payments.ClientInterface
type MockPayments struct {
	CreateTransferFunc func(ctx context.Context, params payments.TransferParams) (string, error)
}

func (m *MockPayments) CreateCustomer(ctx context.Context, params payments.CustomerParams) (string, error) {
	return "", errors.New("not configured")
}

func (m *MockPayments) CreateOnDemandAuthorization(ctx context.Context) (string, error) {
	return "", errors.New("not configured")
}

func (m *MockPayments) CreateFundingSource(ctx context.Context, customerURL string, params payments.FundingSourceParams) (string, error) {
	return "", errors.New("not configured")
}

func (m *MockPayments) CreateTransfer(ctx context.Context, params payments.TransferParams) (string, error) {
	if m.CreateTransferFunc != nil {
		return m.CreateTransferFunc(ctx, params)
	}
	return "", errors.New("not configured")
}

func senderLink() *banklink.BankLink {
	return &banklink.BankLink{
		ID:               1,
		UserID:           42,
		AccountID:        "a1",
		FundingSourceURL: "https://api-sandbox.dwolla.com/funding-sources/fs-sender",
	}
}

func receiverLink() *banklink.BankLink {
	return &banklink.BankLink{
		ID:               2,
		UserID:           7,
		AccountID:        "b1",
		FundingSourceURL: "https://api-sandbox.dwolla.com/funding-sources/fs-receiver",
	}
}

func transferRepo() *MockLinkRepo {
	return &MockLinkRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*banklink.BankLink, error) {
			return []*banklink.BankLink{senderLink()}, nil
		},
		GetByIDFunc: func(ctx context.Context, id int64) (*banklink.BankLink, error) {
			return senderLink(), nil
		},
		ListByAccountIDFunc: func(ctx context.Context, accountID string) ([]*banklink.BankLink, error) {
			if accountID == "b1" {
				return []*banklink.BankLink{receiverLink()}, nil
			}
			return nil, nil
		},
	}
}

func receiverShareableID(t *testing.T) string {
	t.Helper()
	shareable, err := banklink.EncodeShareableID("b1")
	if err != nil {
		t.Fatalf("EncodeShareableID() failed: %v", err)
	}
	return shareable
}

func TestCreateTransfer_Success(t *testing.T) {
	ctx := context.Background()

	var submitted payments.TransferParams
	pay := &MockPayments{
		CreateTransferFunc: func(ctx context.Context, params payments.TransferParams) (string, error) {
			submitted = params
			return "https://api-sandbox.dwolla.com/transfers/t1", nil
		},
	}
	svc := NewService(banklink.NewService(transferRepo(), nil, nil, nil), pay)

	result, err := svc.CreateTransfer(ctx, 42, CreateParams{
		ReceiverShareableID: receiverShareableID(t),
		Amount:              decimal.RequireFromString("25.5"),
	})
	if err != nil {
		t.Fatalf("CreateTransfer() failed: %v", err)
	}

	if result.TransferURL != "https://api-sandbox.dwolla.com/transfers/t1" {
		t.Errorf("TransferURL = %q", result.TransferURL)
	}
	if submitted.SourceURL != senderLink().FundingSourceURL {
		t.Errorf("SourceURL = %q, want sender funding source", submitted.SourceURL)
	}
	if submitted.DestinationURL != receiverLink().FundingSourceURL {
		t.Errorf("DestinationURL = %q, want receiver funding source", submitted.DestinationURL)
	}
	if submitted.Amount != "25.50" {
		t.Errorf("submitted amount = %q, want %q", submitted.Amount, "25.50")
	}
	if submitted.Currency != "USD" {
		t.Errorf("submitted currency = %q, want %q", submitted.Currency, "USD")
	}
}

func TestCreateTransfer_InvalidAmounts(t *testing.T) {
	ctx := context.Background()

	submissions := 0
	pay := &MockPayments{
		CreateTransferFunc: func(ctx context.Context, params payments.TransferParams) (string, error) {
			submissions++
			return "https://api-sandbox.dwolla.com/transfers/t1", nil
		},
	}
	svc := NewService(banklink.NewService(transferRepo(), nil, nil, nil), pay)

	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-10.00"},
		{"sub-cent precision", "1.005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransfer(ctx, 42, CreateParams{
				ReceiverShareableID: receiverShareableID(t),
				Amount:              decimal.RequireFromString(tt.amount),
			})
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("CreateTransfer(%s) error = %v, want ErrInvalidAmount", tt.amount, err)
			}
		})
	}
	if submissions != 0 {
		t.Errorf("transfers submitted = %d, want 0", submissions)
	}
}

func TestCreateTransfer_UnknownReceiver(t *testing.T) {
	ctx := context.Background()
	svc := NewService(banklink.NewService(transferRepo(), nil, nil, nil), &MockPayments{})

	shareable, err := banklink.EncodeShareableID("missing")
	if err != nil {
		t.Fatalf("EncodeShareableID() failed: %v", err)
	}

	_, err = svc.CreateTransfer(ctx, 42, CreateParams{
		ReceiverShareableID: shareable,
		Amount:              decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, banklink.ErrLinkNotFound) {
		t.Errorf("CreateTransfer() error = %v, want ErrLinkNotFound", err)
	}
}

func TestCreateTransfer_DuplicateReceiverAborts(t *testing.T) {
	ctx := context.Background()

	repo := transferRepo()
	repo.ListByAccountIDFunc = func(ctx context.Context, accountID string) ([]*banklink.BankLink, error) {
		return []*banklink.BankLink{receiverLink(), receiverLink()}, nil
	}

	submissions := 0
	pay := &MockPayments{
		CreateTransferFunc: func(ctx context.Context, params payments.TransferParams) (string, error) {
			submissions++
			return "", nil
		},
	}
	svc := NewService(banklink.NewService(repo, nil, nil, nil), pay)

	_, err := svc.CreateTransfer(ctx, 42, CreateParams{
		ReceiverShareableID: receiverShareableID(t),
		Amount:              decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, banklink.ErrIntegrity) {
		t.Errorf("CreateTransfer() error = %v, want ErrIntegrity", err)
	}
	if submissions != 0 {
		t.Errorf("transfers submitted = %d, want 0", submissions)
	}
}

func TestCreateTransfer_SenderSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("multiple links require an explicit choice", func(t *testing.T) {
		repo := transferRepo()
		repo.ListByUserIDFunc = func(ctx context.Context, userID int64) ([]*banklink.BankLink, error) {
			second := senderLink()
			second.ID = 3
			return []*banklink.BankLink{senderLink(), second}, nil
		}
		svc := NewService(banklink.NewService(repo, nil, nil, nil), &MockPayments{})

		_, err := svc.CreateTransfer(ctx, 42, CreateParams{
			ReceiverShareableID: receiverShareableID(t),
			Amount:              decimal.RequireFromString("10.00"),
		})
		if !errors.Is(err, ErrSenderLinkNeeded) {
			t.Errorf("CreateTransfer() error = %v, want ErrSenderLinkNeeded", err)
		}
	})

	t.Run("explicit link is ownership-checked", func(t *testing.T) {
		svc := NewService(banklink.NewService(transferRepo(), nil, nil, nil), &MockPayments{})

		_, err := svc.CreateTransfer(ctx, 7, CreateParams{
			ReceiverShareableID: receiverShareableID(t),
			SenderBankLinkID:    1,
			Amount:              decimal.RequireFromString("10.00"),
		})
		if !errors.Is(err, banklink.ErrForbidden) {
			t.Errorf("CreateTransfer() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("no links", func(t *testing.T) {
		repo := transferRepo()
		repo.ListByUserIDFunc = func(ctx context.Context, userID int64) ([]*banklink.BankLink, error) {
			return nil, nil
		}
		svc := NewService(banklink.NewService(repo, nil, nil, nil), &MockPayments{})

		_, err := svc.CreateTransfer(ctx, 42, CreateParams{
			ReceiverShareableID: receiverShareableID(t),
			Amount:              decimal.RequireFromString("10.00"),
		})
		if !errors.Is(err, banklink.ErrLinkNotFound) {
			t.Errorf("CreateTransfer() error = %v, want ErrLinkNotFound", err)
		}
	})
}

func TestCreateTransfer_NetworkRejection(t *testing.T) {
	ctx := context.Background()

	pay := &MockPayments{
		CreateTransferFunc: func(ctx context.Context, params payments.TransferParams) (string, error) {
			return "", errors.New("InsufficientFunds")
		},
	}
	svc := NewService(banklink.NewService(transferRepo(), nil, nil, nil), pay)

	_, err := svc.CreateTransfer(ctx, 42, CreateParams{
		ReceiverShareableID: receiverShareableID(t),
		Amount:              decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, ErrTransferRejected) {
		t.Errorf("CreateTransfer() error = %v, want ErrTransferRejected", err)
	}
}
