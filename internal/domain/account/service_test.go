package account

import (
	"context"
	"errors"
	"testing"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	UpsertFunc       func(ctx context.Context, params UpsertParams) (*Account, error)
	GetByIDFunc      func(ctx context.Context, id string) (*Account, error)
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*Account, error)
	ExistsFunc       func(ctx context.Context, id string) (bool, error)
}

func (m *MockRepository) Upsert(ctx context.Context, params UpsertParams) (*Account, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID int64) ([]*Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

func TestUpsertAccount_DefaultsCurrency(t *testing.T) {
	ctx := context.Background()

	var received UpsertParams
	repo := &MockRepository{
		UpsertFunc: func(ctx context.Context, params UpsertParams) (*Account, error) {
			received = params
			return &Account{ID: params.ID}, nil
		},
	}
	svc := NewService(repo)

	params := validUpsertParams()
	params.Currency = ""
	if _, err := svc.UpsertAccount(ctx, params); err != nil {
		t.Fatalf("UpsertAccount() failed: %v", err)
	}
	if received.Currency != "USD" {
		t.Errorf("upserted currency = %q, want %q", received.Currency, "USD")
	}
}

func TestUpsertAccount_RejectsInvalidParams(t *testing.T) {
	ctx := context.Background()

	upserts := 0
	repo := &MockRepository{
		UpsertFunc: func(ctx context.Context, params UpsertParams) (*Account, error) {
			upserts++
			return &Account{}, nil
		},
	}
	svc := NewService(repo)

	params := validUpsertParams()
	params.AccountType = "crypto"
	_, err := svc.UpsertAccount(ctx, params)
	if !errors.Is(err, ErrInvalidAccountType) {
		t.Errorf("UpsertAccount() error = %v, want ErrInvalidAccountType", err)
	}
	if upserts != 0 {
		t.Errorf("repository upserts = %d, want 0", upserts)
	}
}

func TestGetAccount_VerifiesOwnership(t *testing.T) {
	ctx := context.Background()

	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
			return &Account{ID: id, UserID: 42}, nil
		},
	}
	svc := NewService(repo)

	if _, err := svc.GetAccount(ctx, "a1", 42); err != nil {
		t.Errorf("GetAccount() for owner failed: %v", err)
	}

	_, err := svc.GetAccount(ctx, "a1", 7)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("GetAccount() for non-owner error = %v, want ErrForbidden", err)
	}
}

func TestListAccountsByUserID_RequiresValidUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockRepository{})

	if _, err := svc.ListAccountsByUserID(ctx, 0); err == nil {
		t.Error("ListAccountsByUserID(0) expected an error, got nil")
	}
}
