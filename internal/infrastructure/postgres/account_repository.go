package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgerlink/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, bank_link_id, name, official_name, mask,
       account_type, subtype, currency, available_balance, current_balance,
       created_at, updated_at, last_synced_at`

func scanAccount(scanner interface{ Scan(...any) error }) (*account.Account, error) {
	var acc account.Account
	var available, current sql.NullFloat64
	var lastSynced sql.NullTime

	err := scanner.Scan(
		&acc.ID, &acc.UserID, &acc.BankLinkID, &acc.Name, &acc.OfficialName, &acc.Mask,
		&acc.AccountType, &acc.Subtype, &acc.Currency, &available, &current,
		&acc.CreatedAt, &acc.UpdatedAt, &lastSynced,
	)
	if err != nil {
		return nil, err
	}

	if available.Valid {
		acc.AvailableBalance = &available.Float64
	}
	if current.Valid {
		acc.CurrentBalance = &current.Float64
	}
	if lastSynced.Valid {
		acc.LastSyncedAt = &lastSynced.Time
	}

	return &acc, nil
}

// Upsert creates the snapshot on first sight and refreshes it afterwards
func (r *AccountRepository) Upsert(ctx context.Context, params account.UpsertParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, bank_link_id, name, official_name, mask,
		                      account_type, subtype, currency, available_balance, current_balance, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			official_name = EXCLUDED.official_name,
			mask = EXCLUDED.mask,
			account_type = EXCLUDED.account_type,
			subtype = EXCLUDED.subtype,
			currency = EXCLUDED.currency,
			available_balance = EXCLUDED.available_balance,
			current_balance = EXCLUDED.current_balance,
			last_synced_at = now(),
			updated_at = now()
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.BankLinkID, params.Name, params.OfficialName, params.Mask,
		params.AccountType, params.Subtype, params.Currency, params.AvailableBalance, params.CurrentBalance,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	return acc, nil
}

// GetByID retrieves an account snapshot by its external account id
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// ListByUserID retrieves all account snapshots for a user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

// Exists reports whether a snapshot is already stored for the id
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}
