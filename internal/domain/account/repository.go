package account

import "context"

// Repository defines the interface for account snapshot data access
type Repository interface {
	// Upsert creates the snapshot on first sight and refreshes balances
	// and metadata on every sync after that.
	Upsert(ctx context.Context, params UpsertParams) (*Account, error)

	// GetByID retrieves an account snapshot by its external account id.
	GetByID(ctx context.Context, id string) (*Account, error)

	// ListByUserID retrieves all account snapshots for a user.
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// Exists reports whether a snapshot is already stored for the id.
	Exists(ctx context.Context, id string) (bool, error)
}
