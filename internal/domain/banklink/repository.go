package banklink

import "context"

// Repository defines the interface for bank link data access.
// Implemented in the infrastructure layer; access tokens are encrypted
// on the way in and decrypted on the way out.
type Repository interface {
	// Create persists a new bank link. This is the durability point of
	// the linking workflow.
	Create(ctx context.Context, params CreateParams) (*BankLink, error)

	// GetByID retrieves a bank link by its internal record id.
	GetByID(ctx context.Context, id int64) (*BankLink, error)

	// ListByUserID retrieves all bank links for a user.
	ListByUserID(ctx context.Context, userID int64) ([]*BankLink, error)

	// ListByAccountID retrieves every bank link recorded for an external
	// account id. More than one row is a data-integrity violation the
	// service layer surfaces; the repository just reports what is there.
	ListByAccountID(ctx context.Context, accountID string) ([]*BankLink, error)

	// ListDuplicateAccountIDs returns account ids that appear on more
	// than one bank link, with their row counts (admin audit).
	ListDuplicateAccountIDs(ctx context.Context) (map[string]int, error)
}
