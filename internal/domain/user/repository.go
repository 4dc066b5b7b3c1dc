package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, userID int64, params UpdateUserParams) (*User, error)
	// SetPaymentCustomer records the payment-network customer provisioned
	// for the user. The ID is write-once: implementations must refuse to
	// overwrite an existing value.
	SetPaymentCustomer(ctx context.Context, userID int64, customerID, customerURL string) error
	// ListWithoutPaymentCustomer returns users that never got a
	// payment-network customer (used by the admin provisioning command).
	ListWithoutPaymentCustomer(ctx context.Context) ([]*User, error)
}
