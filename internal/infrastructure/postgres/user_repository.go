package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ledgerlink/internal/domain/user"
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, first_name, last_name, password_hash,
       payment_customer_id, payment_customer_url, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*user.User, error) {
	var u user.User
	var passwordHash, customerID, customerURL sql.NullString

	err := scanner.Scan(
		&u.ID, &u.Email, &u.Name, &u.FirstName, &u.LastName, &passwordHash,
		&customerID, &customerURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if customerID.Valid {
		u.PaymentCustomerID = &customerID.String
	}
	if customerURL.Valid {
		u.PaymentCustomerURL = &customerURL.String
	}

	return &u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (email, name, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(
		ctx, query,
		params.Email, params.Name, params.FirstName, params.LastName, params.PasswordHash,
	))
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return nil, user.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// List retrieves all users
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update updates a user's profile fields
func (r *UserRepository) Update(ctx context.Context, userID int64, params user.UpdateUserParams) (*user.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    first_name = COALESCE($3, first_name),
		    last_name = COALESCE($4, last_name),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(
		ctx, query,
		userID, params.Name, params.FirstName, params.LastName,
	))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// SetPaymentCustomer records the payment-network customer for a user.
// The WHERE clause makes the write idempotent-safe: a user that already
// has a customer id is never overwritten.
func (r *UserRepository) SetPaymentCustomer(ctx context.Context, userID int64, customerID, customerURL string) error {
	query := `
		UPDATE users
		SET payment_customer_id = $2,
		    payment_customer_url = $3,
		    updated_at = now()
		WHERE id = $1 AND payment_customer_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID, customerID, customerURL)
	if err != nil {
		return fmt.Errorf("failed to set payment customer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check payment customer update: %w", err)
	}
	if affected == 0 {
		// Either the user does not exist or a customer is already set.
		if _, err := r.GetByID(ctx, userID); err != nil {
			return err
		}
		return user.ErrCustomerExists
	}

	return nil
}

// ListWithoutPaymentCustomer returns users missing a payment-network customer
func (r *UserRepository) ListWithoutPaymentCustomer(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE payment_customer_id IS NULL ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users without payment customer: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
