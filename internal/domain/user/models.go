package user

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email is already registered")
	ErrCustomerExists = errors.New("payment customer is already assigned")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Payment-network customer provisioned at signup. The ID is immutable
	// once assigned; the URL is the network's canonical resource reference.
	PaymentCustomerID  *string `json:"-"`
	PaymentCustomerURL *string `json:"-"`
}

// HasPaymentCustomer reports whether a payment-network customer has been
// provisioned for this user. Linking a bank account requires one.
func (u *User) HasPaymentCustomer() bool {
	return u.PaymentCustomerID != nil && *u.PaymentCustomerID != ""
}

type CreateUserParams struct {
	Email        string
	Name         string
	FirstName    string
	LastName     string
	PasswordHash *string
}

type UpdateUserParams struct {
	Name      *string
	FirstName *string
	LastName  *string
}
