package banklink

import (
	"errors"
	"time"
)

// Domain errors. Each linking stage maps its failure onto exactly one of
// these so callers can tell where the workflow stopped.
var (
	ErrExchange       = errors.New("public token exchange failed")
	ErrNoAccount      = errors.New("no account available for access token")
	ErrProcessorToken = errors.New("processor token creation failed")
	ErrFundingSource  = errors.New("funding source provisioning failed")
	ErrEncoding       = errors.New("account id encoding failed")
	ErrPersistence    = errors.New("bank link persistence failed")
	ErrIntegrity      = errors.New("multiple bank links for one account id")
	ErrLinkNotFound   = errors.New("bank link not found")
	ErrForbidden      = errors.New("access forbidden")
	ErrNoCustomer     = errors.New("user has no payment-network customer")
)

// BankLink represents one linked external bank account. The access token
// is a write-once secret: it is stored encrypted and never serialized to
// the client tier.
type BankLink struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	BankID           string    `json:"bankId"` // aggregator item id
	AccountID        string    `json:"accountId"`
	Name             string    `json:"name"`
	AccessToken      string    `json:"-"`
	FundingSourceURL string    `json:"-"`
	ShareableID      string    `json:"shareableId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreateParams contains everything the linking workflow assembled before
// the durability point.
type CreateParams struct {
	UserID           int64
	BankID           string
	AccountID        string
	Name             string
	AccessToken      string
	FundingSourceURL string
	ShareableID      string
}

// Validate checks the parameters ahead of the persistence write.
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.BankID == "" {
		return errors.New("bank ID is required")
	}
	if p.AccountID == "" {
		return errors.New("account ID is required")
	}
	if p.AccessToken == "" {
		return errors.New("access token is required")
	}
	if p.FundingSourceURL == "" {
		return errors.New("funding source URL is required")
	}
	if p.ShareableID == "" {
		return errors.New("shareable ID is required")
	}
	return nil
}
