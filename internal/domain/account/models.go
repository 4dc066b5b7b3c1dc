package account

import (
	"errors"
	"time"
)

var (
	// Allowed account types for validation (from the aggregator API)
	accountTypes = map[string]struct{}{
		"depository": {},
		"credit":     {},
		"loan":       {},
		"investment": {},
		"other":      {},
	}
	// Common ISO 4217 currency codes
	validCurrencies = map[string]struct{}{
		"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "BRL": {},
		"CHF": {}, "CAD": {}, "AUD": {}, "NZD": {}, "CNY": {},
		"INR": {}, "MXN": {}, "ZAR": {}, "SEK": {}, "NOK": {},
		"DKK": {}, "PLN": {}, "TRY": {}, "KRW": {}, "SGD": {},
		"HKD": {}, "ARS": {}, "CLP": {}, "COP": {},
	}
)

// Domain errors
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCurrency    = errors.New("valid ISO 4217 currency is required")
)

// Account is a locally stored snapshot of a linked bank account's
// metadata and balances. The ID is the external account id assigned by
// the aggregator; balances are refreshed by the sync service and may be
// nil when the institution does not report them.
type Account struct {
	ID               string     `json:"id"`
	UserID           int64      `json:"userId"`
	BankLinkID       int64      `json:"bankLinkId"`
	Name             string     `json:"name"`
	OfficialName     string     `json:"officialName,omitempty"`
	Mask             string     `json:"mask,omitempty"`
	AccountType      string     `json:"accountType"`
	Subtype          string     `json:"subtype,omitempty"`
	Currency         string     `json:"currency"`
	AvailableBalance *float64   `json:"availableBalance"`
	CurrentBalance   *float64   `json:"currentBalance"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	LastSyncedAt     *time.Time `json:"lastSyncedAt,omitempty"`
}

// UpsertParams contains parameters for creating or refreshing an
// account snapshot during a sync.
type UpsertParams struct {
	ID               string
	UserID           int64
	BankLinkID       int64
	Name             string
	OfficialName     string
	Mask             string
	AccountType      string
	Subtype          string
	Currency         string
	AvailableBalance *float64
	CurrentBalance   *float64
}

// Validate validates the upsert parameters
func (p UpsertParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required for upsert")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required for upsert")
	}
	if p.BankLinkID <= 0 {
		return errors.New("valid bank link ID is required for upsert")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if p.AccountType != "" && !IsValidAccountType(p.AccountType) {
		return ErrInvalidAccountType
	}
	if p.Currency == "" || !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}

// IsValidCurrency checks if the provided currency is a valid ISO 4217 code.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	_, ok := validCurrencies[c]
	return ok
}
