package transfer

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrInvalidAmount    = errors.New("transfer amount must be a positive value with at most two decimal places")
	ErrSenderLinkNeeded = errors.New("sender has multiple bank links, one must be chosen")
	ErrNoFundingSource  = errors.New("bank link has no funding source")
	ErrTransferRejected = errors.New("payment network rejected the transfer")
)

// transferCurrency is fixed: the payment network moves domestic ACH
// funds only.
const transferCurrency = "USD"

// CreateParams contains parameters for initiating a transfer.
type CreateParams struct {
	// ReceiverShareableID identifies the destination account in its
	// client-facing encoded form.
	ReceiverShareableID string

	// SenderBankLinkID selects which of the sender's bank links funds
	// the transfer. Optional when the sender holds exactly one link.
	SenderBankLinkID int64

	Amount decimal.Decimal
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ReceiverShareableID == "" {
		return errors.New("receiver shareable ID is required")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

// Result describes an accepted transfer. The payment network is the
// system of record; only its resource URL comes back.
type Result struct {
	TransferURL string          `json:"transferUrl"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}
