// Package transfer initiates ACH transfers between funding sources
// provisioned for linked bank accounts.
package transfer

import (
	"context"
	"fmt"
	"log"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/infrastructure/payments"
)

// Service contains the business logic for transfer operations
type Service struct {
	linkService *banklink.Service
	payments    payments.ClientInterface
}

// NewService creates a new transfer service
func NewService(linkService *banklink.Service, pay payments.ClientInterface) *Service {
	return &Service{linkService: linkService, payments: pay}
}

// CreateTransfer moves funds from one of the sender's funding sources
// to the funding source behind the receiver's shareable id. Amounts are
// validated as exact decimals; the submitted currency is always USD.
// Receiver lookups keep their integrity semantics: a duplicated account
// id aborts the transfer rather than picking a row arbitrarily.
func (s *Service) CreateTransfer(ctx context.Context, senderUserID int64, params CreateParams) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sender, err := s.resolveSenderLink(ctx, senderUserID, params.SenderBankLinkID)
	if err != nil {
		return nil, err
	}

	receiver, err := s.linkService.GetBankLinkByShareableID(ctx, params.ReceiverShareableID)
	if err != nil {
		return nil, err
	}

	if sender.FundingSourceURL == "" {
		return nil, fmt.Errorf("%w: sender link %d", ErrNoFundingSource, sender.ID)
	}
	if receiver.FundingSourceURL == "" {
		return nil, fmt.Errorf("%w: receiver link %d", ErrNoFundingSource, receiver.ID)
	}

	amount := params.Amount.StringFixed(2)
	transferURL, err := s.payments.CreateTransfer(ctx, payments.TransferParams{
		SourceURL:      sender.FundingSourceURL,
		DestinationURL: receiver.FundingSourceURL,
		Amount:         amount,
		Currency:       transferCurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}

	log.Printf("User %d: initiated transfer of %s %s from link %d to link %d",
		senderUserID, amount, transferCurrency, sender.ID, receiver.ID)

	return &Result{
		TransferURL: transferURL,
		Amount:      params.Amount,
		Currency:    transferCurrency,
	}, nil
}

// resolveSenderLink picks the bank link that funds the transfer. An
// explicit id is ownership-checked; otherwise the sender's only link is
// used, and holding several links without choosing one is an error.
func (s *Service) resolveSenderLink(ctx context.Context, userID, bankLinkID int64) (*banklink.BankLink, error) {
	if bankLinkID > 0 {
		return s.linkService.GetBankLink(ctx, bankLinkID, userID)
	}

	links, err := s.linkService.ListBankLinks(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch len(links) {
	case 0:
		return nil, banklink.ErrLinkNotFound
	case 1:
		return links[0], nil
	default:
		return nil, ErrSenderLinkNeeded
	}
}
