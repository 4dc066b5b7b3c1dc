package notification

import (
	"context"
	"errors"
	"log"
)

// Service contains the business logic for notification operations
type Service struct {
	repo      Repository
	messenger Messenger
}

// NewService creates a new notification service. messenger may be nil
// when FCM is not configured; pushes then become no-ops.
func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{repo: repo, messenger: messenger}
}

// RegisterDevice registers a device token for the authenticated user.
// If the token already belongs to another user, it is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.UpsertDeviceToken(ctx, params)
}

// SendBankLinked notifies a user that a bank account finished linking.
func (s *Service) SendBankLinked(ctx context.Context, userID int64, bankName string) {
	s.sendToUser(ctx, userID, "Bank account linked", "Your "+bankName+" account is ready for transfers.", CategoryAccounts)
}

// SendTransferInitiated notifies a user that a transfer was accepted by
// the payment network.
func (s *Service) SendTransferInitiated(ctx context.Context, userID int64, amount string) {
	s.sendToUser(ctx, userID, "Transfer initiated", "Your transfer of $"+amount+" is on its way.", CategoryTransfers)
}

// sendToUser delivers a push to every active device a user has
// registered. Delivery is best-effort: failures are logged and never
// propagate to the operation that triggered the notification.
func (s *Service) sendToUser(ctx context.Context, userID int64, title, body, category string) {
	if s.messenger == nil {
		return
	}

	tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
	if err != nil {
		log.Printf("User %d: failed to load device tokens: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{"route": category}
	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	if err := s.messenger.SendMulticast(ctx, tokenStrings, title, body, data); err != nil {
		log.Printf("User %d: failed to send notification: %v", userID, err)
	}
}

// SendToToken sends a push notification to a specific device token.
func (s *Service) SendToToken(ctx context.Context, token, title, body, category string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if !IsValidCategory(category) {
		return ErrInvalidCategory
	}
	if s.messenger == nil {
		return errors.New("messenger is not configured")
	}

	return s.messenger.Send(ctx, token, title, body, map[string]string{"route": category})
}
