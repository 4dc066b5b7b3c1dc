package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/infrastructure/crypto"
)

// BankLinkRepository implements the banklink.Repository interface for
// PostgreSQL. Access tokens are encrypted before they touch the table
// and decrypted on the way out.
type BankLinkRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewBankLinkRepository creates a new PostgreSQL bank link repository
func NewBankLinkRepository(db *DB, encryptor *crypto.Encryptor) *BankLinkRepository {
	return &BankLinkRepository{db: db, encryptor: encryptor}
}

const bankLinkColumns = `id, user_id, bank_id, account_id, name,
       access_token, funding_source_url, shareable_id, created_at, updated_at`

func (r *BankLinkRepository) scanBankLink(scanner interface{ Scan(...any) error }) (*banklink.BankLink, error) {
	var link banklink.BankLink
	var encryptedToken string

	err := scanner.Scan(
		&link.ID, &link.UserID, &link.BankID, &link.AccountID, &link.Name,
		&encryptedToken, &link.FundingSourceURL, &link.ShareableID,
		&link.CreatedAt, &link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	token, err := r.encryptor.Decrypt(encryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	link.AccessToken = token

	return &link, nil
}

// Create persists a new bank link
func (r *BankLinkRepository) Create(ctx context.Context, params banklink.CreateParams) (*banklink.BankLink, error) {
	encryptedToken, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO bank_links (user_id, bank_id, account_id, name, access_token, funding_source_url, shareable_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + bankLinkColumns

	link, err := r.scanBankLink(r.db.QueryRowContext(
		ctx, query,
		params.UserID, params.BankID, params.AccountID, params.Name,
		encryptedToken, params.FundingSourceURL, params.ShareableID,
	))
	if err != nil {
		if strings.Contains(err.Error(), "idx_bank_links_user_account") {
			return nil, fmt.Errorf("%w: account %s is already linked", banklink.ErrIntegrity, params.AccountID)
		}
		return nil, fmt.Errorf("failed to create bank link: %w", err)
	}

	return link, nil
}

// GetByID retrieves a bank link by its internal record id
func (r *BankLinkRepository) GetByID(ctx context.Context, id int64) (*banklink.BankLink, error) {
	query := `SELECT ` + bankLinkColumns + ` FROM bank_links WHERE id = $1`

	link, err := r.scanBankLink(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, banklink.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank link: %w", err)
	}

	return link, nil
}

// ListByUserID retrieves all bank links for a user
func (r *BankLinkRepository) ListByUserID(ctx context.Context, userID int64) ([]*banklink.BankLink, error) {
	query := `SELECT ` + bankLinkColumns + ` FROM bank_links WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListByAccountID retrieves every bank link recorded for an external account id
func (r *BankLinkRepository) ListByAccountID(ctx context.Context, accountID string) ([]*banklink.BankLink, error) {
	query := `SELECT ` + bankLinkColumns + ` FROM bank_links WHERE account_id = $1 ORDER BY id`
	return r.list(ctx, query, accountID)
}

func (r *BankLinkRepository) list(ctx context.Context, query string, arg any) ([]*banklink.BankLink, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank links: %w", err)
	}
	defer rows.Close()

	var links []*banklink.BankLink
	for rows.Next() {
		link, err := r.scanBankLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank link: %w", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// ListDuplicateAccountIDs returns account ids that appear on more than
// one bank link, with their row counts
func (r *BankLinkRepository) ListDuplicateAccountIDs(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT account_id, COUNT(*)
		FROM bank_links
		GROUP BY account_id
		HAVING COUNT(*) > 1
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate account ids: %w", err)
	}
	defer rows.Close()

	duplicates := make(map[string]int)
	for rows.Next() {
		var accountID string
		var count int
		if err := rows.Scan(&accountID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate row: %w", err)
		}
		duplicates[accountID] = count
	}

	return duplicates, rows.Err()
}
