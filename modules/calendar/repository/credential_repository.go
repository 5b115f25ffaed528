package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"clinic-calendar-api/core/database"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/secret"
	"clinic-calendar-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type CredentialRepository interface {
	// GetByAccountID returns nil, nil when the account has never connected a calendar.
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.CalendarCredential, error)
	Upsert(ctx context.Context, cred *entity.CalendarCredential) error
	// UpdateAccessToken overwrites the access token and expiry only if the stored expiry
	// still equals observedExpiry. It reports whether the row was updated.
	UpdateAccessToken(ctx context.Context, accountID uuid.UUID, accessToken string, expiresAt, observedExpiry time.Time) (bool, error)
	Delete(ctx context.Context, accountID uuid.UUID) error
}

type credentialRepository struct {
	db     database.IDatabase
	cipher *secret.TokenCipher
}

func NewCredentialRepository(db database.IDatabase, cipher *secret.TokenCipher) CredentialRepository {
	return &credentialRepository{db: db, cipher: cipher}
}

func (r *credentialRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.CalendarCredential, error) {
	query := `
		SELECT account_id, provider, access_token, refresh_token, token_expires_at, calendar_email, created_at, updated_at
		FROM calendar_credentials
		WHERE account_id = $1
	`
	var cred entity.CalendarCredential
	err := r.db.GetContext(ctx, &cred, query, accountID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("CredentialRepository:GetByAccountID:Error", "error", err, "account_id", accountID)
		return nil, err
	}

	if cred.AccessToken, err = r.cipher.Open(cred.AccessToken); err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	if cred.RefreshToken, err = r.cipher.Open(cred.RefreshToken); err != nil {
		return nil, fmt.Errorf("open refresh token: %w", err)
	}
	return &cred, nil
}

// Upsert stores the credential for an account, replacing any previous one.
func (r *credentialRepository) Upsert(ctx context.Context, cred *entity.CalendarCredential) error {
	access, err := r.cipher.Seal(cred.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := r.cipher.Seal(cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	query := `
		INSERT INTO calendar_credentials (account_id, provider, access_token, refresh_token, token_expires_at, calendar_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (account_id)
		DO UPDATE SET provider = EXCLUDED.provider,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			calendar_email = EXCLUDED.calendar_email,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		cred.AccountID, cred.Provider, access, refresh, cred.TokenExpiresAt, cred.CalendarEmail,
	).Scan(&cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		logger.Error("CredentialRepository:Upsert:Error", "error", err, "account_id", cred.AccountID)
		return err
	}
	return nil
}

func (r *credentialRepository) UpdateAccessToken(ctx context.Context, accountID uuid.UUID, accessToken string, expiresAt, observedExpiry time.Time) (bool, error) {
	access, err := r.cipher.Seal(accessToken)
	if err != nil {
		return false, fmt.Errorf("seal access token: %w", err)
	}

	query := `
		UPDATE calendar_credentials
		SET access_token = $1, token_expires_at = $2, updated_at = NOW()
		WHERE account_id = $3 AND token_expires_at = $4
	`
	n, err := r.db.ExecRowsContext(ctx, query, access, expiresAt, accountID, observedExpiry)
	if err != nil {
		logger.Error("CredentialRepository:UpdateAccessToken:Error", "error", err, "account_id", accountID)
		return false, err
	}
	return n == 1, nil
}

func (r *credentialRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	query := `DELETE FROM calendar_credentials WHERE account_id = $1`
	if err := r.db.ExecContext(ctx, query, accountID); err != nil {
		logger.Error("CredentialRepository:Delete:Error", "error", err, "account_id", accountID)
		return err
	}
	return nil
}
