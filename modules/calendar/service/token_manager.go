package service

import (
	"context"
	"time"

	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/modules/calendar/provider"
	"clinic-calendar-api/modules/calendar/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultTokenLifetime applies when the token endpoint omits expires_in.
	defaultTokenLifetime = time.Hour
	// sharedRefreshTimeout bounds a refresh that outlives the caller who started it.
	sharedRefreshTimeout = 30 * time.Second
)

type TokenManager interface {
	// GetValidToken returns an access token valid for at least the refresh buffer.
	// It fails with ErrCalendarNotConnected or ErrTokenRefreshFailed.
	GetValidToken(ctx context.Context, accountID uuid.UUID) (string, *errors.AppError)
}

type tokenManager struct {
	repo      repository.CredentialRepository
	refresher provider.TokenRefresher
	buffer    time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
	inflight  singleflight.Group
}

func NewTokenManager(repo repository.CredentialRepository, refresher provider.TokenRefresher, buffer time.Duration, now func() time.Time, m *metrics.Metrics) TokenManager {
	if now == nil {
		now = time.Now
	}
	return &tokenManager{
		repo:      repo,
		refresher: refresher,
		buffer:    buffer,
		now:       now,
		metrics:   m,
	}
}

func (s *tokenManager) GetValidToken(ctx context.Context, accountID uuid.UUID) (string, *errors.AppError) {
	cred, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		logger.Error("TokenManager:GetValidToken:GetByAccountID:Error", "error", err, "account_id", accountID)
		return "", errors.NewAppError(errors.ErrPersistence, "failed to load calendar credential", err)
	}
	if cred == nil {
		logger.Info("TokenManager:GetValidToken:NotConnected", "account_id", accountID)
		return "", errors.NewAppError(errors.ErrCalendarNotConnected, "calendar is not connected", nil)
	}

	if cred.FreshUntil(s.now().Add(s.buffer)) {
		return cred.AccessToken, nil
	}

	// Concurrent callers for the same account share one refresh, so it must not
	// stop when the caller who started it goes away.
	v, err, _ := s.inflight.Do(accountID.String(), func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedRefreshTimeout)
		defer cancel()
		token, appErr := s.refresh(refreshCtx, accountID, cred.RefreshToken, cred.TokenExpiresAt)
		if appErr != nil {
			return nil, appErr
		}
		return token, nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return "", appErr
		}
		return "", errors.NewAppError(errors.ErrTokenRefreshFailed, "failed to refresh calendar access", err)
	}
	return v.(string), nil
}

func (s *tokenManager) refresh(ctx context.Context, accountID uuid.UUID, refreshToken string, observedExpiry time.Time) (string, *errors.AppError) {
	logger.Info("TokenManager:Refresh:Start", "account_id", accountID, "expired_at", observedExpiry)

	tok, err := s.refresher.Refresh(ctx, refreshToken)
	s.metrics.RecordTokenRefresh(err)
	if err != nil {
		logger.Warn("TokenManager:Refresh:Rejected", "account_id", accountID, "error", err)
		return "", errors.NewAppError(errors.ErrTokenRefreshFailed, "calendar access was revoked or could not be refreshed", err)
	}
	if tok == nil || tok.AccessToken == "" {
		logger.Warn("TokenManager:Refresh:NoAccessToken", "account_id", accountID)
		return "", errors.NewAppError(errors.ErrTokenRefreshFailed, "token endpoint returned no access token", nil)
	}

	lifetime := defaultTokenLifetime
	if tok.ExpiresIn > 0 {
		lifetime = time.Duration(tok.ExpiresIn) * time.Second
	}
	expiresAt := s.now().Add(lifetime)

	updated, err := s.repo.UpdateAccessToken(ctx, accountID, tok.AccessToken, expiresAt, observedExpiry)
	switch {
	case err != nil:
		logger.Error("TokenManager:Refresh:UpdateAccessToken:Error", "error", err, "account_id", accountID)
	case !updated:
		logger.Warn("TokenManager:Refresh:ConcurrentUpdate", "account_id", accountID)
	default:
		logger.Info("TokenManager:Refresh:Success", "account_id", accountID, "expires_at", expiresAt)
	}
	return tok.AccessToken, nil
}
