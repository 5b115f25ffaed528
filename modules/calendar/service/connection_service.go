package service

import (
	"context"
	stderrors "errors"
	"time"

	"clinic-calendar-api/core/cache"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/utils"
	"clinic-calendar-api/modules/calendar/entity"
	"clinic-calendar-api/modules/calendar/provider"
	"clinic-calendar-api/modules/calendar/repository"

	"github.com/google/uuid"
)

// ConnectionService connects and disconnects an account's calendar through OAuth consent.
type ConnectionService interface {
	AuthURL(ctx context.Context, accountID uuid.UUID) (string, *errors.AppError)
	HandleCallback(ctx context.Context, state, code string) (*entity.CalendarCredential, *errors.AppError)
	Status(ctx context.Context, accountID uuid.UUID) (*entity.CalendarCredential, *errors.AppError)
	Disconnect(ctx context.Context, accountID uuid.UUID) *errors.AppError
}

type connectionService struct {
	repo     repository.CredentialRepository
	oauth    provider.OAuthClient
	calendar provider.CalendarProvider
	states   cache.Cache
	stateTTL time.Duration
	now      func() time.Time
}

func NewConnectionService(repo repository.CredentialRepository, oauth provider.OAuthClient, calendar provider.CalendarProvider, states cache.Cache, stateTTL time.Duration, now func() time.Time) ConnectionService {
	if now == nil {
		now = time.Now
	}
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &connectionService{
		repo:     repo,
		oauth:    oauth,
		calendar: calendar,
		states:   states,
		stateTTL: stateTTL,
		now:      now,
	}
}

func (s *connectionService) AuthURL(ctx context.Context, accountID uuid.UUID) (string, *errors.AppError) {
	state := utils.GenerateRandomString(32)
	if err := s.states.SetOAuthState(ctx, state, accountID.String(), s.stateTTL); err != nil {
		logger.Error("ConnectionService:AuthURL:SetOAuthState:Error", "error", err, "account_id", accountID)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to start calendar connection", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

func (s *connectionService) HandleCallback(ctx context.Context, state, code string) (*entity.CalendarCredential, *errors.AppError) {
	if state == "" || code == "" {
		return nil, errors.NewValidationError("state and code are required", nil)
	}

	rawAccountID, err := s.states.ConsumeOAuthState(ctx, state)
	if err != nil {
		if stderrors.Is(err, cache.ErrStateNotFound) {
			logger.Warn("ConnectionService:HandleCallback:UnknownState")
			return nil, errors.NewAppError(errors.ErrUnauthorized, "connection link expired, please try again", nil)
		}
		logger.Error("ConnectionService:HandleCallback:ConsumeOAuthState:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to verify connection request", err)
	}
	accountID, err := uuid.Parse(rawAccountID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "stored connection request is corrupt", err)
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Warn("ConnectionService:HandleCallback:Exchange:Error", "error", err, "account_id", accountID)
		return nil, errors.NewAppError(errors.ErrCalendarProvider, "calendar provider rejected the authorization", err)
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		// Google omits the refresh token on re-consent; keep the one already on file.
		existing, err := s.repo.GetByAccountID(ctx, accountID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrPersistence, "failed to load calendar credential", err)
		}
		if existing == nil || existing.RefreshToken == "" {
			return nil, errors.NewAppError(errors.ErrCalendarProvider, "calendar provider did not grant offline access", nil)
		}
		refreshToken = existing.RefreshToken
	}

	email, err := s.calendar.PrimaryCalendar(ctx, tok.AccessToken)
	if err != nil {
		logger.Warn("ConnectionService:HandleCallback:PrimaryCalendar:Error", "error", err, "account_id", accountID)
	}

	expiresAt := tok.Expiry
	if tok.ExpiresIn > 0 {
		expiresAt = s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(defaultTokenLifetime)
	}

	cred := &entity.CalendarCredential{
		AccountID:      accountID,
		Provider:       constants.ProviderGoogle,
		AccessToken:    tok.AccessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
		CalendarEmail:  email,
	}
	if err := s.repo.Upsert(ctx, cred); err != nil {
		return nil, errors.NewAppError(errors.ErrPersistence, "failed to save calendar connection", err)
	}

	logger.Info("ConnectionService:HandleCallback:Connected", "account_id", accountID, "calendar_email", email)
	return cred, nil
}

func (s *connectionService) Status(ctx context.Context, accountID uuid.UUID) (*entity.CalendarCredential, *errors.AppError) {
	cred, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrPersistence, "failed to load calendar credential", err)
	}
	if cred == nil {
		return nil, errors.NewAppError(errors.ErrCalendarNotConnected, "calendar is not connected", nil)
	}
	return cred, nil
}

func (s *connectionService) Disconnect(ctx context.Context, accountID uuid.UUID) *errors.AppError {
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return errors.NewAppError(errors.ErrPersistence, "failed to disconnect calendar", err)
	}
	logger.Info("ConnectionService:Disconnect:Success", "account_id", accountID)
	return nil
}
