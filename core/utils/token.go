package utils

import (
	stderrors "errors"
	"fmt"
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims identifies the clinic account behind a dashboard session.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

func jwtSettings() (config.JWTConfig, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.JWT.Secret == "" {
		return config.JWTConfig{}, errors.NewAppError(errors.ErrInternalServer, "jwt secret is not configured", nil)
	}
	return cfg.JWT, nil
}

func GenerateToken(userID uuid.UUID, email string, scope string) (string, *errors.AppError) {
	settings, appErr := jwtSettings()
	if appErr != nil {
		return "", appErr
	}
	return SignToken(settings, userID, email, scope, time.Now())
}

// SignToken builds an HS256 session token.
func SignToken(settings config.JWTConfig, userID uuid.UUID, email, scope string, now time.Time) (string, *errors.AppError) {
	if settings.Secret == "" {
		return "", errors.NewAppError(errors.ErrInternalServer, "jwt secret is not configured", nil)
	}
	ttl := settings.AccessTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    settings.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(settings.Secret))
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to sign token", err)
	}
	return signed, nil
}

// ParseToken verifies an access token. An empty secret rejects every token.
func ParseToken(settings config.JWTConfig, token string) (*TokenClaims, *errors.AppError) {
	if settings.Secret == "" {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "session signing is not configured", nil)
	}
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(settings.Secret), nil
	}, jwt.WithIssuer(settings.Issuer))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "token expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", err)
	}
	if !parsed.Valid || claims.UserID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", nil)
	}
	if claims.Scope != constants.ScopeTokenAccess {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "token scope not allowed", nil)
	}
	return claims, nil
}
