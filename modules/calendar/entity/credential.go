package entity

import (
	"time"

	"github.com/google/uuid"
)

// CalendarCredential is the single OAuth credential set an account holds for its calendar.
type CalendarCredential struct {
	AccountID      uuid.UUID `db:"account_id" json:"account_id"`
	Provider       string    `db:"provider" json:"provider"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CalendarEmail  string    `db:"calendar_email" json:"calendar_email"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (CalendarCredential) TableName() string {
	return "calendar_credentials"
}

// FreshUntil reports whether the access token is still valid past at.
func (c *CalendarCredential) FreshUntil(at time.Time) bool {
	return c.TokenExpiresAt.After(at)
}
