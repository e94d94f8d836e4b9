package domain

import "time"

// TokenTTL is the validity window for an email verification token. A token
// created exactly TokenTTL ago is no longer valid.
const TokenTTL = 24 * time.Hour

type VerificationToken struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	Token          string     `json:"token"`
	CreatedAt      time.Time  `json:"created_at"`
	ReminderSent   bool       `json:"reminder_sent"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
}

// IsValid reports whether the token is still within its validity window.
func (t *VerificationToken) IsValid() bool {
	return t.IsValidAt(time.Now())
}

func (t *VerificationToken) IsValidAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) < TokenTTL
}

// ReminderTarget is an unverified account holding a still-valid token that
// has not received a reminder email yet.
type ReminderTarget struct {
	TokenID  int64
	Token    string
	UserID   int64
	Username string
	Email    string
}
