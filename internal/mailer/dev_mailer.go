package mailer

import (
	"github.com/aimarketing/accounts/pkg/logger"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVerificationEmail(toEmail, username, verifyURL string) error {
	logger.Info("[DEV MAIL] Verification Email",
		"to", toEmail,
		"username", username,
		"verify_url", verifyURL,
	)
	return nil
}

func (d *DevMailer) SendVerificationReminder(toEmail, username, verifyURL string) error {
	logger.Info("[DEV MAIL] Verification Reminder",
		"to", toEmail,
		"username", username,
		"verify_url", verifyURL,
	)
	return nil
}
