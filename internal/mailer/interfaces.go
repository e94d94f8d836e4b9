package mailer

type Service interface {
	SendVerificationEmail(toEmail, username, verifyURL string) error
	SendVerificationReminder(toEmail, username, verifyURL string) error
}
