package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendVerificationEmail(toEmail, username, verifyURL string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Verify your email for AI Marketing Platform"
	html := fmt.Sprintf(`
		<h2>Welcome to AI Marketing Platform!</h2>
		<p>Hi %s,</p>
		<p>Please confirm your email address by clicking the link below:</p>
		<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Email</a></p>
		<p>This link will expire in 24 hours. Your account stays inactive until you verify.</p>
		<p>If you didn't create an account with us, please ignore this email.</p>
	`, username, verifyURL)

	text := fmt.Sprintf("Hi %s,\n\nPlease verify your email by clicking this link: %s\n\nThis link will expire in 24 hours.", username, verifyURL)

	return m.sendEmail(toEmail, username, subject, text, html)
}

func (m *MailerSendClient) SendVerificationReminder(toEmail, username, verifyURL string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Reminder: verify your email for AI Marketing Platform"
	html := fmt.Sprintf(`
		<h2>Your account is waiting</h2>
		<p>Hi %s,</p>
		<p>You registered but haven't verified your email yet. Your verification link is still valid:</p>
		<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Email</a></p>
	`, username, verifyURL)

	text := fmt.Sprintf("Hi %s,\n\nYou haven't verified your email yet. Your link is still valid: %s", username, verifyURL)

	return m.sendEmail(toEmail, username, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
