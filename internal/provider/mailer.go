package provider

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the mail relay credentials.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers one-time passcodes by email.
type SMTPMailer struct {
	from   string
	dialer mailDialer
}

// NewSMTPMailer creates a mailer; port 465 uses implicit TLS, others STARTTLS.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.User,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
	}
}

// SendOTP mails code to the recipient with its validity period.
func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	minutes := int(ttl.Minutes())

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Bachat-G Admin")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your Bachat-G Admin OTP")
	msg.SetBody("text/plain", fmt.Sprintf("Your OTP for Bachat-G Admin login is: %s. It is valid for %d minutes.", code, minutes))
	msg.AddAlternative("text/html", fmt.Sprintf(otpHTML, code, minutes))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

const otpHTML = `<div style="font-family: Arial, sans-serif; padding: 20px; border: 1px solid #eee; border-radius: 5px;">
  <h2 style="color: #6200ee;">Bachat-G Admin Login</h2>
  <p>Use the following One-Time Password (OTP) to access your account:</p>
  <div style="font-size: 24px; font-weight: bold; color: #6200ee; padding: 10px; background: #f4f4f4; border-radius: 5px; display: inline-block;">%s</div>
  <p>This OTP is valid for %d minutes. If you did not request this code, please ignore this email.</p>
  <hr style="border: none; border-top: 1px solid #eee;" />
  <p style="font-size: 12px; color: #777;">Bachat-G Team</p>
</div>`
