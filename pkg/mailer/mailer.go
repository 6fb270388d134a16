package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/sanatan-blog/acharyas-gurus-api/pkg/config"
)

// Mailer delivers transactional email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New constructs a Mailer from SMTP sender credentials.
func New(cfg config.MailConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// SendVerificationCode emails the signup verification OTP.
func (m *Mailer) SendVerificationCode(to, name, code string) error {
	body := verificationBody(
		"Welcome to Acharyas & Gurus!",
		fmt.Sprintf("Hello %s,</p><p>Thank you for registering with Acharyas &amp; Gurus. Please verify your email address using the OTP below:", name),
		code,
		"If you didn't create an account with us, please ignore this email.",
	)
	return m.send(to, "Verify your email address - Acharyas & Gurus", body)
}

// SendReissuedCode emails a freshly issued OTP for an existing account.
func (m *Mailer) SendReissuedCode(to, name, code string) error {
	body := verificationBody(
		"Email Verification",
		fmt.Sprintf("Hello %s,</p><p>You requested a new verification OTP. Please use the code below to verify your email address:", name),
		code,
		"If you didn't request this OTP, please ignore this email.",
	)
	return m.send(to, "Email Verification OTP - Acharyas & Gurus", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func verificationBody(heading, intro, code, footer string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">%s</h2>
  <p>%s</p>
  <div style="text-align: center; margin: 30px 0;">
    <div style="background-color: #f5f5f5; padding: 20px; border-radius: 10px; display: inline-block;">
      <h1 style="color: #4CAF50; font-size: 32px; margin: 0; letter-spacing: 5px;">%s</h1>
    </div>
  </div>
  <p style="text-align: center; color: #666; font-size: 14px;">
    Enter this 6-digit code on the verification page to complete your registration.
  </p>
  <p>This OTP will expire in 10 minutes.</p>
  <p>%s</p>
  <br>
  <p>Best regards,<br>The Acharyas &amp; Gurus Team</p>
</div>`, heading, intro, code, footer)
}
