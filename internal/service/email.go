package service

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"nightlog/internal/config"
)

// EmailService sends transactional mail over SMTP. When SMTP is not
// configured (local development) messages are logged instead of sent, so the
// signup flow works without a mail account.
type EmailService struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.EmailFrom,
	}
}

func (s *EmailService) configured() bool {
	return s.host != "" && s.user != "" && s.pass != "" && s.from != ""
}

// SendWelcome sends the post-signup welcome email.
func (s *EmailService) SendWelcome(ctx context.Context, email, username string) error {
	subject := "Welcome to NightLog"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to NightLog! Your dream journal is ready.\n\nWrite down a dream as soon as you wake up; details fade fast. Tags and moods make the insights page a lot more interesting.\n\nSweet dreams,\nThe NightLog team\n",
		username,
	)
	return s.send(ctx, email, subject, body)
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	if !s.configured() {
		log.Printf("[Email] SMTP not configured, would send to=%s subject=%q", to, subject)
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
	}

	log.Printf("[Email] Sent: to=%s subject=%q", to, subject)
	return nil
}
