// Package sender turns broker notices into outbound email. One handler
// per routing key; the notifier binds them to the queues.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qalopay/school-payments/internal/lib/smtp"
	"github.com/qalopay/school-payments/internal/models"
)

// Sender composes and delivers the notification emails.
type Sender struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New creates the sender.
func New(transport smtp.TransportInterface, log *slog.Logger) *Sender {
	return &Sender{transport: transport, log: log}
}

// HandleTrialExpiry mails the school owner that the trial ends today.
func (s *Sender) HandleTrialExpiry(body []byte) error {
	const op = "services.sender.HandleTrialExpiry"

	var notice models.TrialNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := "تنبيه: الفترة التجريبية تنتهي اليوم"
	text := fmt.Sprintf(
		"مرحباً %s،\n\nتنتهي الفترة التجريبية لمدرسة %s اليوم (%s).\n\nيرجى اختيار باقة اشتراك لمواصلة استخدام المنصة دون انقطاع.",
		notice.OwnerName, notice.SchoolName, notice.TrialEnd.Format("2006-01-02"))

	if err := s.send(notice.Email, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("trial-expiry email sent",
		slog.String("school_id", notice.SchoolID),
		slog.String("to", notice.Email))
	return nil
}

// HandleWelcome mails a greeting to a freshly registered school.
func (s *Sender) HandleWelcome(body []byte) error {
	const op = "services.sender.HandleWelcome"

	var notice models.WelcomeNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := "مرحباً بكم في QaloPay"
	text := fmt.Sprintf(
		"مرحباً %s،\n\nتم إنشاء حساب مدرسة %s بنجاح وبدأت الفترة التجريبية المجانية.\n\nنتمنى لكم تجربة موفقة.",
		notice.OwnerName, notice.SchoolName)

	if err := s.send(notice.Email, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("welcome email sent", slog.String("to", notice.Email))
	return nil
}

// send delivers one plain-text UTF-8 message through a fresh SMTP
// connection.
func (s *Sender) send(to, subject, text string) error {
	from := s.transport.GetSMTPUser()

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		text,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close message body: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}
	return nil
}
