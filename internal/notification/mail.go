package notification

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/example/room-reservations/internal/scheduler"
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// RecipientResolver returns the e-mail address of a user.
type RecipientResolver func(userID string) (string, bool)

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MailNotifier e-mails the reservation owner. Owners without a mailbox are
// skipped.
type MailNotifier struct {
	sender     Sender
	from       string
	recipients RecipientResolver
	logger     *slog.Logger
}

// NewSMTPNotifier creates a MailNotifier that dials cfg for every message.
func NewSMTPNotifier(cfg SMTPConfig, recipients RecipientResolver, logger *slog.Logger) *MailNotifier {
	return NewMailNotifier(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, recipients, logger)
}

// NewMailNotifier creates a MailNotifier over an arbitrary Sender.
func NewMailNotifier(sender Sender, from string, recipients RecipientResolver, logger *slog.Logger) *MailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailNotifier{sender: sender, from: from, recipients: recipients, logger: logger.With("component", "mail_notifier")}
}

// Notify implements Notifier.
func (n *MailNotifier) Notify(ctx context.Context, event Event, r scheduler.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, ok := n.recipients(r.UserID)
	if !ok || to == "" {
		n.logger.DebugContext(ctx, "owner has no mailbox, mail skipped", "user_id", r.UserID, "reservation_id", r.ID, "event", string(event))
		return nil
	}
	msg, err := Compose(event, r)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetAddressHeader("To", to, r.UserName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s mail for reservation %s: %w", event, r.ID, err)
	}
	return nil
}
