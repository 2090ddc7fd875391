package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
)

// SMTPConfig configures the implicit-TLS SMTP transport.
type SMTPConfig struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
	Timeout   time.Duration
}

// smtpSender is the part of *gomail.Client used for delivery.
type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPNotifier delivers notifications over SMTPS with PLAIN auth.
// The sender address doubles as the login name.
type SMTPNotifier struct {
	cfg    SMTPConfig
	sender smtpSender
}

// NewSMTPNotifier creates an SMTP notifier. The connection is opened per delivery.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Sender),
		gomail.WithPassword(cfg.Password),
		gomail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPNotifier{cfg: cfg, sender: client}, nil
}

// Deliver sends msg as a single plain-text email.
func (n *SMTPNotifier) Deliver(ctx context.Context, msg domain.NotificationMessage) error {
	logger := logging.FromContext(ctx).With(slog.String("transport", TransportNameSMTP))
	logger.InfoContext(ctx, "sending email",
		slog.String("recipient", n.cfg.Recipient),
		slog.String("host", n.cfg.Host),
	)

	m, err := n.buildMessage(msg)
	if err != nil {
		return domain.NewDeliveryError(TransportNameSMTP, err)
	}

	if err := n.sender.DialAndSendWithContext(ctx, m); err != nil {
		return domain.NewDeliveryError(TransportNameSMTP, err)
	}

	logger.InfoContext(ctx, "email sent")

	return nil
}

func (n *SMTPNotifier) buildMessage(msg domain.NotificationMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	if err := m.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}

	if err := m.To(n.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	return m, nil
}
