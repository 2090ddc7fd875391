// Package mail provides the notification transports. Exactly one is active per
// deployment, selected by mail.transport.
package mail

import (
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/platform/config"
	"github.com/jsamuelsen/flight-watcher/internal/ports"
)

// Transport names used in logs, errors and health checks.
const (
	TransportNameSendGrid = config.TransportSendGrid
	TransportNameSMTP     = config.TransportSMTP
	TransportNameSES      = config.TransportSES
)

// New builds the notifier for cfg.Mail.Transport. Transports that can probe
// their API also implement ports.HealthChecker.
func New(cfg *config.Config, logger *slog.Logger) (ports.Notifier, error) {
	switch cfg.Mail.Transport {
	case config.TransportSendGrid:
		client, err := clients.New(&clients.Config{
			BaseURL:     cfg.Mail.SendGridBaseURL,
			ServiceName: TransportNameSendGrid,
			Timeout:     cfg.Mail.SendGridTimeout,
			Retry:       cfg.Client.Retry,
			Circuit:     cfg.Client.CircuitBreaker,
			Transport:   cfg.Client.Transport,
			AuthFunc:    BearerAuth(cfg.Mail.SendGridAPIKey),
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating sendgrid client: %w", err)
		}

		return NewSendGridNotifier(client, cfg.Mail.Sender, cfg.Mail.Recipient), nil

	case config.TransportSMTP:
		notifier, err := NewSMTPNotifier(SMTPConfig{
			Host:      cfg.Mail.SMTPHost,
			Port:      cfg.Mail.SMTPPort,
			Sender:    cfg.Mail.Sender,
			Password:  cfg.Mail.SMTPPassword,
			Recipient: cfg.Mail.Recipient,
			Timeout:   cfg.Mail.SMTPTimeout,
		})
		if err != nil {
			return nil, err
		}

		return notifier, nil

	case config.TransportSES:
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Mail.SESRegion)})
		if err != nil {
			return nil, fmt.Errorf("creating aws session: %w", err)
		}

		return NewSESNotifier(ses.New(sess), cfg.Mail.Sender, cfg.Mail.Recipient), nil

	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}
