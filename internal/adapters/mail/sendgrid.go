package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients/acl"
	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
)

const (
	sendPath   = "/v3/mail/send"
	scopesPath = "/v3/scopes"
)

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// sendGridPayload is the v3 mail/send request body.
type sendGridPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// SendGridNotifier delivers notifications through the SendGrid v3 API.
type SendGridNotifier struct {
	acl.BaseAdapter
	sender    string
	recipient string
}

// NewSendGridNotifier creates a notifier on top of client. The client's BaseURL
// points at the SendGrid API and its AuthFunc sets the bearer token.
// Panics if client is nil.
func NewSendGridNotifier(client *clients.Client, sender, recipient string) *SendGridNotifier {
	if client == nil {
		panic("SendGridNotifier: client is required")
	}

	return &SendGridNotifier{
		BaseAdapter: acl.NewBaseAdapter(client, TransportNameSendGrid),
		sender:      sender,
		recipient:   recipient,
	}
}

// BearerAuth returns a clients.Config AuthFunc for a SendGrid API key.
func BearerAuth(apiKey string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// Deliver posts msg to mail/send. Only 202 Accepted counts as success.
func (n *SendGridNotifier) Deliver(ctx context.Context, msg domain.NotificationMessage) error {
	logger := logging.FromContext(ctx).With(slog.String("transport", TransportNameSendGrid))
	logger.InfoContext(ctx, "sending email", slog.String("recipient", n.recipient))

	payload, err := json.Marshal(n.payload(msg))
	if err != nil {
		return domain.NewDeliveryError(TransportNameSendGrid, fmt.Errorf("encoding payload: %w", err))
	}

	resp, err := n.Client().Post(ctx, sendPath, bytes.NewReader(payload))
	if err != nil {
		var statusErr *clients.StatusError
		if errors.As(err, &statusErr) {
			return domain.NewDeliveryStatusError(TransportNameSendGrid, statusErr.StatusCode, "")
		}

		return domain.NewDeliveryError(TransportNameSendGrid, acl.MapHTTPError(nil, err, n.ServiceName(), "mail send"))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		reason := ""
		if errResp := acl.ParseErrorResponse(resp.Body); errResp != nil {
			reason = errResp.GetMessage()
		}

		return domain.NewDeliveryStatusError(TransportNameSendGrid, resp.StatusCode, reason)
	}

	logger.InfoContext(ctx, "email sent")

	return nil
}

func (n *SendGridNotifier) payload(msg domain.NotificationMessage) sendGridPayload {
	return sendGridPayload{
		Personalizations: []sendGridPersonalization{{
			To: []sendGridAddress{{Email: n.recipient}},
		}},
		From:    sendGridAddress{Email: n.sender},
		Subject: msg.Subject,
		Content: []sendGridContent{{Type: "text/plain", Value: msg.Body}},
	}
}

// Name returns the health check name for this notifier.
// Implements ports.HealthChecker.
func (n *SendGridNotifier) Name() string {
	return TransportNameSendGrid
}

// Check verifies the API key by listing its scopes.
// Implements ports.HealthChecker.
func (n *SendGridNotifier) Check(ctx context.Context) error {
	_, err := n.Get(ctx, scopesPath, nil, "scope lookup")
	return err
}
