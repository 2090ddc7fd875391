package mail

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
)

const sesCharset = "UTF-8"

// sesAPI is the part of *ses.SES used for delivery.
type sesAPI interface {
	SendEmailWithContext(ctx aws.Context, input *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error)
}

// SESNotifier delivers notifications through Amazon SES SendEmail.
type SESNotifier struct {
	client    sesAPI
	sender    string
	recipient string
}

// NewSESNotifier creates a notifier on top of an SES client.
func NewSESNotifier(client sesAPI, sender, recipient string) *SESNotifier {
	return &SESNotifier{
		client:    client,
		sender:    sender,
		recipient: recipient,
	}
}

// Deliver sends msg with a UTF-8 text body.
func (n *SESNotifier) Deliver(ctx context.Context, msg domain.NotificationMessage) error {
	logger := logging.FromContext(ctx).With(slog.String("transport", TransportNameSES))
	logger.InfoContext(ctx, "sending email", slog.String("recipient", n.recipient))

	out, err := n.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(n.recipient)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Text: &ses.Content{
					Charset: aws.String(sesCharset),
					Data:    aws.String(msg.Body),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String(sesCharset),
				Data:    aws.String(msg.Subject),
			},
		},
		Source: aws.String(n.sender),
	})
	if err != nil {
		return domain.NewDeliveryError(TransportNameSES, err)
	}

	logger.InfoContext(ctx, "email sent", slog.String("message_id", aws.StringValue(out.MessageId)))

	return nil
}
