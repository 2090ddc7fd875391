// Package main runs one poll cycle per AWS Lambda invocation, for deployments
// scheduled by EventBridge instead of the in-process sleep loop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jsamuelsen/flight-watcher/internal/app"
	"github.com/jsamuelsen/flight-watcher/internal/bootstrap"
)

// cycleOutput is returned to the invoker and shows up in the Lambda console.
type cycleOutput struct {
	CorrelationID string `json:"correlationId"`
	Subject       string `json:"subject"`
	FetchError    string `json:"fetchError,omitempty"`
	DeliveryError string `json:"deliveryError,omitempty"`
}

func newOutput(r app.CycleResult) cycleOutput {
	out := cycleOutput{
		CorrelationID: r.CorrelationID,
		Subject:       r.Message.Subject,
	}

	if r.FetchErr != nil {
		out.FetchError = r.FetchErr.Error()
	}

	if r.DeliveryErr != nil {
		out.DeliveryError = r.DeliveryErr.Error()
	}

	return out
}

// handler returns the invocation function. Failures inside the cycle are
// reported in the output, not as invocation errors, so EventBridge does not retry.
func handler(w *app.Watcher, logger *slog.Logger) func(context.Context, events.CloudWatchEvent) (cycleOutput, error) {
	return func(ctx context.Context, event events.CloudWatchEvent) (cycleOutput, error) {
		logger.InfoContext(ctx, "scheduled invocation",
			slog.String("event_id", event.ID),
			slog.String("source", event.Source),
		)

		return newOutput(w.RunCycle(ctx)), nil
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig(os.Getenv("APP_ENVIRONMENT"))
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cfg)

	ctx := context.Background()

	c, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)

	lambda.Start(handler(c.Watcher, logger))

	return nil
}
