package logging

import (
	"context"
	"log/slog"
	"regexp"
	"slices"

	"github.com/m-mizutani/masq"
)

// sensitiveFields are attribute and struct field names whose values never
// reach a log sink. Struct names cover a config value logged whole.
var sensitiveFields = []string{
	"password", "secret", "token", "authorization", "auth", "bearer", "cookie",
	"api_key", "apiKey", "apikey", "APIKey",
	"sendgrid_api_key", "SendGridAPIKey",
	"smtp_password", "SMTPPassword",
	"aws_secret_access_key", "SecretAccessKey",
}

var (
	// "Bearer <token>" as sent to SendGrid.
	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)

	// SerpApi takes its key in the query string; catches logged URLs.
	apiKeyQueryPattern = regexp.MustCompile(`(?i)api_key=[^&\s]+`)

	// SendGrid keys look like SG.<id>.<secret>.
	sendGridKeyPattern = regexp.MustCompile(`^SG\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)
)

// RedactOptions returns the masq options applied by every handler this
// package builds.
func RedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(sensitiveFields)+4)
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(apiKeyQueryPattern),
		masq.WithRegex(sendGridKeyPattern),
	)
}

// NewReplaceAttr returns an slog ReplaceAttr func that redacts secrets.
// Extra options extend RedactOptions.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(RedactOptions(), extra...)...)
}

// redactingHandler runs replace over every attribute before delegating. It
// serves handlers without a ReplaceAttr option, such as charmbracelet/log.
type redactingHandler struct {
	next    slog.Handler
	replace func(groups []string, a slog.Attr) slog.Attr
	groups  []string
}

func newRedactingHandler(next slog.Handler, replace func(groups []string, a slog.Attr) slog.Attr) *redactingHandler {
	return &redactingHandler{next: next, replace: replace}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(h.groups, a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(h.groups, a)
	}

	return &redactingHandler{next: h.next.WithAttrs(redacted), replace: h.replace, groups: h.groups}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &redactingHandler{
		next:    h.next.WithGroup(name),
		replace: h.replace,
		groups:  append(slices.Clone(h.groups), name),
	}
}

func (h *redactingHandler) redact(groups []string, a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() != slog.KindGroup {
		return h.replace(groups, a)
	}

	inner := groups
	if a.Key != "" {
		inner = append(slices.Clone(groups), a.Key)
	}

	members := a.Value.Group()
	redacted := make([]slog.Attr, len(members))
	for i, m := range members {
		redacted[i] = h.redact(inner, m)
	}

	return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
}
