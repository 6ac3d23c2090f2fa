// Package notify delivers best-effort email notifications for item
// lifecycle events. Dispatch is fire-and-forget: the request path never
// waits for delivery and never sees delivery errors.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/mlakar/foundling/internal/model"
)

// Event identifies the item lifecycle moment being notified.
type Event string

const (
	// EventReported fires when a lost item report is created.
	EventReported Event = "reported"
	// EventFound fires when an item is marked found.
	EventFound Event = "found"
)

// Config holds the SMTP settings. Leaving SMTPHost empty disables
// notifications entirely.
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	Timeout      time.Duration
}

// Enabled reports whether the configuration allows sending at all.
func (c *Config) Enabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

// Validate checks a non-disabled configuration.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return errors.New("SMTP port must be between 1 and 65535")
	}
	return nil
}

// Dispatcher sends notification emails. A nil Dispatcher is valid and
// drops every event, which is how a deployment without SMTP runs.
type Dispatcher struct {
	client  *mail.Client
	from    string
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher, or nil when cfg disables sending.
func NewDispatcher(cfg *Config) (*Dispatcher, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = cfg.FromName + " <" + cfg.FromEmail + ">"
	}

	return &Dispatcher{client: client, from: from, timeout: timeout}, nil
}

// Dispatch sends a notification for the event in a detached goroutine and
// returns immediately. Items without a contact email are skipped, and a
// reported event only fires for lost items (the reporter of a found item
// has nothing to wait for). Delivery errors are logged and discarded.
func (d *Dispatcher) Dispatch(item *model.Item, event Event) {
	if d == nil || item.ContactEmail == "" {
		return
	}
	if event == EventReported && item.Status != model.ItemStatusLost {
		return
	}

	subject, body, err := renderEmail(event, item)
	if err != nil {
		slog.Error("rendering notification email", "event", event, "item_id", item.ID, "error", err)
		return
	}

	to := item.ContactEmail
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		msg := mail.NewMsg()
		if err := msg.From(d.from); err != nil {
			slog.Error("building notification email", "error", err)
			return
		}
		if err := msg.To(to); err != nil {
			slog.Warn("invalid notification recipient", "item_id", item.ID, "error", err)
			return
		}
		msg.Subject(subject)
		msg.SetBodyString(mail.TypeTextHTML, body)

		if err := d.client.DialAndSendWithContext(ctx, msg); err != nil {
			slog.Warn("notification delivery failed",
				"event", event, "item_id", item.ID, "error", err)
		}
	}()
}

// Wait blocks until all in-flight deliveries finish or give up. Only the
// shutdown path and tests call this; request handlers never do.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
