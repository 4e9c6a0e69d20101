package cacheworker

import (
	"context"
	"encoding/json"

	"github.com/dmarakov/storypin/internal/logging"
)

// Defaults applied to push payloads with missing fields.
const (
	defaultPushTitle = "Storypin"
	defaultPushBody  = "You have a new notification"
	defaultPushIcon  = "/images/icon-192x192.png"
	defaultPushBadge = "/images/icon-72x72.png"
	defaultPushURL   = "/"
)

// PushPayload is a decoded push message. Every field has a default, so a
// bare ping with no body still produces a presentable notification.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	Badge string `json:"badge"`
	URL   string `json:"url"`
}

// ParsePushPayload decodes data and fills in defaults. Empty or malformed
// data yields the all-defaults payload rather than an error.
func ParsePushPayload(data []byte) PushPayload {
	var p PushPayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &p)
	}
	if p.Title == "" {
		p.Title = defaultPushTitle
	}
	if p.Body == "" {
		p.Body = defaultPushBody
	}
	if p.Icon == "" {
		p.Icon = defaultPushIcon
	}
	if p.Badge == "" {
		p.Badge = defaultPushBadge
	}
	if p.URL == "" {
		p.URL = defaultPushURL
	}
	return p
}

// Notifier displays notifications to the user. Implementations range from a
// desktop notifier to a log-only sink.
type Notifier interface {
	Show(ctx context.Context, p PushPayload) error
}

// Window is one open app surface the dispatcher can focus.
type Window interface {
	Focus(ctx context.Context) error
}

// WindowRegistry enumerates open app surfaces and opens new ones.
type WindowRegistry interface {
	List(ctx context.Context) ([]Window, error)
	Open(ctx context.Context, url string) error
}

// Dispatcher turns push payloads into notifications and routes notification
// clicks to an app window.
type Dispatcher struct {
	notifier Notifier
	windows  WindowRegistry
	log      logging.Logger
}

func NewDispatcher(notifier Notifier, windows WindowRegistry, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		windows:  windows,
		log:      log.With("component", "push"),
	}
}

// HandlePush decodes the raw message and shows it.
func (d *Dispatcher) HandlePush(ctx context.Context, data []byte) error {
	p := ParsePushPayload(data)
	if err := d.notifier.Show(ctx, p); err != nil {
		d.log.Error(ctx, "failed to show notification", "title", p.Title, "error", err)
		return err
	}
	d.log.Info(ctx, "notification shown", "title", p.Title, "url", p.URL)
	return nil
}

// HandleClick focuses an already-open window when one exists, otherwise
// opens the notification's target URL in a new one.
func (d *Dispatcher) HandleClick(ctx context.Context, targetURL string) error {
	if targetURL == "" {
		targetURL = defaultPushURL
	}
	if d.windows == nil {
		d.log.Debug(ctx, "no window registry, ignoring click", "url", targetURL)
		return nil
	}

	windows, err := d.windows.List(ctx)
	if err != nil {
		return err
	}
	if len(windows) > 0 {
		return windows[0].Focus(ctx)
	}
	return d.windows.Open(ctx, targetURL)
}
