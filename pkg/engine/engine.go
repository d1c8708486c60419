package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gestfin/gestfin/pkg/model"
	"github.com/gestfin/gestfin/pkg/notify"
)

// DefaultInterval is how often the periodic regeneration loop re-runs the
// rules; day-boundary sensitive rules (days until due) shift over time even
// when source data does not change.
const DefaultInterval = 5 * time.Minute

// SourceProvider supplies the snapshot of source entities the rules run over.
type SourceProvider interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// Engine owns the alert collection, its read/unread lifecycle and the
// notification settings record. All mutations go through a single mutex.
type Engine struct {
	source    SourceProvider
	eval      *Evaluator
	notifiers []notify.Notifier
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	settings model.NotificationSettings
	alerts   []model.Alert
	known    map[string]struct{}

	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall-clock source; rule evaluation never reads the
// system clock directly, so tests can pin "now".
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

// New creates an engine with default settings. Alerts are not populated
// until the first Regenerate call.
func New(source SourceProvider, eval *Evaluator, notifiers []notify.Notifier, logger *slog.Logger, opts ...Option) *Engine {
	if eval == nil {
		eval = NewEvaluator(nil)
	}
	e := &Engine{
		source:    source,
		eval:      eval,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
		known:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.settings = model.DefaultNotificationSettings(e.now().UTC())
	return e
}

// Regenerate recomputes the whole alert collection from the current snapshot
// and replaces the stored list. Read state does not survive regeneration;
// see DESIGN.md. Alerts appearing for the first time with severity high or
// above are forwarded to the configured notifiers; delivery failures are
// logged and never fail the pass.
func (e *Engine) Regenerate(ctx context.Context) error {
	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	e.mu.Lock()
	alerts := e.eval.Evaluate(snap, e.settings, e.now().UTC())

	known := make(map[string]struct{}, len(alerts))
	var fresh []model.Alert
	for _, a := range alerts {
		known[a.ID] = struct{}{}
		if _, seen := e.known[a.ID]; !seen {
			fresh = append(fresh, a)
		}
	}
	e.alerts = alerts
	e.known = known
	e.mu.Unlock()

	e.dispatch(ctx, fresh)
	return nil
}

func (e *Engine) dispatch(ctx context.Context, fresh []model.Alert) {
	for _, a := range fresh {
		if !a.Severity.AtLeast(model.SeverityHigh) {
			continue
		}
		for _, n := range e.notifiers {
			if err := n.Send(ctx, a); err != nil {
				e.logger.Error("send alert",
					"notifier", n.Name(),
					"alert", a.ID,
					"error", err,
				)
			}
		}
	}
}

// Run regenerates on a fixed interval until the context is cancelled.
// A tick is skipped if the previous pass is still in flight.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.running.CompareAndSwap(false, true) {
				continue
			}
			if err := e.Regenerate(ctx); err != nil {
				e.logger.Error("regenerate alerts", "error", err)
			}
			e.running.Store(false)
		}
	}
}

// Alerts returns a copy of the current collection in emission order.
func (e *Engine) Alerts() []model.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Alert, len(e.alerts))
	copy(out, e.alerts)
	return out
}

// MarkAsRead flips an alert to read. No-op if the id is absent.
func (e *Engine) MarkAsRead(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.alerts {
		if e.alerts[i].ID == id {
			e.alerts[i].IsRead = true
			return
		}
	}
}

// MarkAllAsRead flips every current alert to read.
func (e *Engine) MarkAllAsRead() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.alerts {
		e.alerts[i].IsRead = true
	}
}

// DeleteAlert removes an alert from the collection. No-op if absent.
// The id stays known until the next regeneration, so deletion does not
// re-trigger notifier dispatch on its own.
func (e *Engine) DeleteAlert(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.alerts {
		if e.alerts[i].ID == id {
			e.alerts = append(e.alerts[:i], e.alerts[i+1:]...)
			return
		}
	}
}

// UnreadCount returns how many current alerts are unread.
func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, a := range e.alerts {
		if !a.IsRead {
			n++
		}
	}
	return n
}

// AlertsByType filters the collection, preserving order.
func (e *Engine) AlertsByType(t model.AlertType) []model.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.Alert
	for _, a := range e.alerts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// AlertsBySeverity filters the collection, preserving order.
func (e *Engine) AlertsBySeverity(s model.Severity) []model.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.Alert
	for _, a := range e.alerts {
		if a.Severity == s {
			out = append(out, a)
		}
	}
	return out
}
