// Package watcher drives reconciliation: it periodically polls the chain
// subscription and folds the observed events into the per-user
// notification logs.
//
// The subscription is at-least-once and unordered, and the watcher keeps
// no cursor of its own. Correctness comes entirely from content-derived
// dedup in the notify store: replaying any batch, in any order, converges
// to the same logs. A half-applied tick withholds its ack, so a
// watermarked subscription re-yields the window on the next tick.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/events"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/metrics"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/notify"
)

// DefaultInterval matches the dapp's 2-second notification poll.
const DefaultInterval = 2 * time.Second

// Subscription yields a batch of raw contract events per poll. Delivery is
// at-least-once; implementations may redeliver events and need not order
// them. Ack tells the subscription the last polled batch was fully
// applied; until then it must keep the batch's window eligible for
// redelivery.
type Subscription interface {
	Poll(ctx context.Context) ([]models.LedgerEvent, error)
	Ack()
}

// Sink receives notifications that were newly inserted, for downstream
// fan-out (push, email). Duplicates never reach the sink.
type Sink interface {
	Publish(topic string, event any) error
}

// Watcher polls a Subscription and applies events to the notification
// store.
type Watcher struct {
	sub        Subscription
	normalizer *events.Normalizer
	store      *notify.Store
	sink       Sink
	interval   time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithSink attaches a publisher for newly inserted notifications.
func WithSink(sink Sink) Option {
	return func(w *Watcher) { w.sink = sink }
}

// New creates a Watcher.
func New(sub Subscription, store *notify.Store, opts ...Option) *Watcher {
	w := &Watcher{
		sub:        sub,
		normalizer: events.NewNormalizer(),
		store:      store,
		interval:   DefaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled. Failed ticks are logged and retried on
// the next tick; the loop itself only stops on cancellation.
//
// Ticks run sequentially. A tick that comes due while the previous one is
// still running is dropped, not queued behind it.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Watcher started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Watcher stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("Poll tick failed, will retry next tick", "error", err)
			}
			// Discard the tick that may have buffered while RunOnce ran.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// RunOnce performs a single poll-and-apply cycle. The batch is acked only
// when every append succeeded; a partially applied batch stays unacked so
// the subscription redelivers it. Exposed so tests can drive the watcher
// deterministically without wall-clock waits.
func (w *Watcher) RunOnce(ctx context.Context) error {
	batch, err := w.sub.Poll(ctx)
	if err != nil {
		metrics.PollErrors.Inc()
		return err
	}

	failed := 0
	for _, ev := range batch {
		metrics.EventsObserved.WithLabelValues(string(ev.Kind)).Inc()

		recipient, record, ok := w.normalizer.Normalize(ev)
		if !ok {
			continue
		}

		inserted, err := w.store.Append(ctx, recipient, record)
		if err != nil {
			// Each append is independently idempotent, so keep applying
			// the rest of the batch and withhold the ack at the end.
			failed++
			metrics.AppendErrors.Inc()
			slog.Error("Failed to append notification",
				"user", recipient.Hex(), "id", record.ID, "error", err)
			continue
		}
		if !inserted {
			metrics.DuplicatesDropped.Inc()
			continue
		}

		metrics.NotificationsInserted.Inc()
		slog.Debug("Notification inserted",
			"user", recipient.Hex(), "kind", record.Kind, "id", record.ID)

		if w.sink != nil {
			if err := w.sink.Publish("notifications", record); err != nil {
				slog.Warn("Sink publish failed", "id", record.ID, "error", err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("watcher: %d of %d events failed to apply", failed, len(batch))
	}
	w.sub.Ack()
	return nil
}
