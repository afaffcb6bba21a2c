// Package metrics declares the Prometheus instrumentation for the
// reconciliation pipeline. Served at /metrics by cmd/server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsObserved counts raw events seen per poll, by kind. Redelivered
	// events count every time they are observed.
	EventsObserved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmon",
		Subsystem: "watcher",
		Name:      "events_observed_total",
		Help:      "Raw contract events observed by the poller, including redeliveries.",
	}, []string{"kind"})

	// NotificationsInserted counts appends that created a new record.
	NotificationsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitmon",
		Subsystem: "watcher",
		Name:      "notifications_inserted_total",
		Help:      "Notifications newly inserted into a user log.",
	})

	// DuplicatesDropped counts appends that hit an existing content key.
	// A steady nonzero rate here is normal: the subscription is
	// at-least-once.
	DuplicatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitmon",
		Subsystem: "watcher",
		Name:      "duplicates_dropped_total",
		Help:      "Appends deduplicated by content key.",
	})

	// MalformedDropped counts events the normalizer discarded.
	MalformedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitmon",
		Subsystem: "watcher",
		Name:      "malformed_events_total",
		Help:      "Events dropped because required fields were missing or malformed.",
	})

	// PollErrors counts failed subscription polls. The tick is skipped and
	// the next one retries the window.
	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitmon",
		Subsystem: "watcher",
		Name:      "poll_errors_total",
		Help:      "Subscription polls that returned an error.",
	})

	// AppendErrors counts persistence failures during reconciliation.
	AppendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitmon",
		Subsystem: "watcher",
		Name:      "append_errors_total",
		Help:      "Notification appends that failed at the storage layer.",
	})
)
