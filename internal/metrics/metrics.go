// Package metrics provides Prometheus instrumentation for the content store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes recorded by RecordLoginAttempt.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid"
	LoginRateLimited = "rate_limited"
	LoginDenied      = "denied"
)

// Recorder is the instrumentation surface used by the store, auth and analytics layers.
type Recorder interface {
	RecordDecodeFailure(key string)
	RecordReadFailure(key string)
	RecordWriteFailure(key string)
	RecordLoginAttempt(outcome string)
	RecordSessionExpired()
	RecordPageView()
	RecordActivity(eventType string)
}

// Collector implements Recorder with Prometheus counters.
type Collector struct {
	decodeFailures  *prometheus.CounterVec
	readFailures    *prometheus.CounterVec
	writeFailures   *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
	sessionsExpired prometheus.Counter
	pageViews       prometheus.Counter
	activityEvents  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	c := &Collector{
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kv_decode_failures_total",
			Help:      "Stored values that could not be decoded and were replaced by defaults.",
		}, []string{"key"}),
		readFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kv_read_failures_total",
			Help:      "Reads from the key-value backend that failed and fell back to defaults.",
		}, []string{"key"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kv_write_failures_total",
			Help:      "Writes to the key-value backend that failed and were dropped.",
		}, []string{"key"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions cleared because their expiry had passed.",
		}),
		pageViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_recorded_total",
			Help:      "Page views appended to the event log.",
		}),
		activityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_total",
			Help:      "Activity events appended by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		c.decodeFailures,
		c.readFailures,
		c.writeFailures,
		c.loginAttempts,
		c.sessionsExpired,
		c.pageViews,
		c.activityEvents,
	)

	return c
}

// RecordDecodeFailure counts a corrupted value under key.
func (c *Collector) RecordDecodeFailure(key string) {
	c.decodeFailures.WithLabelValues(key).Inc()
}

// RecordReadFailure counts a backend read error under key.
func (c *Collector) RecordReadFailure(key string) {
	c.readFailures.WithLabelValues(key).Inc()
}

// RecordWriteFailure counts a dropped write under key.
func (c *Collector) RecordWriteFailure(key string) {
	c.writeFailures.WithLabelValues(key).Inc()
}

// RecordLoginAttempt counts a login attempt with the given outcome.
func (c *Collector) RecordLoginAttempt(outcome string) {
	c.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordSessionExpired counts a lazily expired session.
func (c *Collector) RecordSessionExpired() {
	c.sessionsExpired.Inc()
}

// RecordPageView counts a recorded page view.
func (c *Collector) RecordPageView() {
	c.pageViews.Inc()
}

// RecordActivity counts an activity event.
func (c *Collector) RecordActivity(eventType string) {
	c.activityEvents.WithLabelValues(eventType).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordDecodeFailure(string) {}
func (Nop) RecordReadFailure(string)   {}
func (Nop) RecordWriteFailure(string)  {}
func (Nop) RecordLoginAttempt(string)  {}
func (Nop) RecordSessionExpired()      {}
func (Nop) RecordPageView()            {}
func (Nop) RecordActivity(string)      {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
