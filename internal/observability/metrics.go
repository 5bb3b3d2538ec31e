package observability

import (
	"sync"
)

// Counter names recorded by the ticket lifecycle.
const (
	MetricTicketsCreated      = "tickets_created"
	MetricTicketsAlreadyOpen  = "tickets_already_open"
	MetricTicketsClosed       = "tickets_closed"
	MetricTranscriptsArchived = "transcripts_archived"
	MetricArchiveFailures     = "archive_failures"
	MetricTicketsDeleted      = "tickets_deleted"
	MetricDeletionFailures    = "deletion_failures"
	MetricInteractionErrors   = "interaction_errors"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	requests map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		requests: make(map[string]int64),
	}
}

// Inc increments the named counter. Safe on a nil receiver.
func (m *Metrics) Inc(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// RecordRequest counts ops HTTP requests by path, method and status.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + statusClass(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
}

// Snapshot returns a copy of the lifecycle counters.
func (m *Metrics) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// RequestSnapshot returns a copy of the request counters keyed by
// "path|method|class".
func (m *Metrics) RequestSnapshot() map[string]int64 {
	out := make(map[string]int64)
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requests {
		out[k] = v
	}
	return out
}

// Get returns the current value of a counter.
func (m *Metrics) Get(name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
