package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory request counters, exposed on the admin
// dashboard's status screen.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	authFailures int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	if status == 401 {
		m.authFailures++
	}
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot captures current counter values for reporting.
type Snapshot struct {
	Requests     map[string]int64 `json:"requests"`
	Errors       map[string]int64 `json:"errors"`
	AuthFailures int64            `json:"auth_failures"`
}

// Report returns a copy of all counters.
func (m *Metrics) Report() Snapshot {
	snap := Snapshot{
		Requests: make(map[string]int64),
		Errors:   make(map[string]int64),
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	snap.AuthFailures = m.authFailures
	return snap
}
