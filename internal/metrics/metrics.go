// Package metrics exposes index maintenance counters to prometheus and as a
// JSON snapshot for the admin API.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "column_index"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// UpdateMetricsData is a point in time copy of the update counters.
type UpdateMetricsData struct {
	Updates           int64            `json:"updates"`
	UpdatesFailed     int64            `json:"updates_failed"`
	PostingsAdded     int64            `json:"postings_added"`
	PostingsRemoved   int64            `json:"postings_removed"`
	SourceChanges     int64            `json:"source_changes"`
	JobsCompleted     int64            `json:"jobs_completed"`
	JobsFailed        int64            `json:"jobs_failed"`
	TotalUpdateTime   time.Duration    `json:"total_update_time_ns"`
	AverageUpdateTime time.Duration    `json:"average_update_time_ns"`
	UpdatesByIndex    map[string]int64 `json:"updates_by_index"`
	LastUpdated       time.Time        `json:"last_updated"`
}

// Metrics owns a prometheus registry so that several databases (or tests)
// in one process do not collide. All methods accept a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	updates        *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	postings       *prometheus.CounterVec
	sourceChanges  *prometheus.CounterVec
	jobs           *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec

	mu   sync.RWMutex
	data UpdateMetricsData
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index_column",
			Name:      "updates",
		}, []string{"index", "result"}),
		updateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "index_column",
			Name:      "update_duration_seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"index"}),
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index_column",
			Name:      "postings",
		}, []string{"index", "op"}),
		sourceChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source_registry",
			Name:      "source_changes",
		}, []string{"index"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "finished",
		}, []string{"type", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		data: UpdateMetricsData{
			UpdatesByIndex: make(map[string]int64),
			LastUpdated:    time.Now(),
		},
	}

	m.registry.MustRegister(
		m.updates,
		m.updateDuration,
		m.postings,
		m.sourceChanges,
		m.jobs,
		m.jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordUpdate records one index update: how many postings it removed and
// added, how long it took and whether it failed.
func (m *Metrics) RecordUpdate(index string, removed, added int, took time.Duration, err error) {
	if m == nil {
		return
	}

	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.updates.WithLabelValues(index, result).Inc()
	m.updateDuration.WithLabelValues(index).Observe(took.Seconds())
	if err == nil {
		m.postings.WithLabelValues(index, "remove").Add(float64(removed))
		m.postings.WithLabelValues(index, "add").Add(float64(added))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data.Updates++
	m.data.UpdatesByIndex[index]++
	if err != nil {
		m.data.UpdatesFailed++
	} else {
		m.data.PostingsRemoved += int64(removed)
		m.data.PostingsAdded += int64(added)
	}
	m.data.TotalUpdateTime += took
	m.data.AverageUpdateTime = m.data.TotalUpdateTime / time.Duration(m.data.Updates)
	m.data.LastUpdated = time.Now()
}

// RecordSourceChange counts a successful source list replacement.
func (m *Metrics) RecordSourceChange(index string) {
	if m == nil {
		return
	}
	m.sourceChanges.WithLabelValues(index).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.SourceChanges++
	m.data.LastUpdated = time.Now()
}

// RecordJob counts a finished background job.
func (m *Metrics) RecordJob(jobType, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, status).Inc()
	m.jobDuration.WithLabelValues(jobType).Observe(took.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if status == ResultOK {
		m.data.JobsCompleted++
	} else {
		m.data.JobsFailed++
	}
	m.data.LastUpdated = time.Now()
}

// Snapshot returns a copy of the counters.
func (m *Metrics) Snapshot() UpdateMetricsData {
	if m == nil {
		return UpdateMetricsData{UpdatesByIndex: map[string]int64{}}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.data
	out.UpdatesByIndex = make(map[string]int64, len(m.data.UpdatesByIndex))
	for k, v := range m.data.UpdatesByIndex {
		out.UpdatesByIndex[k] = v
	}
	return out
}
