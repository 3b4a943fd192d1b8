package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for a pool. A nil *Metrics records nothing.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsRejected  prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsPanicked  prometheus.Counter
	QueueLength   prometheus.Gauge
	BusyWorkers   prometheus.Gauge
	JobDuration   prometheus.Histogram
	QueueWait     prometheus.Histogram
}

// NewMetrics creates pool metrics and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs accepted by the pool",
		}),
		JobsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_rejected_total",
			Help:      "Total number of jobs rejected because the pool was shutting down",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that returned normally",
		}),
		JobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_panicked_total",
			Help:      "Total number of jobs that panicked",
		}),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_length",
			Help:      "Number of jobs waiting in the queue",
		}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "busy_workers",
			Help:      "Number of workers currently running a job",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Time spent running a job",
			Buckets:   prometheus.DefBuckets,
		}),
		QueueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_wait_seconds",
			Help:      "Time a job spent queued before a worker picked it up",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.JobsSubmitted,
		m.JobsRejected,
		m.JobsCompleted,
		m.JobsPanicked,
		m.QueueLength,
		m.BusyWorkers,
		m.JobDuration,
		m.QueueWait,
	}
}

func (m *Metrics) jobSubmitted() {
	if m == nil {
		return
	}
	m.JobsSubmitted.Inc()
	m.QueueLength.Inc()
}

func (m *Metrics) jobRejected() {
	if m == nil {
		return
	}
	m.JobsRejected.Inc()
}

func (m *Metrics) jobStarted(wait time.Duration) {
	if m == nil {
		return
	}
	m.QueueLength.Dec()
	m.BusyWorkers.Inc()
	m.QueueWait.Observe(wait.Seconds())
}

func (m *Metrics) jobFinished(duration time.Duration, panicked bool) {
	if m == nil {
		return
	}
	m.BusyWorkers.Dec()
	m.JobDuration.Observe(duration.Seconds())
	if panicked {
		m.JobsPanicked.Inc()
	} else {
		m.JobsCompleted.Inc()
	}
}
