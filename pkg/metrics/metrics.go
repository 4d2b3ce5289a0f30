package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики connection pool базы данных
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.CounterVec

	// Метрики фонового sweep'а просроченных подтверждений
	SweepRunsTotal     *prometheus.CounterVec
	SweepTimedOutTotal prometheus.Counter
	SweepErrorsTotal   prometheus.Counter
}

// New создает и регистрирует набор метрик
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBOpenConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBInUseConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBIdleConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBWaitCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_wait_count_total",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "confirmation_sweep_runs_total",
			Help:        "Total number of expiry sweep cycles",
			ConstLabels: constLabels,
		}, []string{"result"}),

		SweepTimedOutTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "confirmation_sweep_timed_out_total",
			Help:        "Total number of confirmations transitioned to owner_timed_out by the sweep",
			ConstLabels: constLabels,
		}),

		SweepErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "confirmation_sweep_errors_total",
			Help:        "Total number of failed sweep cycles",
			ConstLabels: constLabels,
		}),
	}
}
