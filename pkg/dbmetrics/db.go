package dbmetrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/pkg/metrics"
)

const defaultPoolStatsInterval = 10 * time.Second

// DBExecutor интерфейс исполнителя запросов
// Реализуется *sql.DB, *sql.Tx и *dbmetrics.DB
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor интерфейс транзакции
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

// DB обёртка над *sql.DB с экспортом метрик connection pool
type DB struct {
	*sql.DB
}

// Wrap оборачивает *sql.DB без сбора метрик
func Wrap(db *sql.DB) *DB {
	return &DB{DB: db}
}

// WrapWithDefault оборачивает *sql.DB и запускает периодический сбор
// метрик connection pool. Сбор останавливается закрытием stop.
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, dbName string, stop <-chan struct{}) *DB {
	wrapped := &DB{DB: db}
	go wrapped.collectPoolStats(m, dbName, defaultPoolStatsInterval, stop)
	return wrapped
}

// BeginTx начинает транзакцию, возвращая её как TxExecutor
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	return d.DB.BeginTx(ctx, opts)
}

func (d *DB) collectPoolStats(m *metrics.Metrics, dbName string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastWaitCount int64

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := d.DB.Stats()
			m.DBOpenConnections.WithLabelValues(dbName).Set(float64(stats.OpenConnections))
			m.DBInUseConnections.WithLabelValues(dbName).Set(float64(stats.InUse))
			m.DBIdleConnections.WithLabelValues(dbName).Set(float64(stats.Idle))

			if delta := stats.WaitCount - lastWaitCount; delta > 0 {
				m.DBWaitCount.WithLabelValues(dbName).Add(float64(delta))
			}
			lastWaitCount = stats.WaitCount
		}
	}
}
