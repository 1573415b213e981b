package blob

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	blobCountCacheTTL    = time.Hour
	blobCountQueryBudget = 5 * time.Second
)

// managerMetrics carries the four operation timers and the blob-count
// gauge. The gauge re-queries the store at most once per cache interval
// since a full count can be expensive on large collections.
type managerMetrics struct {
	opDurations *prometheus.HistogramVec

	countMu      sync.Mutex
	countValue   float64
	countFetched time.Time
}

func newManagerMetrics(reg prometheus.Registerer, count func(context.Context) (int64, error)) *managerMetrics {
	m := &managerMetrics{
		opDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "jsonblob",
				Name:      "blob_operation_duration_seconds",
				Help:      "Time spent executing blob manager operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "jsonblob",
			Name:      "blob_count",
			Help:      "Number of stored blobs, refreshed at most hourly.",
		},
		m.cachedCount(count),
	)

	if reg != nil {
		reg.MustRegister(m.opDurations, gauge)
	}
	return m
}

// observe is used as `defer m.metrics.observe(op, time.Now())`; the start
// time is captured when the defer is evaluated.
func (m *managerMetrics) observe(operation string, start time.Time) {
	m.opDurations.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *managerMetrics) cachedCount(count func(context.Context) (int64, error)) func() float64 {
	return func() float64 {
		m.countMu.Lock()
		defer m.countMu.Unlock()

		if !m.countFetched.IsZero() && time.Since(m.countFetched) < blobCountCacheTTL {
			return m.countValue
		}

		ctx, cancel := context.WithTimeout(context.Background(), blobCountQueryBudget)
		defer cancel()

		n, err := count(ctx)
		if err != nil {
			// Keep serving the stale value; the next scrape retries.
			return m.countValue
		}
		m.countValue = float64(n)
		m.countFetched = time.Now()
		return m.countValue
	}
}
