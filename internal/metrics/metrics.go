package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BorrowsTotal counts successful borrowing operations by action.
	BorrowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borrows_total",
			Help: "Total successful borrow/return operations",
		},
		[]string{"action"}, // borrow|return
	)
	BorrowsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "borrows_failed_total",
			Help: "Total failed borrow/return operations",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(BorrowsTotal)
	prometheus.MustRegister(BorrowsFailed)
	prometheus.MustRegister(WorkerQueueDepth)
}
