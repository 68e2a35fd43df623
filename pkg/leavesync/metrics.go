package leavesync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absence_bridge_sync_runs_total",
		Help: "Sync runs by kind and result",
	}, []string{"kind", "result"})

	metricRecordsSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absence_bridge_records_synced_total",
		Help: "Records pushed through completed bulk-replace sessions",
	})

	metricNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absence_bridge_notifications_total",
		Help: "Decision operations invoked downstream",
	}, []string{"decision"})

	metricRunErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absence_bridge_run_errors_total",
		Help: "Non-fatal errors counted across runs",
	})
)
