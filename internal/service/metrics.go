package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// riskFetchTotal counts snapshots by where the data came from
	riskFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthtwin_risk_fetch_total",
		Help: "Total risk snapshots by data source",
	}, []string{"source"})

	riskFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthtwin_risk_fetch_duration_seconds",
		Help:    "Risk engine round trip duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	})

	// riskRemoteFailures counts engine failures by cause
	riskRemoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthtwin_risk_remote_failures_total",
		Help: "Total risk engine failures by reason",
	}, []string{"reason"})
)
