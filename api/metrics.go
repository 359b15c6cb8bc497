/*
metrics.go - Prometheus metrics for the debt engine

PURPOSE:
  Counters and gauges exposed at /metrics. The engine itself stays free of
  metrics plumbing; handlers record outcomes after each call.

SEE ALSO:
  - server.go: mounts the /metrics endpoint
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AllocationsTotal counts work-record approvals that produced at least one
// deduction.
var AllocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtengine",
	Subsystem: "ledger",
	Name:      "allocations_total",
	Help:      "Total work-record approvals that paid down at least one debt.",
})

// AllocatedMinutesTotal counts minutes applied to debts across all tenants.
var AllocatedMinutesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtengine",
	Subsystem: "ledger",
	Name:      "allocated_minutes_total",
	Help:      "Total minutes deducted from debts.",
})

// ReversalsTotal counts work-record reversals.
var ReversalsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtengine",
	Subsystem: "ledger",
	Name:      "reversals_total",
	Help:      "Total work-record reversals.",
})

// ReviewRunsTotal counts monthly review runs by outcome.
var ReviewRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtengine",
	Subsystem: "review",
	Name:      "runs_total",
	Help:      "Total monthly review runs by outcome.",
}, []string{"outcome"})
