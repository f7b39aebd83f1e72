// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decisionsTotal counts authorization decisions by object type,
	// action, and outcome.
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorize_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"object_type", "action", "decision"},
	)

	// decisionDuration tracks decision latency.
	decisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authorize_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// deniedTotal tracks denials specifically, for alerting.
	deniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorize_denied_total",
			Help: "Total number of authorization denials",
		},
		[]string{"object_type", "action"},
	)

	// policyMutationsTotal counts policy writes by operation.
	policyMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorize_policy_mutations_total",
			Help: "Total number of resource policy mutations",
		},
		[]string{"operation"},
	)
)

// RecordDecision records one authorization decision.
func RecordDecision(objectType, action string, allowed bool, duration time.Duration) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	decisionsTotal.WithLabelValues(objectType, action, decision).Inc()
	decisionDuration.Observe(duration.Seconds())
	if !allowed {
		deniedTotal.WithLabelValues(objectType, action).Inc()
	}
}

// RecordPolicyMutation records one policy store mutation.
func RecordPolicyMutation(operation string) {
	policyMutationsTotal.WithLabelValues(operation).Inc()
}
