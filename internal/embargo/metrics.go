// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package embargo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	embargoesSet = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embargo_set_total",
			Help: "Total number of embargoes applied to items",
		},
	)

	embargoesLifted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embargo_lifted_total",
			Help: "Total number of embargoes lifted",
		},
	)

	checkViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embargo_check_violations_total",
			Help: "Total READ policies found in place during embargo audits",
		},
	)

	lifterScans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embargo_lifter_scans_total",
			Help: "Total scans performed by the embargo lifter",
		},
	)

	lifterErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embargo_lifter_errors_total",
			Help: "Total errors encountered by the embargo lifter",
		},
	)
)
