// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total workflow state transitions",
		},
		[]string{"from", "to"},
	)

	stateViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_state_violations_total",
			Help: "Total operations attempted from an unsupported state",
		},
		[]string{"operation", "state"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_notifications_total",
			Help: "Total workflow notifications by template and outcome",
		},
		[]string{"template", "status"},
	)

	archivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_archived_total",
			Help: "Total items promoted into the permanent archive",
		},
	)

	rejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_rejected_total",
			Help: "Total submissions rejected back to the workspace",
		},
	)

	abortedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_aborted_total",
			Help: "Total workflows aborted by administrators",
		},
	)

	eventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_events_published_total",
			Help: "Total transition events published",
		},
	)

	eventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_event_publish_errors_total",
			Help: "Total transition event publish failures",
		},
	)
)
