// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

/*
Package supervisor provides process supervision for Athenaeum using
suture v4.

Background services are organized into two layers for failure isolation:

	RootSupervisor ("athenaeum")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── embargo lifter
	└── MessagingSupervisor ("messaging-layer")
	    └── workflow event subscribers

A crashing lifter scan never disturbs event delivery, and vice versa.
Crashed services restart with exponential backoff; supervisor events are
logged through the slog adapter in internal/logging.

Services implement suture.Service. Returning nil stops a service for
good; returning an error schedules a restart; a canceled context means
shutdown was requested and the service should return promptly.
*/
package supervisor
