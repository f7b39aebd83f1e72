// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package embargo derives embargo lift dates from item metadata and
// drives the authorization engine to restrict or restore read access on
// an item's bundles and bitstreams.
//
// Terms interpretation is pluggable through TermsParser; the default
// parser accepts ISO-8601 dates plus a configured token meaning "embargo
// forever". Lifting an embargo clears the lift metadata field and stamps
// the date-available field; policies set at embargo time persist until
// naturally superseded.
//
// The Lifter is a long-running service (run under a supervision tree)
// that periodically lifts embargoes whose date has passed.
package embargo
