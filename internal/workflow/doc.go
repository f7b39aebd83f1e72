// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package workflow drives a submitted item through the review pipeline:
//
//	SUBMIT -> STEP1POOL -> STEP1 -> STEP2POOL -> STEP2 -> STEP3POOL -> STEP3 -> ARCHIVE
//
// Each pool state holds a task claimable by one member of the
// collection's role group for that step (reviewers, approvers, editors).
// A step whose group is empty or absent is skipped straight through.
// Rejection and abort convert the workflow item back into a workspace
// item; reaching ARCHIVE hands the item to the archival installer and
// applies any embargo found in its metadata.
//
// Transitions are derived as pure data (see deriveTransition) and then
// executed: task-list changes, role-group policy grants, notifications,
// and a domain event on the transitions topic. Claim and unclaim
// operations from an unsupported state are logged anomalies, not errors.
package workflow
