// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import "errors"

var (
	// ErrStateConflict is returned by WorkflowStore.SwapState when the
	// stored state no longer matches the expected state, typically a
	// lost claim race.
	ErrStateConflict = errors.New("workflow item state changed concurrently")

	// ErrAdminRequired is returned by Abort for non-administrators.
	ErrAdminRequired = errors.New("operation requires a system administrator")
)
