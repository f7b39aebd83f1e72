// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// Transition is the computed outcome of moving a workflow item into a
// target state: the resulting state and owner plus the side effects the
// engine must execute. Deriving it is pure; executing it does the I/O.
type Transition struct {
	From models.WorkflowState
	To   models.WorkflowState

	// Owner after the transition; nil in pool states, SUBMIT, and ARCHIVE.
	Owner *uuid.UUID

	// PoolGroup is the role group backing a pool entry, when one exists.
	PoolGroup *uuid.UUID

	// DeleteTasks clears the item's pending-claim pairings.
	DeleteTasks bool

	// CreateTasksFor lists the epersons to pool the task for.
	CreateTasksFor []uuid.UUID

	// Notify sends the pool-entry notification to CreateTasksFor.
	Notify bool

	// ConsumeSuppression clears the one-shot no-notify flag.
	ConsumeSuppression bool

	// SkipThrough marks a pool entry whose group was empty or absent:
	// the item lands directly in the claimed state and the engine must
	// immediately advance again without recording a decision.
	SkipThrough bool

	// Install promotes the item into the permanent archive.
	Install bool
}

// deriveTransition computes the transition for moving wfi into target.
// poolGroup and poolMembers describe the target step's role group when
// target is a pool state; newOwner is the claimant when target is a
// claimed state.
func deriveTransition(wfi *models.WorkflowItem, target models.WorkflowState,
	newOwner *uuid.UUID, poolGroup *uuid.UUID, poolMembers []uuid.UUID) Transition {
	tr := Transition{
		From:        wfi.State,
		To:          target,
		DeleteTasks: true,
	}

	switch {
	case target.IsPool():
		tr.PoolGroup = poolGroup
		if poolGroup == nil || len(poolMembers) == 0 {
			// Empty step: invisible to reviewers, passes through
			// untouched.
			tr.To = target.Claimed()
			tr.SkipThrough = true
			return tr
		}
		tr.CreateTasksFor = poolMembers
		tr.Notify = !wfi.NotifySuppressed
		tr.ConsumeSuppression = wfi.NotifySuppressed

	case target.IsClaimed():
		tr.Owner = newOwner

	case target == models.StateArchive:
		tr.Install = true
	}

	return tr
}
