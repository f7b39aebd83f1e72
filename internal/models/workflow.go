// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package models

import (
	"github.com/google/uuid"
)

// WorkflowState is the position of a submission in the review pipeline.
//
// The pipeline is linear: SUBMIT -> STEP1POOL -> STEP1 -> STEP2POOL ->
// STEP2 -> STEP3POOL -> STEP3 -> ARCHIVE, with claim/unclaim moving
// between each pool and its claimed state.
type WorkflowState int

const (
	StateSubmit WorkflowState = iota
	StateStep1Pool
	StateStep1
	StateStep2Pool
	StateStep2
	StateStep3Pool
	StateStep3
	StateArchive
)

// String returns the canonical state name used in events and logs.
func (s WorkflowState) String() string {
	switch s {
	case StateSubmit:
		return "SUBMIT"
	case StateStep1Pool:
		return "STEP1POOL"
	case StateStep1:
		return "STEP1"
	case StateStep2Pool:
		return "STEP2POOL"
	case StateStep2:
		return "STEP2"
	case StateStep3Pool:
		return "STEP3POOL"
	case StateStep3:
		return "STEP3"
	case StateArchive:
		return "ARCHIVE"
	default:
		return "UNKNOWN"
	}
}

// IsPool reports whether the state is one of the pooled-task states.
func (s WorkflowState) IsPool() bool {
	return s == StateStep1Pool || s == StateStep2Pool || s == StateStep3Pool
}

// IsClaimed reports whether the state is one of the claimed-task states.
func (s WorkflowState) IsClaimed() bool {
	return s == StateStep1 || s == StateStep2 || s == StateStep3
}

// Step returns the review step number (1..3) for pool and claimed states,
// and 0 for SUBMIT and ARCHIVE.
func (s WorkflowState) Step() int {
	switch s {
	case StateStep1Pool, StateStep1:
		return 1
	case StateStep2Pool, StateStep2:
		return 2
	case StateStep3Pool, StateStep3:
		return 3
	default:
		return 0
	}
}

// Claimed returns the claimed state for a pool state; for any other state
// it returns the state unchanged.
func (s WorkflowState) Claimed() WorkflowState {
	switch s {
	case StateStep1Pool:
		return StateStep1
	case StateStep2Pool:
		return StateStep2
	case StateStep3Pool:
		return StateStep3
	default:
		return s
	}
}

// Pool returns the pool state for a claimed state; for any other state it
// returns the state unchanged.
func (s WorkflowState) Pool() WorkflowState {
	switch s {
	case StateStep1:
		return StateStep1Pool
	case StateStep2:
		return StateStep2Pool
	case StateStep3:
		return StateStep3Pool
	default:
		return s
	}
}

// WorkspaceItem is a submission still being assembled by its submitter,
// before it enters the review pipeline.
type WorkspaceItem struct {
	ID         uuid.UUID `json:"id"`
	Item       uuid.UUID `json:"item"`
	Collection uuid.UUID `json:"collection"`

	MultipleTitles  bool `json:"multiple_titles"`
	PublishedBefore bool `json:"published_before"`
	MultipleFiles   bool `json:"multiple_files"`

	// StageReached tracks submission-form progress for UI resumption.
	StageReached int `json:"stage_reached,omitempty"`
}

// WorkflowItem is a submission inside the review pipeline. It exists iff
// its item is neither archived nor back in a workspace.
type WorkflowItem struct {
	ID         uuid.UUID `json:"id"`
	Item       uuid.UUID `json:"item"`
	Collection uuid.UUID `json:"collection"`

	State WorkflowState `json:"state"`

	// Owner is the eperson holding the claimed task; nil while pooled.
	Owner *uuid.UUID `json:"owner,omitempty"`

	// Submission flags carried over from the workspace item.
	MultipleTitles  bool `json:"multiple_titles"`
	PublishedBefore bool `json:"published_before"`
	MultipleFiles   bool `json:"multiple_files"`

	// NotifySuppressed suppresses exactly the first pool-entry
	// notification; the engine clears it on consumption. Used for bulk
	// imports.
	NotifySuppressed bool `json:"notify_suppressed,omitempty"`
}

// TaskListItem is one pending-claim pairing of a pooled workflow item and
// an eligible eperson.
type TaskListItem struct {
	ID           uuid.UUID `json:"id"`
	WorkflowItem uuid.UUID `json:"workflow_item"`
	EPerson      uuid.UUID `json:"eperson"`
}
