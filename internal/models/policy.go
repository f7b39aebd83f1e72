// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Action is a permission an eperson or group may hold on an object.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionDelete
	ActionAdd
	ActionRemove
	ActionAdmin

	// ActionDefaultItemRead and ActionDefaultBitstreamRead are recorded on
	// collections and seed the READ policies of newly archived items and
	// their bitstreams.
	ActionDefaultItemRead
	ActionDefaultBitstreamRead
)

// ActionNone is a sentinel used only in error messages, never in policies.
const ActionNone Action = -1

// String returns the canonical uppercase action name.
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "READ"
	case ActionWrite:
		return "WRITE"
	case ActionDelete:
		return "DELETE"
	case ActionAdd:
		return "ADD"
	case ActionRemove:
		return "REMOVE"
	case ActionAdmin:
		return "ADMIN"
	case ActionDefaultItemRead:
		return "DEFAULT_ITEM_READ"
	case ActionDefaultBitstreamRead:
		return "DEFAULT_BITSTREAM_READ"
	case ActionNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// PolicyType records how a policy came to exist, so bulk operations can
// target one provenance class without disturbing the others.
type PolicyType string

const (
	PolicyTypeSubmission PolicyType = "TYPE_SUBMISSION"
	PolicyTypeWorkflow   PolicyType = "TYPE_WORKFLOW"
	PolicyTypeCustom     PolicyType = "TYPE_CUSTOM"
	PolicyTypeInherited  PolicyType = "TYPE_INHERITED"
)

// ErrNoPrincipal is returned when a policy is created with neither an
// eperson nor a group. This is a programmer error, not a user error.
var ErrNoPrincipal = errors.New("resource policy requires an eperson or group principal")

// ResourcePolicy grants exactly one principal (eperson XOR group) one
// action on one object, optionally time-boxed by [StartDate, EndDate].
type ResourcePolicy struct {
	ID           uuid.UUID    `json:"id"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   uuid.UUID    `json:"resource_id"`
	Action       Action       `json:"action"`

	// Exactly one of EPerson and Group is non-nil.
	EPerson *uuid.UUID `json:"eperson,omitempty"`
	Group   *uuid.UUID `json:"group,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        PolicyType `json:"type,omitempty"`
}

// Validate checks the principal invariant.
func (p *ResourcePolicy) Validate() error {
	if p.EPerson == nil && p.Group == nil {
		return ErrNoPrincipal
	}
	return nil
}

// DateValid reports whether the policy is in force at the given instant.
// A nil StartDate/EndDate pair means always valid.
func (p *ResourcePolicy) DateValid(now time.Time) bool {
	if p.StartDate != nil && now.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return false
	}
	return true
}

// AppliesTo reports whether the policy targets the given object.
func (p *ResourcePolicy) AppliesTo(obj Object) bool {
	return p.ResourceType == obj.ObjectType() && p.ResourceID == obj.ObjectID()
}
