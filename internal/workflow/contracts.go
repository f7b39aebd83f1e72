// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// WorkflowStore persists workflow items. SwapState is the serialization
// point: it persists the mutated item only if the stored state still
// equals expected, failing with ErrStateConflict otherwise, so two
// concurrent claims on the same pooled item cannot both succeed.
type WorkflowStore interface {
	Save(ctx context.Context, wfi *models.WorkflowItem) error
	Find(ctx context.Context, id uuid.UUID) (*models.WorkflowItem, error)
	SwapState(ctx context.Context, wfi *models.WorkflowItem, expected models.WorkflowState) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskListStore persists pending-claim pairings. CreateAll and DeleteAll
// are atomic relative to concurrent claims on the same item.
type TaskListStore interface {
	CreateAll(ctx context.Context, workflowItem uuid.UUID, epersons []uuid.UUID) ([]*models.TaskListItem, error)
	DeleteAll(ctx context.Context, workflowItem uuid.UUID) error
	FindByWorkflowItem(ctx context.Context, workflowItem uuid.UUID) ([]*models.TaskListItem, error)
	FindByEPerson(ctx context.Context, eperson uuid.UUID) ([]*models.TaskListItem, error)
}

// WorkspaceStore persists pre-submission workspace items; reject and
// abort return submissions there.
type WorkspaceStore interface {
	Save(ctx context.Context, wsi *models.WorkspaceItem) error
	Find(ctx context.Context, id uuid.UUID) (*models.WorkspaceItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemStore resolves and updates the entities the engine touches.
type ItemStore interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Collection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
}

/// Directory resolves people: task notifications go to the transitive
// members of a step's role group.
type Directory interface {
	EPerson(ctx context.Context, id uuid.UUID) (*models.EPerson, error)
	AllMembers(ctx context.Context, group uuid.UUID) ([]*models.EPerson, error)
}

// PolicyService is the slice of the authorization engine the workflow
// needs: admin checks for abort, role-group policy grants at step
// boundaries, and default-policy seeding at archive time.
type PolicyService interface {
	IsAdmin(ctx context.Context, c *models.Context) (bool, error)
	AddGroupPolicy(ctx context.Context, obj models.Object, action models.Action,
		group uuid.UUID, pt models.PolicyType) (*models.ResourcePolicy, error)
	RemovePoliciesByType(ctx context.Context, obj models.Object, pt models.PolicyType) error
	InheritDefaultPolicies(ctx context.Context, collection *models.Collection, item *models.Item) error
}

// Installer promotes an item into the permanent archive.
type Installer interface {
	InstallItem(ctx context.Context, c *models.Context, wfi *models.WorkflowItem) (*models.Item, error)
	BitstreamProvenance(ctx context.Context, item *models.Item) (string, error)
}

// Notifier delivers one notification. Failures are logged by the
// dispatcher and never propagate into workflow transitions.
type Notifier interface {
	Send(ctx context.Context, template string, recipient *models.EPerson, args map[string]string) error
}

// Notification templates.
const (
	TemplateTask    = "submit_task"
	TemplateArchive = "submit_archive"
	TemplateReject  = "submit_reject"
)

// CurationHook is consulted before a workflow item advances. DoCuration
// returning false halts the advance without changing state (a curation
// task was queued or the item was rejected by curation).
type CurationHook interface {
	NeedsCuration(ctx context.Context, c *models.Context, wfi *models.WorkflowItem) (bool, error)
	DoCuration(ctx context.Context, c *models.Context, wfi *models.WorkflowItem) (bool, error)
}

// EmbargoSetter applies any embargo found in an item's metadata; the
// engine calls it when an item reaches the archive.
type EmbargoSetter interface {
	SetEmbargo(ctx context.Context, item *models.Item) error
}
