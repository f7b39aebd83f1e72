// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"context"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// PolicyStore is the durable storage contract for resource policies.
// Find methods return matches in stable order; a miss is an empty slice,
// not an error. FindMatching returns nil when no policy matches.
type PolicyStore interface {
	Find(ctx context.Context, obj models.Object) ([]*models.ResourcePolicy, error)
	FindByAction(ctx context.Context, obj models.Object, action models.Action) ([]*models.ResourcePolicy, error)
	FindByType(ctx context.Context, obj models.Object, pt models.PolicyType) ([]*models.ResourcePolicy, error)
	FindByGroup(ctx context.Context, group uuid.UUID) ([]*models.ResourcePolicy, error)

	// FindMatching locates a policy on (resourceType, resourceID) granting
	// action to group, ignoring dates, excluding the policy with id
	// exclude (pass uuid.Nil to exclude none).
	FindMatching(ctx context.Context, rt models.ResourceType, rid, group uuid.UUID,
		action models.Action, exclude uuid.UUID) (*models.ResourcePolicy, error)

	Save(ctx context.Context, policy *models.ResourcePolicy) error
	Delete(ctx context.Context, id uuid.UUID) error

	DeleteByObject(ctx context.Context, obj models.Object) error
	DeleteByObjectAndType(ctx context.Context, obj models.Object, pt models.PolicyType) error
	DeleteByObjectAndAction(ctx context.Context, obj models.Object, action models.Action) error
	DeleteByGroup(ctx context.Context, group uuid.UUID) error
	DeleteByObjectAndGroup(ctx context.Context, obj models.Object, group uuid.UUID) error
	DeleteByObjectAndEPerson(ctx context.Context, obj models.Object, eperson uuid.UUID) error
}

// GroupMembership answers transitive group membership questions for the
// acting principal. Implementations must treat every request, anonymous
// included, as a member of the Anonymous group.
type GroupMembership interface {
	// IsMember reports whether the context's current user is a transitive
	// member of the group.
	IsMember(ctx context.Context, c *models.Context, group uuid.UUID) (bool, error)

	// IsMemberOfName is IsMember by group name; unknown names are simply
	// non-memberships.
	IsMemberOfName(ctx context.Context, c *models.Context, name string) (bool, error)

	// AllMembers returns the transitive eperson membership of a group.
	AllMembers(ctx context.Context, group uuid.UUID) ([]*models.EPerson, error)

	// FindByName resolves a group by name; nil when absent.
	FindByName(ctx context.Context, name string) (*models.Group, error)
}

// AdminObjectResolver supplies the containment hierarchy for the
// inherited-admin walk.
type AdminObjectResolver interface {
	// AdminObject returns the object whose ADMIN policies should
	// additionally be consulted when authorizing action on obj (for
	// example a bitstream's owning item for ADD/REMOVE), or nil when no
	// inheritance applies.
	AdminObject(ctx context.Context, obj models.Object, action models.Action) (models.Object, error)

	// ParentObject returns obj's parent in the containment hierarchy
	// (item -> collection -> community -> root), or nil at the top.
	ParentObject(ctx context.Context, obj models.Object) (models.Object, error)
}

// ObjectUpdater receives the last-modified side effect policy mutations
// must trigger on their target object.
type ObjectUpdater interface {
	TouchLastModified(ctx context.Context, obj models.Object) error
}
