// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// AddEPersonPolicy grants eperson the action on obj.
func (e *Engine) AddEPersonPolicy(ctx context.Context, obj models.Object, action models.Action,
	eperson uuid.UUID, pt models.PolicyType) (*models.ResourcePolicy, error) {
	policy := &models.ResourcePolicy{
		ID:           uuid.New(),
		ResourceType: obj.ObjectType(),
		ResourceID:   obj.ObjectID(),
		Action:       action,
		EPerson:      &eperson,
		Type:         pt,
	}
	return policy, e.CreateResourcePolicy(ctx, obj, policy)
}

// AddGroupPolicy grants the group the action on obj.
func (e *Engine) AddGroupPolicy(ctx context.Context, obj models.Object, action models.Action,
	group uuid.UUID, pt models.PolicyType) (*models.ResourcePolicy, error) {
	policy := &models.ResourcePolicy{
		ID:           uuid.New(),
		ResourceType: obj.ObjectType(),
		ResourceID:   obj.ObjectID(),
		Action:       action,
		Group:        &group,
		Type:         pt,
	}
	return policy, e.CreateResourcePolicy(ctx, obj, policy)
}

// CreateResourcePolicy validates and persists a policy, touching the
// target object's last-modified marker.
func (e *Engine) CreateResourcePolicy(ctx context.Context, obj models.Object,
	policy *models.ResourcePolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	if err := e.policies.Save(ctx, policy); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	RecordPolicyMutation("create")
	return e.touch(ctx, obj)
}

// CreateOrModifyPolicy upserts a policy keyed by (obj, group, action).
// A matching policy (excluding policy itself when updating) is reused and
// retagged CUSTOM; otherwise a fresh one is created. The principal is
// overwritten unconditionally. A non-nil embargoDate sets the start date
// and leaves the end date alone; a nil embargoDate clears both dates, so
// the same primitive expresses "embargo until X" and "open access".
func (e *Engine) CreateOrModifyPolicy(ctx context.Context, policy *models.ResourcePolicy,
	obj models.Object, group, eperson *uuid.UUID, embargoDate *time.Time,
	action models.Action, reason string) (*models.ResourcePolicy, error) {
	exclude := uuid.Nil
	if policy != nil {
		exclude = policy.ID
	}

	if group != nil {
		match, err := e.policies.FindMatching(ctx, obj.ObjectType(), obj.ObjectID(),
			*group, action, exclude)
		if err != nil {
			return nil, fmt.Errorf("find matching policy: %w", err)
		}
		if match != nil {
			policy = match
		}
	}

	if policy == nil {
		policy = &models.ResourcePolicy{ID: uuid.New()}
	}

	policy.ResourceType = obj.ObjectType()
	policy.ResourceID = obj.ObjectID()
	policy.Action = action
	policy.Type = models.PolicyTypeCustom
	policy.Description = reason
	policy.Group = group
	policy.EPerson = eperson

	if embargoDate != nil {
		policy.StartDate = embargoDate
	} else {
		policy.StartDate = nil
		policy.EndDate = nil
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := e.policies.Save(ctx, policy); err != nil {
		return nil, fmt.Errorf("save policy: %w", err)
	}
	RecordPolicyMutation("upsert")
	return policy, e.touch(ctx, obj)
}

// AuthorizedGroups returns the distinct groups holding a date-valid
// policy for action on obj.
func (e *Engine) AuthorizedGroups(ctx context.Context, obj models.Object,
	action models.Action) ([]uuid.UUID, error) {
	policies, err := e.policies.FindByAction(ctx, obj, action)
	if err != nil {
		return nil, fmt.Errorf("find policies: %w", err)
	}

	now := e.now()
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, p := range policies {
		if p.Group == nil || !p.DateValid(now) {
			continue
		}
		if _, dup := seen[*p.Group]; dup {
			continue
		}
		seen[*p.Group] = struct{}{}
		out = append(out, *p.Group)
	}
	return out, nil
}

// GenerateAutomaticPolicies derives READ policies on obj from the
// audience the owning collection grants DEFAULT_ITEM_READ to, date-boxed
// by embargoDate. It acts when an embargo is present, and always for
// bitstreams, so a bitstream's default read policies are normalized even
// without an embargo. Existing CUSTOM policies on obj are replaced. When
// the anonymous group is among the authorized groups it alone receives
// the policy; embargo restricts the audience that would otherwise have
// had open access, not a hardcoded set.
func (e *Engine) GenerateAutomaticPolicies(ctx context.Context, embargoDate *time.Time,
	reason string, obj models.Object, owningCollection *models.Collection) error {
	if embargoDate == nil && obj.ObjectType() != models.ResourceBitstream {
		return nil
	}

	authorized, err := e.AuthorizedGroups(ctx, owningCollection, models.ActionDefaultItemRead)
	if err != nil {
		return err
	}

	if err := e.policies.DeleteByObjectAndType(ctx, obj, models.PolicyTypeCustom); err != nil {
		return fmt.Errorf("strip custom policies: %w", err)
	}

	anon, err := e.groups.FindByName(ctx, models.GroupAnonymous)
	if err != nil {
		return fmt.Errorf("resolve anonymous group: %w", err)
	}

	targets := authorized
	if anon != nil {
		for _, g := range authorized {
			if g == anon.ID {
				targets = []uuid.UUID{anon.ID}
				break
			}
		}
	}

	for _, g := range targets {
		group := g
		policy := &models.ResourcePolicy{
			ID:           uuid.New(),
			ResourceType: obj.ObjectType(),
			ResourceID:   obj.ObjectID(),
			Action:       models.ActionRead,
			Group:        &group,
			StartDate:    embargoDate,
			Description:  reason,
			Type:         models.PolicyTypeCustom,
		}
		if err := e.policies.Save(ctx, policy); err != nil {
			return fmt.Errorf("save generated policy: %w", err)
		}
		RecordPolicyMutation("generate")
	}

	return e.touch(ctx, obj)
}

// InheritDefaultPolicies seeds a newly archived item's READ policies from
// the owning collection's DEFAULT_ITEM_READ audience, and each of its
// bitstreams' from DEFAULT_BITSTREAM_READ.
func (e *Engine) InheritDefaultPolicies(ctx context.Context, collection *models.Collection,
	item *models.Item) error {
	itemGroups, err := e.AuthorizedGroups(ctx, collection, models.ActionDefaultItemRead)
	if err != nil {
		return err
	}
	for _, g := range itemGroups {
		group := g
		policy := &models.ResourcePolicy{
			ID:           uuid.New(),
			ResourceType: models.ResourceItem,
			ResourceID:   item.ID,
			Action:       models.ActionRead,
			Group:        &group,
			Type:         models.PolicyTypeInherited,
		}
		if err := e.policies.Save(ctx, policy); err != nil {
			return fmt.Errorf("save inherited item policy: %w", err)
		}
	}

	bsGroups, err := e.AuthorizedGroups(ctx, collection, models.ActionDefaultBitstreamRead)
	if err != nil {
		return err
	}
	for bi := range item.Bundles {
		bundle := &item.Bundles[bi]
		for _, bs := range bundle.Bitstreams {
			for _, g := range bsGroups {
				group := g
				policy := &models.ResourcePolicy{
					ID:           uuid.New(),
					ResourceType: models.ResourceBitstream,
					ResourceID:   bs.ID,
					Action:       models.ActionRead,
					Group:        &group,
					Type:         models.PolicyTypeInherited,
				}
				if err := e.policies.Save(ctx, policy); err != nil {
					return fmt.Errorf("save inherited bitstream policy: %w", err)
				}
			}
		}
	}

	RecordPolicyMutation("inherit")
	return e.touch(ctx, item)
}

// IsAnIdenticalPolicyAlreadyInPlace reports whether a date-independent
// (obj, group, action) policy other than exclude already exists. Used to
// avoid duplicate policies before insert.
func (e *Engine) IsAnIdenticalPolicyAlreadyInPlace(ctx context.Context, obj models.Object,
	group uuid.UUID, action models.Action, exclude uuid.UUID) (bool, error) {
	match, err := e.policies.FindMatching(ctx, obj.ObjectType(), obj.ObjectID(), group, action, exclude)
	if err != nil {
		return false, fmt.Errorf("find matching policy: %w", err)
	}
	return match != nil, nil
}

// RemoveAllPolicies deletes every policy on obj. No authorization check
// is performed; callers are responsible.
func (e *Engine) RemoveAllPolicies(ctx context.Context, obj models.Object) error {
	if err := e.policies.DeleteByObject(ctx, obj); err != nil {
		return fmt.Errorf("delete policies: %w", err)
	}
	RecordPolicyMutation("remove_all")
	return e.touch(ctx, obj)
}

// RemovePoliciesByType deletes obj's policies of one provenance type.
func (e *Engine) RemovePoliciesByType(ctx context.Context, obj models.Object,
	pt models.PolicyType) error {
	if err := e.policies.DeleteByObjectAndType(ctx, obj, pt); err != nil {
		return fmt.Errorf("delete policies by type: %w", err)
	}
	RecordPolicyMutation("remove_type")
	return e.touch(ctx, obj)
}

// RemovePoliciesByAction deletes obj's policies for one action.
func (e *Engine) RemovePoliciesByAction(ctx context.Context, obj models.Object,
	action models.Action) error {
	if err := e.policies.DeleteByObjectAndAction(ctx, obj, action); err != nil {
		return fmt.Errorf("delete policies by action: %w", err)
	}
	RecordPolicyMutation("remove_action")
	return e.touch(ctx, obj)
}

// RemoveGroupPolicies deletes every policy granted to the group across
// all objects. There is no single owning object, so no last-modified
// marker is touched.
func (e *Engine) RemoveGroupPolicies(ctx context.Context, group uuid.UUID) error {
	if err := e.policies.DeleteByGroup(ctx, group); err != nil {
		return fmt.Errorf("delete policies by group: %w", err)
	}
	RecordPolicyMutation("remove_group")
	return nil
}

// RemoveObjectGroupPolicies deletes the group's policies on obj.
func (e *Engine) RemoveObjectGroupPolicies(ctx context.Context, obj models.Object,
	group uuid.UUID) error {
	if err := e.policies.DeleteByObjectAndGroup(ctx, obj, group); err != nil {
		return fmt.Errorf("delete object group policies: %w", err)
	}
	RecordPolicyMutation("remove_object_group")
	return e.touch(ctx, obj)
}

// RemoveEPersonPolicies deletes the eperson's policies on obj.
func (e *Engine) RemoveEPersonPolicies(ctx context.Context, obj models.Object,
	eperson uuid.UUID) error {
	if err := e.policies.DeleteByObjectAndEPerson(ctx, obj, eperson); err != nil {
		return fmt.Errorf("delete eperson policies: %w", err)
	}
	RecordPolicyMutation("remove_eperson")
	return e.touch(ctx, obj)
}

// PoliciesFor returns all policies on obj, date-valid or not.
func (e *Engine) PoliciesFor(ctx context.Context, obj models.Object) ([]*models.ResourcePolicy, error) {
	return e.policies.Find(ctx, obj)
}
