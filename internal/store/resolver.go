// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package store

import (
	"context"
	"errors"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// Resolver answers containment questions for the authorization engine:
// which object's ADMIN policies extend to a target, and how to walk up
// the community hierarchy. Backed by the item store's owner_item index.
type Resolver struct {
	items *BadgerItemStore
}

// NewResolver creates a resolver over the item store.
func NewResolver(items *BadgerItemStore) *Resolver {
	return &Resolver{items: items}
}

// AdminObject returns the owning item for ADD and REMOVE on bundles and
// bitstreams, so item administrators can manage an item's files without
// explicit per-bundle grants. Every other pairing resolves to nil.
func (r *Resolver) AdminObject(ctx context.Context, obj models.Object,
	action models.Action) (models.Object, error) {
	if action != models.ActionAdd && action != models.ActionRemove {
		return nil, nil
	}
	switch obj.ObjectType() {
	case models.ResourceBundle, models.ResourceBitstream:
		item, err := r.items.OwningItem(ctx, obj.ObjectID())
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		return item, err
	default:
		return nil, nil
	}
}

// ParentObject walks one step up the containment hierarchy. Bundles and
// bitstreams resolve to their owning item; the walk ends with nil at a
// root community. Missing links end the walk rather than failing it.
func (r *Resolver) ParentObject(ctx context.Context, obj models.Object) (models.Object, error) {
	switch o := obj.(type) {
	case *models.Bundle, *models.Bitstream:
		item, err := r.items.OwningItem(ctx, obj.ObjectID())
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return item, nil
	case *models.Item:
		c, err := r.items.Collection(ctx, o.OwningCollection)
		if errors.Is(err, ErrCollectionNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	case *models.Collection:
		cm, err := r.items.Community(ctx, o.Community)
		if errors.Is(err, ErrCommunityNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return cm, nil
	case *models.Community:
		if o.Parent == nil {
			return nil, nil
		}
		cm, err := r.items.Community(ctx, *o.Parent)
		if errors.Is(err, ErrCommunityNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return cm, nil
	default:
		return nil, nil
	}
}
