// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package embargo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// memItems is an in-memory ItemStore.
type memItems struct {
	mu          sync.Mutex
	items       map[uuid.UUID]*models.Item
	collections map[uuid.UUID]*models.Collection
	updates     int
}

func newMemItems() *memItems {
	return &memItems{
		items:       make(map[uuid.UUID]*models.Item),
		collections: make(map[uuid.UUID]*models.Collection),
	}
}

func (s *memItems) addCollection(c *models.Collection) { s.collections[c.ID] = c }

func (s *memItems) addItem(i *models.Item) { s.items[i.ID] = i }

func (s *memItems) Update(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.updates++
	return nil
}

func (s *memItems) Collection(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[id], nil
}

func (s *memItems) FindLiftable(_ context.Context, liftField string, cutoff time.Time) ([]*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Item
	for _, item := range s.items {
		recorded := item.FirstMetadata(liftField)
		if recorded == "" {
			continue
		}
		lift, err := time.Parse("2006-01-02", recorded)
		if err != nil {
			continue
		}
		if !lift.After(cutoff) {
			out = append(out, item)
		}
	}
	return out, nil
}

// fakePolicies records policy generation calls and serves a flat policy
// list for audits. Generated policies replace prior CUSTOM policies on
// the same object, mirroring the real engine.
type fakePolicies struct {
	mu       sync.Mutex
	policies []*models.ResourcePolicy
	genCalls []genCall
}

type genCall struct {
	objType models.ResourceType
	objID   uuid.UUID
	objName string
	lift    *time.Time
	reason  string
}

func (f *fakePolicies) GenerateAutomaticPolicies(_ context.Context, embargoDate *time.Time,
	reason string, obj models.Object, _ *models.Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.genCalls = append(f.genCalls, genCall{
		objType: obj.ObjectType(),
		objID:   obj.ObjectID(),
		objName: obj.ObjectName(),
		lift:    embargoDate,
		reason:  reason,
	})

	kept := f.policies[:0]
	for _, p := range f.policies {
		if !(p.AppliesTo(obj) && p.Type == models.PolicyTypeCustom) {
			kept = append(kept, p)
		}
	}
	f.policies = kept

	group := uuid.New()
	f.policies = append(f.policies, &models.ResourcePolicy{
		ID:           uuid.New(),
		ResourceType: obj.ObjectType(),
		ResourceID:   obj.ObjectID(),
		Action:       models.ActionRead,
		Group:        &group,
		StartDate:    embargoDate,
		Description:  reason,
		Type:         models.PolicyTypeCustom,
	})
	return nil
}

func (f *fakePolicies) PoliciesFor(_ context.Context, obj models.Object) ([]*models.ResourcePolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ResourcePolicy
	for _, p := range f.policies {
		if p.AppliesTo(obj) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicies) addPolicy(p *models.ResourcePolicy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies = append(f.policies, p)
}

func (f *fakePolicies) callsFor(objID uuid.UUID) []genCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []genCall
	for _, c := range f.genCalls {
		if c.objID == objID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakePolicies) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.genCalls)
}
