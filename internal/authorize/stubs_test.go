// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// memPolicyStore is an in-memory PolicyStore for engine tests.
type memPolicyStore struct {
	mu       sync.Mutex
	policies map[uuid.UUID]*models.ResourcePolicy
}

func newMemPolicyStore() *memPolicyStore {
	return &memPolicyStore{policies: make(map[uuid.UUID]*models.ResourcePolicy)}
}

func (s *memPolicyStore) all() []*models.ResourcePolicy {
	out := make([]*models.ResourcePolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func (s *memPolicyStore) Find(_ context.Context, obj models.Object) ([]*models.ResourcePolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ResourcePolicy
	for _, p := range s.all() {
		if p.AppliesTo(obj) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPolicyStore) FindByAction(_ context.Context, obj models.Object, action models.Action) ([]*models.ResourcePolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ResourcePolicy
	for _, p := range s.all() {
		if p.AppliesTo(obj) && p.Action == action {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPolicyStore) FindByType(_ context.Context, obj models.Object, pt models.PolicyType) ([]*models.ResourcePolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ResourcePolicy
	for _, p := range s.all() {
		if p.AppliesTo(obj) && p.Type == pt {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPolicyStore) FindByGroup(_ context.Context, group uuid.UUID) ([]*models.ResourcePolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ResourcePolicy
	for _, p := range s.all() {
		if p.Group != nil && *p.Group == group {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPolicyStore) FindMatching(_ context.Context, rt models.ResourceType, rid, group uuid.UUID,
	action models.Action, exclude uuid.UUID) (*models.ResourcePolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.all() {
		if p.ID == exclude {
			continue
		}
		if p.ResourceType == rt && p.ResourceID == rid && p.Action == action &&
			p.Group != nil && *p.Group == group {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memPolicyStore) Save(_ context.Context, policy *models.ResourcePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *policy
	s.policies[policy.ID] = &cp
	return nil
}

func (s *memPolicyStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.policies, id)
	return nil
}

func (s *memPolicyStore) deleteWhere(match func(*models.ResourcePolicy) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.policies {
		if match(p) {
			delete(s.policies, id)
		}
	}
}

func (s *memPolicyStore) DeleteByObject(_ context.Context, obj models.Object) error {
	s.deleteWhere(func(p *models.ResourcePolicy) bool { return p.AppliesTo(obj) })
	return nil
}

func (s *memPolicyStore) DeleteByObjectAndType(_ context.Context, obj models.Object, pt models.PolicyType) error {
	s.deleteWhere(func(p *models.ResourcePolicy) bool { return p.AppliesTo(obj) && p.Type == pt })
	return nil
}

func (s *memPolicyStore) DeleteByObjectAndAction(_ context.Context, obj models.Object, action models.Action) error {
	s.deleteWhere(func(p *models.ResourcePolicy) bool { return p.AppliesTo(obj) && p.Action == action })
	return nil
}

func (s *memPolicyStore) DeleteByGroup(_ context.Context, group uuid.UUID) error {
	s.deleteWhere(func(p *models.ResourcePolicy) bool { return p.Group != nil && *p.Group == group })
	return nil
}

func (s *memPolicyStore) DeleteByObjectAndGroup(_ context.Context, obj models.Object, group uuid.UUID) error {
	s.deleteWhere(func(p *models.ResourcePolicy) bool {
		return p.AppliesTo(obj) && p.Group != nil && *p.Group == group
	})
	return nil
}

func (s *memPolicyStore) DeleteByObjectAndEPerson(_ context.Context, obj models.Object, eperson uuid.UUID) error {
	s.deleteWhere(func(p *models.ResourcePolicy) bool {
		return p.AppliesTo(obj) && p.EPerson != nil && *p.EPerson == eperson
	})
	return nil
}

// memGroups is an in-memory GroupMembership with transitive membership.
type memGroups struct {
	groups map[uuid.UUID]*models.Group
}

func newMemGroups(groups ...*models.Group) *memGroups {
	m := &memGroups{groups: make(map[uuid.UUID]*models.Group)}
	for _, g := range groups {
		m.groups[g.ID] = g
	}
	return m
}

func (m *memGroups) IsMember(_ context.Context, c *models.Context, group uuid.UUID) (bool, error) {
	g, ok := m.groups[group]
	if !ok {
		return false, nil
	}
	if g.Name == models.GroupAnonymous {
		return true, nil
	}
	if c.CurrentUser == nil {
		return false, nil
	}
	return m.contains(g, c.CurrentUser.ID, make(map[uuid.UUID]bool)), nil
}

func (m *memGroups) contains(g *models.Group, eperson uuid.UUID, seen map[uuid.UUID]bool) bool {
	if seen[g.ID] {
		return false
	}
	seen[g.ID] = true
	for _, member := range g.Members {
		if member == eperson {
			return true
		}
	}
	for _, sub := range g.Subgroups {
		if sg, ok := m.groups[sub]; ok && m.contains(sg, eperson, seen) {
			return true
		}
	}
	return false
}

func (m *memGroups) IsMemberOfName(ctx context.Context, c *models.Context, name string) (bool, error) {
	for _, g := range m.groups {
		if g.Name == name {
			return m.IsMember(ctx, c, g.ID)
		}
	}
	return false, nil
}

func (m *memGroups) AllMembers(_ context.Context, group uuid.UUID) ([]*models.EPerson, error) {
	g, ok := m.groups[group]
	if !ok {
		return nil, nil
	}
	var out []*models.EPerson
	seenGroups := make(map[uuid.UUID]bool)
	seenPeople := make(map[uuid.UUID]bool)
	m.collect(g, seenGroups, seenPeople, &out)
	return out, nil
}

func (m *memGroups) collect(g *models.Group, seenGroups, seenPeople map[uuid.UUID]bool, out *[]*models.EPerson) {
	if seenGroups[g.ID] {
		return
	}
	seenGroups[g.ID] = true
	for _, member := range g.Members {
		if !seenPeople[member] {
			seenPeople[member] = true
			*out = append(*out, &models.EPerson{ID: member})
		}
	}
	for _, sub := range g.Subgroups {
		if sg, ok := m.groups[sub]; ok {
			m.collect(sg, seenGroups, seenPeople, out)
		}
	}
}

func (m *memGroups) FindByName(_ context.Context, name string) (*models.Group, error) {
	for _, g := range m.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

// memResolver walks a parent map; the admin object is the object itself.
type memResolver struct {
	parents map[uuid.UUID]models.Object
}

func newMemResolver() *memResolver {
	return &memResolver{parents: make(map[uuid.UUID]models.Object)}
}

func (r *memResolver) setParent(child, parent models.Object) {
	r.parents[child.ObjectID()] = parent
}

func (r *memResolver) AdminObject(_ context.Context, obj models.Object, _ models.Action) (models.Object, error) {
	return obj, nil
}

func (r *memResolver) ParentObject(_ context.Context, obj models.Object) (models.Object, error) {
	return r.parents[obj.ObjectID()], nil
}

// touchRecorder records last-modified touches.
type touchRecorder struct {
	mu      sync.Mutex
	touched []uuid.UUID
}

func (t *touchRecorder) TouchLastModified(_ context.Context, obj models.Object) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touched = append(t.touched, obj.ObjectID())
	return nil
}

func (t *touchRecorder) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.touched)
}
