// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// memWorkflows is an in-memory WorkflowStore with compare-and-swap
// semantics.
type memWorkflows struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.WorkflowItem
}

func newMemWorkflows() *memWorkflows {
	return &memWorkflows{items: make(map[uuid.UUID]*models.WorkflowItem)}
}

func (s *memWorkflows) Save(_ context.Context, wfi *models.WorkflowItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *wfi
	s.items[wfi.ID] = &cp
	return nil
}

func (s *memWorkflows) Find(_ context.Context, id uuid.UUID) (*models.WorkflowItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wfi, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("workflow item %s not found", id)
	}
	cp := *wfi
	return &cp, nil
}

func (s *memWorkflows) SwapState(_ context.Context, wfi *models.WorkflowItem,
	expected models.WorkflowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[wfi.ID]
	if !ok {
		return fmt.Errorf("workflow item %s not found", wfi.ID)
	}
	if stored.State != expected {
		return ErrStateConflict
	}
	cp := *wfi
	s.items[wfi.ID] = &cp
	return nil
}

func (s *memWorkflows) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *memWorkflows) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// memTasks is an in-memory TaskListStore.
type memTasks struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*models.TaskListItem
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: make(map[uuid.UUID]*models.TaskListItem)}
}

func (s *memTasks) CreateAll(_ context.Context, workflowItem uuid.UUID,
	epersons []uuid.UUID) ([]*models.TaskListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TaskListItem
	for _, ep := range epersons {
		tli := &models.TaskListItem{ID: uuid.New(), WorkflowItem: workflowItem, EPerson: ep}
		s.tasks[tli.ID] = tli
		out = append(out, tli)
	}
	return out, nil
}

func (s *memTasks) DeleteAll(_ context.Context, workflowItem uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, tli := range s.tasks {
		if tli.WorkflowItem == workflowItem {
			delete(s.tasks, id)
		}
	}
	return nil
}

func (s *memTasks) FindByWorkflowItem(_ context.Context, workflowItem uuid.UUID) ([]*models.TaskListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TaskListItem
	for _, tli := range s.tasks {
		if tli.WorkflowItem == workflowItem {
			out = append(out, tli)
		}
	}
	return out, nil
}

func (s *memTasks) FindByEPerson(_ context.Context, eperson uuid.UUID) ([]*models.TaskListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TaskListItem
	for _, tli := range s.tasks {
		if tli.EPerson == eperson {
			out = append(out, tli)
		}
	}
	return out, nil
}

// memWorkspaces is an in-memory WorkspaceStore.
type memWorkspaces struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.WorkspaceItem
}

func newMemWorkspaces() *memWorkspaces {
	return &memWorkspaces{items: make(map[uuid.UUID]*models.WorkspaceItem)}
}

func (s *memWorkspaces) Save(_ context.Context, wsi *models.WorkspaceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *wsi
	s.items[wsi.ID] = &cp
	return nil
}

func (s *memWorkspaces) Find(_ context.Context, id uuid.UUID) (*models.WorkspaceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wsi, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("workspace item %s not found", id)
	}
	cp := *wsi
	return &cp, nil
}

func (s *memWorkspaces) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *memWorkspaces) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memWorkspaces) forItem(item uuid.UUID) *models.WorkspaceItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wsi := range s.items {
		if wsi.Item == item {
			return wsi
		}
	}
	return nil
}

// memEntities is an in-memory ItemStore and Directory.
type memEntities struct {
	mu          sync.Mutex
	items       map[uuid.UUID]*models.Item
	collections map[uuid.UUID]*models.Collection
	epersons    map[uuid.UUID]*models.EPerson
	groups      map[uuid.UUID][]uuid.UUID
}

func newMemEntities() *memEntities {
	return &memEntities{
		items:       make(map[uuid.UUID]*models.Item),
		collections: make(map[uuid.UUID]*models.Collection),
		epersons:    make(map[uuid.UUID]*models.EPerson),
		groups:      make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *memEntities) Find(_ context.Context, id uuid.UUID) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return item, nil
}

func (s *memEntities) Update(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *memEntities) Collection(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[id], nil
}

func (s *memEntities) EPerson(_ context.Context, id uuid.UUID) (*models.EPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.epersons[id]
	if !ok {
		return nil, fmt.Errorf("eperson %s not found", id)
	}
	return p, nil
}

func (s *memEntities) AllMembers(_ context.Context, group uuid.UUID) ([]*models.EPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.EPerson
	for _, id := range s.groups[group] {
		if p, ok := s.epersons[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// addGroup registers a role group with the given members, creating the
// eperson records as needed.
func (s *memEntities) addGroup(members ...uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.groups[id] = members
	for _, m := range members {
		if _, ok := s.epersons[m]; !ok {
			s.epersons[m] = &models.EPerson{ID: m, Email: m.String() + "@example.edu"}
		}
	}
	return id
}

func (s *memEntities) addEPerson(p *models.EPerson) { s.epersons[p.ID] = p }

// fakePolicies records policy-service calls.
type fakePolicies struct {
	mu        sync.Mutex
	admins    map[uuid.UUID]bool
	grants    []string
	stripped  int
	inherited int
}

func newFakePolicies() *fakePolicies {
	return &fakePolicies{admins: make(map[uuid.UUID]bool)}
}

func (f *fakePolicies) IsAdmin(_ context.Context, c *models.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.IgnoreAuthorization {
		return true, nil
	}
	if c.CurrentUser == nil {
		return false, nil
	}
	return f.admins[c.CurrentUser.ID], nil
}

func (f *fakePolicies) AddGroupPolicy(_ context.Context, obj models.Object, action models.Action,
	group uuid.UUID, pt models.PolicyType) (*models.ResourcePolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, fmt.Sprintf("%s:%s:%s", obj.ObjectID(), action, pt))
	g := group
	return &models.ResourcePolicy{ID: uuid.New(), Group: &g, Action: action, Type: pt}, nil
}

func (f *fakePolicies) RemovePoliciesByType(_ context.Context, _ models.Object,
	_ models.PolicyType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stripped++
	return nil
}

func (f *fakePolicies) InheritDefaultPolicies(_ context.Context, _ *models.Collection,
	_ *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inherited++
	return nil
}

func (f *fakePolicies) grantCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grants)
}

// fakeInstaller archives the item in place.
type fakeInstaller struct {
	entities *memEntities
	installs int
}

func (f *fakeInstaller) InstallItem(ctx context.Context, _ *models.Context,
	wfi *models.WorkflowItem) (*models.Item, error) {
	item, err := f.entities.Find(ctx, wfi.Item)
	if err != nil {
		return nil, err
	}
	item.Archived = true
	f.installs++
	return item, nil
}

func (f *fakeInstaller) BitstreamProvenance(_ context.Context, item *models.Item) (string, error) {
	total := 0
	for _, b := range item.Bundles {
		total += len(b.Bitstreams)
	}
	return fmt.Sprintf("No. of bitstreams: %d", total), nil
}

// recordingNotifier captures sends; fail makes every delivery error.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []sentNote
	fail  bool
	calls int
}

type sentNote struct {
	template  string
	recipient uuid.UUID
}

func (n *recordingNotifier) Send(_ context.Context, template string, recipient *models.EPerson,
	_ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return fmt.Errorf("smtp unavailable")
	}
	n.sent = append(n.sent, sentNote{template: template, recipient: recipient.ID})
	return nil
}

func (n *recordingNotifier) sentFor(template string) []sentNote {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNote
	for _, s := range n.sent {
		if s.template == template {
			out = append(out, s)
		}
	}
	return out
}

// fakeCuration halts advancement while halt is set.
type fakeCuration struct {
	needs bool
	halt  bool
	runs  int
}

func (f *fakeCuration) NeedsCuration(_ context.Context, _ *models.Context,
	_ *models.WorkflowItem) (bool, error) {
	return f.needs, nil
}

func (f *fakeCuration) DoCuration(_ context.Context, _ *models.Context,
	_ *models.WorkflowItem) (bool, error) {
	f.runs++
	return !f.halt, nil
}

// fakeEmbargo records SetEmbargo calls.
type fakeEmbargo struct {
	calls int
}

func (f *fakeEmbargo) SetEmbargo(_ context.Context, _ *models.Item) error {
	f.calls++
	return nil
}

// collectPublisher gathers published transition events.
type collectPublisher struct {
	mu     sync.Mutex
	events []TransitionEvent
}

func (p *collectPublisher) Publish(_ string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, msg := range messages {
		var ev TransitionEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return err
		}
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *collectPublisher) Close() error { return nil }

func (p *collectPublisher) all() []TransitionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TransitionEvent(nil), p.events...)
}
