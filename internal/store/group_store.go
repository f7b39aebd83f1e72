// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// BadgerGroupStore stores groups and epersons and answers transitive
// membership questions. Membership in the Anonymous group is implicit
// for every request.
type BadgerGroupStore struct {
	db *badger.DB
}

// NewBadgerGroupStore creates a group store over db.
func NewBadgerGroupStore(db *badger.DB) *BadgerGroupStore {
	return &BadgerGroupStore{db: db}
}

// SaveGroup upserts a group and its name index.
func (s *BadgerGroupStore) SaveGroup(_ context.Context, g *models.Group) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal group: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(groupKeyPrefix+g.ID.String()), data); err != nil {
			return fmt.Errorf("set group: %w", err)
		}
		return txn.Set([]byte(groupNameKeyPrefix+g.Name), []byte(g.ID.String()))
	})
}

// Group loads a group by id.
func (s *BadgerGroupStore) Group(_ context.Context, id uuid.UUID) (*models.Group, error) {
	var g models.Group
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, groupKeyPrefix+id.String(), &g, ErrGroupNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindByName resolves a group by name; nil when absent.
func (s *BadgerGroupStore) FindByName(ctx context.Context, name string) (*models.Group, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(groupNameKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get group name index: %w", err)
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil || id == "" {
		return nil, err
	}

	gid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse group id: %w", err)
	}
	g, err := s.Group(ctx, gid)
	if errors.Is(err, ErrGroupNotFound) {
		return nil, nil
	}
	return g, err
}

// SaveEPerson upserts an eperson record.
func (s *BadgerGroupStore) SaveEPerson(_ context.Context, p *models.EPerson) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal eperson: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(epersonKeyPrefix+p.ID.String()), data)
	})
}

// EPerson loads an eperson by id.
func (s *BadgerGroupStore) EPerson(_ context.Context, id uuid.UUID) (*models.EPerson, error) {
	var p models.EPerson
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, epersonKeyPrefix+id.String(), &p, ErrEPersonNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// IsMember reports whether the context's current user is a transitive
// member of the group. The Anonymous group matches every request, even
// with no current user.
func (s *BadgerGroupStore) IsMember(ctx context.Context, c *models.Context,
	group uuid.UUID) (bool, error) {
	g, err := s.Group(ctx, group)
	if errors.Is(err, ErrGroupNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if g.Name == models.GroupAnonymous {
		return true, nil
	}
	if c.CurrentUser == nil {
		return false, nil
	}
	return s.contains(ctx, g, c.CurrentUser.ID, make(map[uuid.UUID]bool))
}

// IsMemberOfName is IsMember by group name; unknown names are
// non-memberships.
func (s *BadgerGroupStore) IsMemberOfName(ctx context.Context, c *models.Context,
	name string) (bool, error) {
	g, err := s.FindByName(ctx, name)
	if err != nil || g == nil {
		return false, err
	}
	return s.IsMember(ctx, c, g.ID)
}

func (s *BadgerGroupStore) contains(ctx context.Context, g *models.Group, eperson uuid.UUID,
	seen map[uuid.UUID]bool) (bool, error) {
	if seen[g.ID] {
		return false, nil
	}
	seen[g.ID] = true

	for _, member := range g.Members {
		if member == eperson {
			return true, nil
		}
	}
	for _, sub := range g.Subgroups {
		sg, err := s.Group(ctx, sub)
		if errors.Is(err, ErrGroupNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		found, err := s.contains(ctx, sg, eperson, seen)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// AllMembers returns the transitive eperson membership of a group,
// deduplicated. Members without a stored eperson record are skipped.
func (s *BadgerGroupStore) AllMembers(ctx context.Context, group uuid.UUID) ([]*models.EPerson, error) {
	g, err := s.Group(ctx, group)
	if errors.Is(err, ErrGroupNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seenGroups := make(map[uuid.UUID]bool)
	seenPeople := make(map[uuid.UUID]bool)
	var out []*models.EPerson
	if err := s.collect(ctx, g, seenGroups, seenPeople, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerGroupStore) collect(ctx context.Context, g *models.Group,
	seenGroups, seenPeople map[uuid.UUID]bool, out *[]*models.EPerson) error {
	if seenGroups[g.ID] {
		return nil
	}
	seenGroups[g.ID] = true

	for _, member := range g.Members {
		if seenPeople[member] {
			continue
		}
		seenPeople[member] = true
		p, err := s.EPerson(ctx, member)
		if errors.Is(err, ErrEPersonNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		*out = append(*out, p)
	}
	for _, sub := range g.Subgroups {
		sg, err := s.Group(ctx, sub)
		if errors.Is(err, ErrGroupNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.collect(ctx, sg, seenGroups, seenPeople, out); err != nil {
			return err
		}
	}
	return nil
}

// getJSON loads and unmarshals one record, mapping a missing key to the
// supplied sentinel.
func getJSON(txn *badger.Txn, key string, dst any, notFound error) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}
