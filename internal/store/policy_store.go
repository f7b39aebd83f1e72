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

// BadgerPolicyStore is the durable resource-policy store. Policies live
// under their id; two index key families support the engine's lookups:
// by target object and by granted group. Saves maintain both indexes in
// the same transaction, so a policy moved between principals never
// leaves a dangling index entry.
type BadgerPolicyStore struct {
	db *badger.DB
}

// NewBadgerPolicyStore creates a policy store over db.
func NewBadgerPolicyStore(db *badger.DB) *BadgerPolicyStore {
	return &BadgerPolicyStore{db: db}
}

func policyKey(id uuid.UUID) []byte {
	return []byte(policyKeyPrefix + id.String())
}

func policyObjPrefix(rt models.ResourceType, rid uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:", policyObjKeyPrefix, rt, rid))
}

func policyObjKey(rt models.ResourceType, rid, pid uuid.UUID) []byte {
	return append(policyObjPrefix(rt, rid), pid.String()...)
}

func policyGroupPrefix(group uuid.UUID) []byte {
	return []byte(policyGroupKeyPrefix + group.String() + ":")
}

func policyGroupKey(group, pid uuid.UUID) []byte {
	return append(policyGroupPrefix(group), pid.String()...)
}

// Save upserts the policy and its index keys.
func (s *BadgerPolicyStore) Save(_ context.Context, policy *models.ResourcePolicy) error {
	data, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := deletePolicyKeys(txn, policy.ID); err != nil {
			return err
		}
		if err := txn.Set(policyKey(policy.ID), data); err != nil {
			return fmt.Errorf("set policy: %w", err)
		}
		if err := txn.Set(policyObjKey(policy.ResourceType, policy.ResourceID, policy.ID), nil); err != nil {
			return fmt.Errorf("set object index: %w", err)
		}
		if policy.Group != nil {
			if err := txn.Set(policyGroupKey(*policy.Group, policy.ID), nil); err != nil {
				return fmt.Errorf("set group index: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the policy and its index keys. Deleting an absent
// policy is not an error.
func (s *BadgerPolicyStore) Delete(_ context.Context, id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return deletePolicyKeys(txn, id)
	})
}

// deletePolicyKeys removes the stored policy and every index entry it
// owns, using the stored copy to locate them.
func deletePolicyKeys(txn *badger.Txn, id uuid.UUID) error {
	item, err := txn.Get(policyKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get policy: %w", err)
	}

	var stored models.ResourcePolicy
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	}); err != nil {
		return fmt.Errorf("unmarshal policy: %w", err)
	}

	if err := txn.Delete(policyKey(id)); err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	if err := txn.Delete(policyObjKey(stored.ResourceType, stored.ResourceID, id)); err != nil {
		return fmt.Errorf("delete object index: %w", err)
	}
	if stored.Group != nil {
		if err := txn.Delete(policyGroupKey(*stored.Group, id)); err != nil {
			return fmt.Errorf("delete group index: %w", err)
		}
	}
	return nil
}

// Find returns every policy on obj in key order.
func (s *BadgerPolicyStore) Find(ctx context.Context, obj models.Object) ([]*models.ResourcePolicy, error) {
	return s.findByTarget(ctx, obj.ObjectType(), obj.ObjectID(), nil)
}

// FindByAction returns obj's policies for one action.
func (s *BadgerPolicyStore) FindByAction(ctx context.Context, obj models.Object,
	action models.Action) ([]*models.ResourcePolicy, error) {
	return s.findByTarget(ctx, obj.ObjectType(), obj.ObjectID(),
		func(p *models.ResourcePolicy) bool { return p.Action == action })
}

// FindByType returns obj's policies of one provenance type.
func (s *BadgerPolicyStore) FindByType(ctx context.Context, obj models.Object,
	pt models.PolicyType) ([]*models.ResourcePolicy, error) {
	return s.findByTarget(ctx, obj.ObjectType(), obj.ObjectID(),
		func(p *models.ResourcePolicy) bool { return p.Type == pt })
}

// FindByGroup returns every policy granted to the group across all
// objects.
func (s *BadgerPolicyStore) FindByGroup(_ context.Context, group uuid.UUID) ([]*models.ResourcePolicy, error) {
	var out []*models.ResourcePolicy
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := policyGroupPrefix(group)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pid := string(it.Item().Key()[len(prefix):])
			p, err := getPolicy(txn, pid)
			if err != nil {
				return err
			}
			if p != nil {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find policies by group: %w", err)
	}
	return out, nil
}

// FindMatching locates a date-independent (target, group, action) match
// other than exclude, or nil.
func (s *BadgerPolicyStore) FindMatching(ctx context.Context, rt models.ResourceType,
	rid, group uuid.UUID, action models.Action, exclude uuid.UUID) (*models.ResourcePolicy, error) {
	policies, err := s.findByTarget(ctx, rt, rid, func(p *models.ResourcePolicy) bool {
		return p.ID != exclude && p.Action == action && p.Group != nil && *p.Group == group
	})
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, nil
	}
	return policies[0], nil
}

// DeleteByObject removes every policy on obj.
func (s *BadgerPolicyStore) DeleteByObject(ctx context.Context, obj models.Object) error {
	return s.deleteWhere(ctx, obj, nil)
}

// DeleteByObjectAndType removes obj's policies of one provenance type.
func (s *BadgerPolicyStore) DeleteByObjectAndType(ctx context.Context, obj models.Object,
	pt models.PolicyType) error {
	return s.deleteWhere(ctx, obj, func(p *models.ResourcePolicy) bool { return p.Type == pt })
}

// DeleteByObjectAndAction removes obj's policies for one action.
func (s *BadgerPolicyStore) DeleteByObjectAndAction(ctx context.Context, obj models.Object,
	action models.Action) error {
	return s.deleteWhere(ctx, obj, func(p *models.ResourcePolicy) bool { return p.Action == action })
}

// DeleteByObjectAndGroup removes the group's policies on obj.
func (s *BadgerPolicyStore) DeleteByObjectAndGroup(ctx context.Context, obj models.Object,
	group uuid.UUID) error {
	return s.deleteWhere(ctx, obj, func(p *models.ResourcePolicy) bool {
		return p.Group != nil && *p.Group == group
	})
}

// DeleteByObjectAndEPerson removes the eperson's policies on obj.
func (s *BadgerPolicyStore) DeleteByObjectAndEPerson(ctx context.Context, obj models.Object,
	eperson uuid.UUID) error {
	return s.deleteWhere(ctx, obj, func(p *models.ResourcePolicy) bool {
		return p.EPerson != nil && *p.EPerson == eperson
	})
}

// DeleteByGroup removes every policy granted to the group across all
// objects.
func (s *BadgerPolicyStore) DeleteByGroup(ctx context.Context, group uuid.UUID) error {
	policies, err := s.FindByGroup(ctx, group)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range policies {
			if err := deletePolicyKeys(txn, p.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// findByTarget scans the object index and loads matching policies.
func (s *BadgerPolicyStore) findByTarget(_ context.Context, rt models.ResourceType,
	rid uuid.UUID, match func(*models.ResourcePolicy) bool) ([]*models.ResourcePolicy, error) {
	var out []*models.ResourcePolicy
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := policyObjPrefix(rt, rid)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pid := string(it.Item().Key()[len(prefix):])
			p, err := getPolicy(txn, pid)
			if err != nil {
				return err
			}
			if p == nil {
				continue
			}
			if match == nil || match(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find policies: %w", err)
	}
	return out, nil
}

// deleteWhere removes obj's policies passing match (nil matches all).
func (s *BadgerPolicyStore) deleteWhere(ctx context.Context, obj models.Object,
	match func(*models.ResourcePolicy) bool) error {
	policies, err := s.findByTarget(ctx, obj.ObjectType(), obj.ObjectID(), match)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range policies {
			if err := deletePolicyKeys(txn, p.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func getPolicy(txn *badger.Txn, id string) (*models.ResourcePolicy, error) {
	item, err := txn.Get([]byte(policyKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		// Stale index entry; skip.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get policy %s: %w", id, err)
	}
	var p models.ResourcePolicy
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal policy %s: %w", id, err)
	}
	return &p, nil
}
