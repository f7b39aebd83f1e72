// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// BadgerTaskListStore persists pending-claim pairings. The full record
// is stored under both the workflow-item key and the eperson key, so
// either side's listing is a single prefix scan. CreateAll and DeleteAll
// are single transactions, keeping the pool swap atomic relative to
// concurrent claims.
type BadgerTaskListStore struct {
	db *badger.DB
}

// NewBadgerTaskListStore creates a task list store over db.
func NewBadgerTaskListStore(db *badger.DB) *BadgerTaskListStore {
	return &BadgerTaskListStore{db: db}
}

func taskKey(workflowItem, task uuid.UUID) []byte {
	return []byte(taskKeyPrefix + workflowItem.String() + ":" + task.String())
}

func taskEPersonKey(eperson, task uuid.UUID) []byte {
	return []byte(taskEPersonKeyPrefix + eperson.String() + ":" + task.String())
}

// CreateAll pools the task for every eperson in one transaction.
func (s *BadgerTaskListStore) CreateAll(_ context.Context, workflowItem uuid.UUID,
	epersons []uuid.UUID) ([]*models.TaskListItem, error) {
	out := make([]*models.TaskListItem, 0, len(epersons))
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, ep := range epersons {
			tli := &models.TaskListItem{ID: uuid.New(), WorkflowItem: workflowItem, EPerson: ep}
			data, err := json.Marshal(tli)
			if err != nil {
				return fmt.Errorf("marshal task: %w", err)
			}
			if err := txn.Set(taskKey(workflowItem, tli.ID), data); err != nil {
				return fmt.Errorf("set task: %w", err)
			}
			if err := txn.Set(taskEPersonKey(ep, tli.ID), data); err != nil {
				return fmt.Errorf("set eperson task index: %w", err)
			}
			out = append(out, tli)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAll removes every pairing for the workflow item in one
// transaction.
func (s *BadgerTaskListStore) DeleteAll(_ context.Context, workflowItem uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(taskKeyPrefix + workflowItem.String() + ":")
		var primary [][]byte
		var secondary [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var tli models.TaskListItem
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &tli)
			}); err != nil {
				return fmt.Errorf("unmarshal task: %w", err)
			}
			primary = append(primary, item.KeyCopy(nil))
			secondary = append(secondary, taskEPersonKey(tli.EPerson, tli.ID))
		}

		for i := range primary {
			if err := txn.Delete(primary[i]); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			if err := txn.Delete(secondary[i]); err != nil {
				return fmt.Errorf("delete eperson task index: %w", err)
			}
		}
		return nil
	})
}

// FindByWorkflowItem lists the item's pooled pairings.
func (s *BadgerTaskListStore) FindByWorkflowItem(_ context.Context,
	workflowItem uuid.UUID) ([]*models.TaskListItem, error) {
	return s.scan(taskKeyPrefix + workflowItem.String() + ":")
}

// FindByEPerson lists the eperson's pending tasks across all items.
func (s *BadgerTaskListStore) FindByEPerson(_ context.Context,
	eperson uuid.UUID) ([]*models.TaskListItem, error) {
	return s.scan(taskEPersonKeyPrefix + eperson.String() + ":")
}

func (s *BadgerTaskListStore) scan(prefix string) ([]*models.TaskListItem, error) {
	var out []*models.TaskListItem
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var tli models.TaskListItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tli)
			}); err != nil {
				return fmt.Errorf("unmarshal task: %w", err)
			}
			out = append(out, &tli)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
