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
	"github.com/athenaeum-org/athenaeum/internal/workflow"
)

// BadgerWorkflowStore persists workflow items. SwapState runs the
// read-compare-write inside one Badger transaction, which serializes
// concurrent claims on the same pooled item.
type BadgerWorkflowStore struct {
	db *badger.DB
}

// NewBadgerWorkflowStore creates a workflow item store over db.
func NewBadgerWorkflowStore(db *badger.DB) *BadgerWorkflowStore {
	return &BadgerWorkflowStore{db: db}
}

// Save upserts the workflow item unconditionally.
func (s *BadgerWorkflowStore) Save(_ context.Context, wfi *models.WorkflowItem) error {
	data, err := json.Marshal(wfi)
	if err != nil {
		return fmt.Errorf("marshal workflow item: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(workflowKeyPrefix+wfi.ID.String()), data)
	})
}

// Find loads a workflow item by id.
func (s *BadgerWorkflowStore) Find(_ context.Context, id uuid.UUID) (*models.WorkflowItem, error) {
	var wfi models.WorkflowItem
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, workflowKeyPrefix+id.String(), &wfi, ErrWorkflowNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &wfi, nil
}

// SwapState persists wfi only if the stored state still equals expected,
// failing with workflow.ErrStateConflict otherwise.
func (s *BadgerWorkflowStore) SwapState(_ context.Context, wfi *models.WorkflowItem,
	expected models.WorkflowState) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var stored models.WorkflowItem
		if err := getJSON(txn, workflowKeyPrefix+wfi.ID.String(), &stored, ErrWorkflowNotFound); err != nil {
			return err
		}
		if stored.State != expected {
			return fmt.Errorf("%w: have %s, expected %s",
				workflow.ErrStateConflict, stored.State, expected)
		}

		data, err := json.Marshal(wfi)
		if err != nil {
			return fmt.Errorf("marshal workflow item: %w", err)
		}
		return txn.Set([]byte(workflowKeyPrefix+wfi.ID.String()), data)
	})
}

// Delete removes a workflow item. Deleting an absent item is not an
// error.
func (s *BadgerWorkflowStore) Delete(_ context.Context, id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(workflowKeyPrefix + id.String()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
