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

// BadgerWorkspaceStore persists pre-submission workspace items.
type BadgerWorkspaceStore struct {
	db *badger.DB
}

// NewBadgerWorkspaceStore creates a workspace item store over db.
func NewBadgerWorkspaceStore(db *badger.DB) *BadgerWorkspaceStore {
	return &BadgerWorkspaceStore{db: db}
}

// Save upserts a workspace item.
func (s *BadgerWorkspaceStore) Save(_ context.Context, wsi *models.WorkspaceItem) error {
	data, err := json.Marshal(wsi)
	if err != nil {
		return fmt.Errorf("marshal workspace item: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(workspaceKeyPrefix+wsi.ID.String()), data)
	})
}

// Find loads a workspace item by id.
func (s *BadgerWorkspaceStore) Find(_ context.Context, id uuid.UUID) (*models.WorkspaceItem, error) {
	var wsi models.WorkspaceItem
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, workspaceKeyPrefix+id.String(), &wsi, ErrWorkspaceNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &wsi, nil
}

// Delete removes a workspace item. Deleting an absent item is not an
// error.
func (s *BadgerWorkspaceStore) Delete(_ context.Context, id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(workspaceKeyPrefix + id.String()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
