// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/models"
)

// BadgerItemStore stores items, collections, and communities. Items carry
// their bundles and bitstreams inline; an owner_item index maps each
// bundle and bitstream id back to its item so containment questions stay
// a single lookup.
type BadgerItemStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerItemStore creates an item store over db.
func NewBadgerItemStore(db *badger.DB) *BadgerItemStore {
	return &BadgerItemStore{db: db, now: time.Now}
}

// SaveItem upserts the item and refreshes the owner_item index for its
// current bundles and bitstreams.
func (s *BadgerItemStore) SaveItem(_ context.Context, item *models.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(itemKeyPrefix+item.ID.String()), data); err != nil {
			return fmt.Errorf("set item: %w", err)
		}
		owner := []byte(item.ID.String())
		for _, bundle := range item.Bundles {
			if err := txn.Set([]byte(ownerItemKeyPrefix+bundle.ID.String()), owner); err != nil {
				return fmt.Errorf("set bundle owner index: %w", err)
			}
			for _, bs := range bundle.Bitstreams {
				if err := txn.Set([]byte(ownerItemKeyPrefix+bs.ID.String()), owner); err != nil {
					return fmt.Errorf("set bitstream owner index: %w", err)
				}
			}
		}
		return nil
	})
}

// Find loads an item by id.
func (s *BadgerItemStore) Find(_ context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, itemKeyPrefix+id.String(), &item, ErrItemNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update persists a modified item.
func (s *BadgerItemStore) Update(ctx context.Context, item *models.Item) error {
	return s.SaveItem(ctx, item)
}

// OwningItem resolves a bundle or bitstream id to the item that contains
// it, through the owner_item index.
func (s *BadgerItemStore) OwningItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var owner string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ownerItemKeyPrefix + id.String()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("get owner index: %w", err)
		}
		return item.Value(func(val []byte) error {
			owner = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	itemID, err := uuid.Parse(owner)
	if err != nil {
		return nil, fmt.Errorf("parse owning item id: %w", err)
	}
	return s.Find(ctx, itemID)
}

// FindLiftable scans all items and returns those whose recorded lift
// date in liftField has arrived by cutoff. Items without the field, or
// with an unparsable value, are skipped.
func (s *BadgerItemStore) FindLiftable(_ context.Context, liftField string,
	cutoff time.Time) ([]*models.Item, error) {
	var out []*models.Item
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(itemKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item models.Item
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return fmt.Errorf("unmarshal item: %w", err)
			}

			raw := item.FirstMetadata(liftField)
			if raw == "" {
				continue
			}
			lift, err := time.Parse("2006-01-02", raw)
			if err != nil {
				logging.Warn().
					Str("item", item.ID.String()).
					Str("value", raw).
					Msg("Unparsable lift date, skipping")
				continue
			}
			if !lift.After(cutoff) {
				cp := item
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveCollection upserts a collection.
func (s *BadgerItemStore) SaveCollection(_ context.Context, c *models.Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(collectionKeyPrefix+c.ID.String()), data)
	})
}

// Collection loads a collection by id.
func (s *BadgerItemStore) Collection(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	var c models.Collection
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, collectionKeyPrefix+id.String(), &c, ErrCollectionNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCommunity upserts a community.
func (s *BadgerItemStore) SaveCommunity(_ context.Context, c *models.Community) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal community: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(communityKeyPrefix+c.ID.String()), data)
	})
}

// Community loads a community by id.
func (s *BadgerItemStore) Community(_ context.Context, id uuid.UUID) (*models.Community, error) {
	var c models.Community
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, communityKeyPrefix+id.String(), &c, ErrCommunityNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TouchLastModified records the modification instant for an object.
func (s *BadgerItemStore) TouchLastModified(_ context.Context, obj models.Object) error {
	key := fmt.Sprintf("%s%s:%s", modifiedKeyPrefix, obj.ObjectType(), obj.ObjectID())
	stamp := s.now().UTC().Format(time.RFC3339)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(stamp))
	})
}
