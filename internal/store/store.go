// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/athenaeum-org/athenaeum/internal/logging"
)

// Key prefixes. A trailing separator keeps prefix scans from matching
// sibling record types.
const (
	policyKeyPrefix      = "policy:"
	policyObjKeyPrefix   = "policy_obj:"
	policyGroupKeyPrefix = "policy_group:"
	groupKeyPrefix       = "group:"
	groupNameKeyPrefix   = "group_name:"
	epersonKeyPrefix     = "eperson:"
	itemKeyPrefix        = "item:"
	collectionKeyPrefix  = "collection:"
	communityKeyPrefix   = "community:"
	ownerItemKeyPrefix   = "owner_item:"
	modifiedKeyPrefix    = "modified:"
	workflowKeyPrefix    = "wfi:"
	taskKeyPrefix        = "task:"
	taskEPersonKeyPrefix = "task_ep:"
	workspaceKeyPrefix   = "wsi:"
)

// Not-found sentinels per record type.
var (
	ErrPolicyNotFound     = errors.New("resource policy not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrEPersonNotFound    = errors.New("eperson not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCommunityNotFound  = errors.New("community not found")
	ErrWorkflowNotFound   = errors.New("workflow item not found")
	ErrWorkspaceNotFound  = errors.New("workspace item not found")
)

// Open opens the embedded database at path. With inMemory set the path
// is ignored and nothing is persisted; used by tests and ephemeral
// deployments. Badger's own chatty logger is disabled; open and close
// are logged here instead.
func Open(path string, inMemory bool) (*badger.DB, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logging.Info().
		Str("path", path).
		Bool("in_memory", inMemory).
		Msg("Store opened")
	return db, nil
}
