// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package store provides embedded BadgerDB implementations of the
// collaborator contracts consumed by the authorize, embargo, and
// workflow packages: resource policies, groups and epersons, repository
// objects, workflow items, task lists, and workspace items.
//
// Records are serialized as JSON under typed key prefixes, with
// secondary index keys for the lookups the engines perform (policies by
// target object and by group, tasks by eperson, contained objects to
// their owning item). All multi-key mutations run inside a single
// Badger transaction.
package store
