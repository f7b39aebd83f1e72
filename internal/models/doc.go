// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package models defines the core domain types shared across the
// authorization, embargo, and workflow packages: repository objects
// (community, collection, item, bundle, bitstream), principals (eperson,
// group), resource policies, and the submission workflow entities.
//
// The types here are plain data with small invariant-preserving helpers;
// all decision logic lives in internal/authorize and internal/workflow.
package models
