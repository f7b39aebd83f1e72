// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package authorize implements the resource-policy authorization engine.
//
// Every (user, object, action) decision flows through Engine.Authorize:
// system administrators and (with inheritance enabled) administrators of
// the object's containment chain always pass; otherwise the engine scans
// date-valid resource policies on the object and grants access when any
// policy names the acting eperson or a group the eperson transitively
// belongs to.
//
// The package also owns the policy-management primitives the embargo and
// workflow subsystems build on: idempotent upsert keyed by
// (object, group, action), embargo-derived read-policy generation, and
// bulk removal by object, type, action, group, or eperson.
//
// The bulk removal primitives perform no authorization check of their
// own; callers hold that responsibility.
package authorize
