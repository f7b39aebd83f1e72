// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package models

// Context carries the acting principal for a request. A nil CurrentUser
// means the request is anonymous; anonymous requests still match policies
// granted to the Anonymous group.
type Context struct {
	// CurrentUser is the authenticated eperson, or nil for anonymous.
	CurrentUser *EPerson

	// IgnoreAuthorization makes every authorization check succeed. Set
	// only by trusted internal flows (installation, migration).
	IgnoreAuthorization bool
}

// UserID returns the acting eperson's id as a string, or "anonymous".
func (c *Context) UserID() string {
	if c == nil || c.CurrentUser == nil {
		return "anonymous"
	}
	return c.CurrentUser.ID.String()
}

// WithIgnoredAuthorization returns a copy of the context that bypasses
// authorization checks.
func (c *Context) WithIgnoredAuthorization() *Context {
	cp := *c
	cp.IgnoreAuthorization = true
	return &cp
}
