// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package models

import (
	"github.com/google/uuid"
)

// Well-known group names. Membership in Anonymous is implicit for every
// request, authenticated or not; Administrators membership short-circuits
// every authorization check.
const (
	GroupAnonymous      = "Anonymous"
	GroupAdministrators = "Administrators"
)

// EPerson is a registered user account.
type EPerson struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
}

func (e *EPerson) ObjectID() uuid.UUID      { return e.ID }
func (e *EPerson) ObjectType() ResourceType { return ResourceEPerson }
func (e *EPerson) ObjectName() string       { return e.Email }

// FullName returns "First Last", falling back to the email address when
// no name parts are recorded.
func (e *EPerson) FullName() string {
	switch {
	case e.FirstName == "" && e.LastName == "":
		return e.Email
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// Group is a named set of epersons and subgroups. Membership checks are
// transitive through Subgroups.
type Group struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Members   []uuid.UUID `json:"members,omitempty"`
	Subgroups []uuid.UUID `json:"subgroups,omitempty"`
}

func (g *Group) ObjectID() uuid.UUID      { return g.ID }
func (g *Group) ObjectType() ResourceType { return ResourceGroup }
func (g *Group) ObjectName() string       { return g.Name }
