// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"errors"
	"fmt"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// DeniedError is returned when no policy or admin path grants the
// attempted action. It carries the denied action, the object identity,
// and the acting user for audit trails. It deliberately does not name
// which policies exist on the object.
type DeniedError struct {
	Action models.Action

	// ObjectType and ObjectID identify the target; ObjectID is "" when
	// authorization was attempted on a nil object.
	ObjectType string
	ObjectID   string

	// UserID is the acting eperson id, or "anonymous".
	UserID string
}

// Error returns a specific, audit-friendly denial message.
func (e *DeniedError) Error() string {
	if e.ObjectID == "" {
		return fmt.Sprintf("authorization attempted on null object by user %s (action %s)",
			e.UserID, e.Action)
	}
	return fmt.Sprintf("authorization denied for user %s: action %s on %s %s",
		e.UserID, e.Action, e.ObjectType, e.ObjectID)
}

// IsDenied reports whether err is an authorization denial.
func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}

func newDenied(c *models.Context, obj models.Object, action models.Action) *DeniedError {
	de := &DeniedError{
		Action: action,
		UserID: c.UserID(),
	}
	if obj != nil {
		de.ObjectType = obj.ObjectType().String()
		de.ObjectID = obj.ObjectID().String()
	}
	return de
}
