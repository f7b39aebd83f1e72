// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"fmt"
	"time"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// Provenance notes are human-readable audit-trail strings appended to an
// item's descriptive metadata on submission, approval, and rejection.

func submissionProvenance(submitter *models.EPerson, now time.Time, bitstreams string) string {
	note := fmt.Sprintf("Submitted by %s (%s) on %s",
		displayName(submitter), submitterEmail(submitter), now.UTC().Format(time.RFC3339))
	if bitstreams != "" {
		note += "\n" + bitstreams
	}
	return note
}

func approvalProvenance(actor *models.EPerson, step int, now time.Time) string {
	return fmt.Sprintf("Approved for entry into archive by %s (%s) on %s (workflow step %d)",
		displayName(actor), submitterEmail(actor), now.UTC().Format(time.RFC3339), step)
}

func rejectionProvenance(actor *models.EPerson, reason string, now time.Time) string {
	return fmt.Sprintf("Rejected by %s (%s), reason: %s on %s",
		displayName(actor), submitterEmail(actor), reason, now.UTC().Format(time.RFC3339))
}

func displayName(p *models.EPerson) string {
	if p == nil {
		return "unknown"
	}
	return p.FullName()
}

func submitterEmail(p *models.EPerson) string {
	if p == nil {
		return "unknown"
	}
	return p.Email
}
