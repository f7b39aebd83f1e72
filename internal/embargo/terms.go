// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package embargo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ForeverDate is the fixed far-future date representing "embargo forever".
var ForeverDate = time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrInvalidTerms marks embargo terms that cannot be parsed into a
	// date.
	ErrInvalidTerms = errors.New("embargo terms cannot be interpreted")

	// ErrPastLiftDate marks terms that resolve to a date already passed.
	// Embargoes are set at submission time and must lie in the future.
	ErrPastLiftDate = errors.New("embargo lift date is in the past")
)

// liftDateLayout is the on-metadata representation of lift dates.
const liftDateLayout = "2006-01-02"

// TermsParser interprets the free-text terms field into a lift date.
// Implementations decide only the date; past-date rejection is the
// coordinator's job.
type TermsParser interface {
	ParseTerms(terms string) (time.Time, error)
}

// ISOTermsParser is the default parser: a configured token means
// "embargo forever", anything else must be an ISO-8601 date.
type ISOTermsParser struct {
	// ForeverToken is matched case-insensitively. Empty disables the
	// forever form.
	ForeverToken string
}

// ParseTerms implements TermsParser.
func (p *ISOTermsParser) ParseTerms(terms string) (time.Time, error) {
	terms = strings.TrimSpace(terms)
	if p.ForeverToken != "" && strings.EqualFold(terms, p.ForeverToken) {
		return ForeverDate, nil
	}
	t, err := time.Parse(liftDateLayout, terms)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTerms, terms)
	}
	return t.UTC(), nil
}
