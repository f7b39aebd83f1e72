// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package embargo

import (
	"context"
	"errors"
	"time"

	"github.com/athenaeum-org/athenaeum/internal/logging"
)

// Lifter periodically lifts embargoes whose lift date has passed.
// Implements suture.Service; run it under the supervision tree.
type Lifter struct {
	coordinator *Coordinator
	interval    time.Duration
}

// NewLifter creates the lifter service.
func NewLifter(coordinator *Coordinator, interval time.Duration) (*Lifter, error) {
	if coordinator == nil {
		return nil, errors.New("coordinator is required")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	return &Lifter{coordinator: coordinator, interval: interval}, nil
}

// Serve scans on a ticker until the context is canceled. An initial scan
// runs immediately so a restart does not delay overdue lifts by a full
// interval.
func (l *Lifter) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", l.interval).
		Msg("Embargo lifter started")

	l.scan(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Embargo lifter stopping")
			return ctx.Err()
		case <-ticker.C:
			l.scan(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (l *Lifter) String() string {
	return "embargo-lifter"
}

// scan lifts every item whose lift date is due. Per-item failures are
// logged and counted; one bad item must not block the rest.
func (l *Lifter) scan(ctx context.Context) {
	lifterScans.Inc()

	c := l.coordinator
	due, err := c.items.FindLiftable(ctx, c.config.LiftField, c.now())
	if err != nil {
		lifterErrors.Inc()
		logging.Error().Err(err).Msg("Embargo lifter scan failed")
		return
	}

	for _, item := range due {
		if ctx.Err() != nil {
			return
		}
		if err := c.LiftEmbargo(ctx, item); err != nil {
			lifterErrors.Inc()
			logging.Error().Err(err).
				Str("item", item.ID.String()).
				Msg("Embargo lift failed")
		}
	}
}
