// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/models"
)

// DispatcherConfig configures notification dispatch resilience.
type DispatcherConfig struct {
	// RatePerSecond caps fan-out to the delivery gateway; 0 disables
	// limiting.
	RatePerSecond float64

	// Burst is the limiter burst size.
	Burst int

	// BreakerFailures trips the breaker after this many consecutive
	// delivery failures.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// DefaultDispatcherConfig returns default dispatcher configuration.
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		RatePerSecond:   10,
		Burst:           20,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Dispatcher wraps a Notifier with a rate limiter and circuit breaker.
// Send never returns an error: a failed email must not block a workflow
// transition or an embargo change, so failures are logged and counted.
type Dispatcher struct {
	notifier Notifier
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

// NewDispatcher creates a dispatcher around notifier. A nil config uses
// defaults; a nil notifier yields a dispatcher that drops everything
// (silent deployments).
func NewDispatcher(notifier Notifier, config *DispatcherConfig) *Dispatcher {
	if config == nil {
		config = DefaultDispatcherConfig()
	}

	d := &Dispatcher{notifier: notifier}
	if config.RatePerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), config.Burst)
	}

	failures := config.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	d.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "notifier",
		Timeout: config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Notifier circuit breaker state change")
		},
	})
	return d
}

// LogNotifier is a Notifier that records notifications in the log
// instead of delivering them. Deployments without an email gateway wire
// this in.
type LogNotifier struct{}

// Send logs the notification and reports success.
func (LogNotifier) Send(_ context.Context, template string, recipient *models.EPerson,
	args map[string]string) error {
	logging.Info().
		Str("template", template).
		Str("recipient", recipient.Email).
		Interface("args", args).
		Msg("Notification (log delivery)")
	return nil
}

// Send delivers one notification, best effort.
func (d *Dispatcher) Send(ctx context.Context, template string, recipient *models.EPerson,
	args map[string]string) {
	if d.notifier == nil || recipient == nil {
		return
	}

	if d.limiter != nil && !d.limiter.Allow() {
		notificationsTotal.WithLabelValues(template, "throttled").Inc()
		logging.Warn().
			Str("template", template).
			Str("recipient", recipient.Email).
			Msg("Notification throttled")
		return
	}

	_, err := d.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, d.notifier.Send(ctx, template, recipient, args)
	})
	if err != nil {
		status := "failed"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "dropped"
		}
		notificationsTotal.WithLabelValues(template, status).Inc()
		logging.Error().Err(err).
			Str("template", template).
			Str("recipient", recipient.Email).
			Msg("Notification delivery failed")
		return
	}
	notificationsTotal.WithLabelValues(template, "sent").Inc()
}
