// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package config loads and validates Athenaeum configuration via Koanf v2
// with layered sources (highest priority wins):
//
//  1. Built-in defaults (struct provider)
//  2. Optional YAML config file
//  3. Environment variables (ATHENAEUM_ prefix)
//
// Example: ATHENAEUM_EMBARGO_TERMS_FIELD overrides embargo.terms_field.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the subsystem.
type Config struct {
	Logging  LoggingConfig  `koanf:"logging"`
	Store    StoreConfig    `koanf:"store"`
	Embargo  EmbargoConfig  `koanf:"embargo"`
	Workflow WorkflowConfig `koanf:"workflow"`
	Notify   NotifyConfig   `koanf:"notify"`
}

// LoggingConfig configures the zerolog facade.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig configures the embedded BadgerDB store.
type StoreConfig struct {
	// Path is the on-disk location of the store. Ignored when InMemory is
	// set.
	Path string `koanf:"path" validate:"required_without=InMemory"`

	// InMemory runs the store without persistence. For tests and
	// ephemeral deployments only.
	InMemory bool `koanf:"in_memory"`
}

// EmbargoConfig configures embargo metadata fields and the lifter.
type EmbargoConfig struct {
	// TermsField holds the submitter-supplied free-text embargo terms.
	TermsField string `koanf:"terms_field" validate:"required"`

	// LiftField records the resolved lift date.
	LiftField string `koanf:"lift_field" validate:"required"`

	// AvailableField is stamped with the current instant when an embargo
	// is lifted.
	AvailableField string `koanf:"available_field" validate:"required"`

	// ForeverToken in the terms field means "embargo forever".
	ForeverToken string `koanf:"forever_token" validate:"required"`

	// LifterEnabled runs the periodic lifter service.
	LifterEnabled bool `koanf:"lifter_enabled"`

	// LifterInterval is how often the lifter scans for due embargoes.
	LifterInterval time.Duration `koanf:"lifter_interval" validate:"min=1m"`
}

// WorkflowConfig configures the submission workflow engine.
type WorkflowConfig struct {
	// CurationEnabled consults the curation hook before each advance.
	CurationEnabled bool `koanf:"curation_enabled"`

	// ProvenanceField receives submission/approval/rejection audit notes.
	ProvenanceField string `koanf:"provenance_field" validate:"required"`
}

// NotifyConfig configures notification dispatch resilience.
type NotifyConfig struct {
	// From is the sender address recorded on outgoing notifications.
	From string `koanf:"from" validate:"omitempty,email"`

	// RatePerSecond caps notification fan-out; 0 disables limiting.
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gte=0"`

	// Burst is the rate limiter burst size.
	Burst int `koanf:"burst" validate:"gte=0"`

	// BreakerFailures trips the circuit breaker after this many
	// consecutive delivery failures.
	BreakerFailures int `koanf:"breaker_failures" validate:"gte=1"`

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"min=1s"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// layered first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Path:     "/data/athenaeum",
			InMemory: false,
		},
		Embargo: EmbargoConfig{
			TermsField:     "dc.embargo.terms",
			LiftField:      "dc.embargo.lift",
			AvailableField: "dc.date.available",
			ForeverToken:   "forever",
			LifterEnabled:  true,
			LifterInterval: 1 * time.Hour,
		},
		Workflow: WorkflowConfig{
			CurationEnabled: true,
			ProvenanceField: "dc.description.provenance",
		},
		Notify: NotifyConfig{
			From:            "",
			RatePerSecond:   10,
			Burst:           20,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

// Validate checks the configuration. Struct tags cover field-level rules;
// cross-field rules are checked by hand.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: field %s failed rule %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}

	// The three embargo metadata fields must be distinct; a shared field
	// would make liftEmbargo erase the terms history.
	if c.Embargo.TermsField == c.Embargo.LiftField ||
		c.Embargo.TermsField == c.Embargo.AvailableField ||
		c.Embargo.LiftField == c.Embargo.AvailableField {
		return fmt.Errorf("config: embargo terms/lift/available fields must be distinct")
	}

	return nil
}
