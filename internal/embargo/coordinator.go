// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package embargo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/models"
)

// PolicyService is the slice of the authorization engine the coordinator
// needs: embargo-derived policy generation and read-only policy listing
// for the audit.
type PolicyService interface {
	GenerateAutomaticPolicies(ctx context.Context, embargoDate *time.Time, reason string,
		obj models.Object, owningCollection *models.Collection) error
	PoliciesFor(ctx context.Context, obj models.Object) ([]*models.ResourcePolicy, error)
}

// ItemStore persists item metadata changes and resolves owning
// collections. FindLiftable returns items whose recorded lift date in
// the given metadata field is on or before cutoff.
type ItemStore interface {
	Update(ctx context.Context, item *models.Item) error
	Collection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	FindLiftable(ctx context.Context, liftField string, cutoff time.Time) ([]*models.Item, error)
}

// Config holds the metadata field names the coordinator reads and writes.
type Config struct {
	// TermsField holds the submitter-supplied free-text embargo terms.
	TermsField string

	// LiftField records the resolved lift date, ISO-8601.
	LiftField string

	// AvailableField is stamped with the current instant on lift.
	AvailableField string

	// ForeverToken configures the default terms parser. Ignored when a
	// custom parser is supplied.
	ForeverToken string
}

// Violation is one READ policy found still in place during an embargo
// audit.
type Violation struct {
	PolicyID   uuid.UUID           `json:"policy_id"`
	ObjectType models.ResourceType `json:"object_type"`
	ObjectID   uuid.UUID           `json:"object_id"`
	ObjectName string              `json:"object_name"`
}

// Coordinator derives lift dates from item metadata and drives the
// policy service to restrict read access under embargo.
type Coordinator struct {
	items    ItemStore
	policies PolicyService
	parser   TermsParser
	config   *Config

	// now is swappable for tests.
	now func() time.Time
}

// NewCoordinator creates an embargo coordinator. A nil parser selects
// the default ISO-8601 parser with the configured forever token.
func NewCoordinator(items ItemStore, policies PolicyService, parser TermsParser,
	config *Config) (*Coordinator, error) {
	if items == nil {
		return nil, errors.New("item store is required")
	}
	if policies == nil {
		return nil, errors.New("policy service is required")
	}
	if config == nil || config.TermsField == "" || config.LiftField == "" ||
		config.AvailableField == "" {
		return nil, errors.New("embargo metadata fields are required")
	}
	if parser == nil {
		parser = &ISOTermsParser{ForeverToken: config.ForeverToken}
	}

	return &Coordinator{
		items:    items,
		policies: policies,
		parser:   parser,
		config:   config,
		now:      time.Now,
	}, nil
}

// ResolveLiftDate reads the terms field and interprets it through the
// parser. Returns nil when no terms are set. Terms that resolve to a
// past date are rejected: the same terms value can become invalid when
// resolved long after submission (a restore flow); that is accepted
// fail-safe behavior here.
func (c *Coordinator) ResolveLiftDate(ctx context.Context, item *models.Item) (*time.Time, error) {
	_ = ctx
	terms := item.FirstMetadata(c.config.TermsField)
	if terms == "" {
		return nil, nil
	}

	lift, err := c.parser.ParseTerms(terms)
	if err != nil {
		return nil, err
	}
	if lift.Before(c.now()) {
		return nil, fmt.Errorf("%w: %s", ErrPastLiftDate, lift.Format(liftDateLayout))
	}
	return &lift, nil
}

// SetEmbargo resolves the item's lift date, records it in the lift
// metadata field, and regenerates read policies on every bundle and
// bitstream except the always-world-readable license and metadata
// bundles. When the terms field is absent a previously recorded lift
// date is recovered from the lift field, so a restore flow re-applies
// the original embargo. With neither, SetEmbargo is a no-op.
func (c *Coordinator) SetEmbargo(ctx context.Context, item *models.Item) error {
	lift, err := c.ResolveLiftDate(ctx, item)
	if err != nil {
		return err
	}
	if lift == nil {
		lift, err = c.recordedLiftDate(item)
		if err != nil {
			return err
		}
	}
	if lift == nil {
		return nil
	}

	item.SetMetadata(c.config.LiftField, lift.UTC().Format(liftDateLayout))
	if err := c.items.Update(ctx, item); err != nil {
		return fmt.Errorf("record lift date: %w", err)
	}

	collection, err := c.items.Collection(ctx, item.OwningCollection)
	if err != nil {
		return fmt.Errorf("resolve owning collection: %w", err)
	}

	reason := item.FirstMetadata(c.config.TermsField)
	for bi := range item.Bundles {
		bundle := &item.Bundles[bi]
		if embargoExempt(bundle.Name) {
			continue
		}
		if err := c.policies.GenerateAutomaticPolicies(ctx, lift, reason, bundle, collection); err != nil {
			return fmt.Errorf("embargo bundle %s: %w", bundle.Name, err)
		}
		for i := range bundle.Bitstreams {
			bs := &bundle.Bitstreams[i]
			if err := c.policies.GenerateAutomaticPolicies(ctx, lift, reason, bs, collection); err != nil {
				return fmt.Errorf("embargo bitstream %s: %w", bs.Name, err)
			}
		}
	}

	embargoesSet.Inc()
	logging.Info().
		Str("item", item.ID.String()).
		Str("lift_date", lift.UTC().Format(liftDateLayout)).
		Msg("Embargo set")
	return nil
}

// LiftEmbargo clears the lift metadata field and stamps the
// date-available field with the current instant. Policies written at
// embargo time are left alone; they carry a start date that has now
// passed and are naturally superseded.
func (c *Coordinator) LiftEmbargo(ctx context.Context, item *models.Item) error {
	item.ClearMetadata(c.config.LiftField)
	item.SetMetadata(c.config.AvailableField, c.now().UTC().Format(time.RFC3339))
	if err := c.items.Update(ctx, item); err != nil {
		return fmt.Errorf("record lift: %w", err)
	}

	embargoesLifted.Inc()
	logging.Info().
		Str("item", item.ID.String()).
		Msg("Embargo lifted")
	return nil
}

// CheckEmbargo is a read-only audit: it reports any currently date-valid
// READ policy on the item's non-exempt bundles and bitstreams. Under
// correct enforcement there should be none; derivative TEXT and
// THUMBNAIL bundles are excluded since previews may remain readable.
func (c *Coordinator) CheckEmbargo(ctx context.Context, item *models.Item) ([]Violation, error) {
	var violations []Violation
	now := c.now()

	for bi := range item.Bundles {
		bundle := &item.Bundles[bi]
		if auditExempt(bundle.Name) {
			continue
		}
		objs := []models.Object{bundle}
		for i := range bundle.Bitstreams {
			objs = append(objs, &bundle.Bitstreams[i])
		}
		for _, obj := range objs {
			policies, err := c.policies.PoliciesFor(ctx, obj)
			if err != nil {
				return nil, fmt.Errorf("audit %s %s: %w", obj.ObjectType(), obj.ObjectID(), err)
			}
			for _, p := range policies {
				if p.Action != models.ActionRead || !p.DateValid(now) {
					continue
				}
				violations = append(violations, Violation{
					PolicyID:   p.ID,
					ObjectType: obj.ObjectType(),
					ObjectID:   obj.ObjectID(),
					ObjectName: obj.ObjectName(),
				})
				logging.Warn().
					Str("item", item.ID.String()).
					Str("object_type", obj.ObjectType().String()).
					Str("object", obj.ObjectID().String()).
					Str("policy", p.ID.String()).
					Msg("Read policy in place under embargo")
			}
		}
	}

	checkViolations.Add(float64(len(violations)))
	return violations, nil
}

// recordedLiftDate reads a previously written lift date back from the
// lift field.
func (c *Coordinator) recordedLiftDate(item *models.Item) (*time.Time, error) {
	recorded := item.FirstMetadata(c.config.LiftField)
	if recorded == "" {
		return nil, nil
	}
	t, err := time.Parse(liftDateLayout, recorded)
	if err != nil {
		return nil, fmt.Errorf("%w: recorded lift date %q", ErrInvalidTerms, recorded)
	}
	t = t.UTC()
	return &t, nil
}

// embargoExempt bundles stay world-readable regardless of embargo.
func embargoExempt(bundle string) bool {
	switch bundle {
	case models.BundleLicense, models.BundleMetadata, models.BundleLicenseBadge:
		return true
	}
	return false
}

// auditExempt additionally skips derivative bundles in CheckEmbargo.
func auditExempt(bundle string) bool {
	return embargoExempt(bundle) ||
		bundle == models.BundleText || bundle == models.BundleThumbnail
}
