// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package embargo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// embargoWorld wires a coordinator over in-memory fakes with a fixed
// clock.
type embargoWorld struct {
	coordinator *Coordinator
	items       *memItems
	policies    *fakePolicies
	now         time.Time
}

func newEmbargoWorld(t *testing.T) *embargoWorld {
	t.Helper()

	w := &embargoWorld{
		items:    newMemItems(),
		policies: &fakePolicies{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	coordinator, err := NewCoordinator(w.items, w.policies, nil, &Config{
		TermsField:     "dc.embargo.terms",
		LiftField:      "dc.embargo.lift",
		AvailableField: "dc.date.available",
		ForeverToken:   "forever",
	})
	if err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}
	coordinator.now = func() time.Time { return w.now }
	w.coordinator = coordinator
	return w
}

// newEmbargoItem builds an item with an ORIGINAL bundle holding one
// bitstream, a LICENSE bundle, and a THUMBNAIL bundle, owned by a
// registered collection.
func newEmbargoItem(w *embargoWorld, terms string) *models.Item {
	collection := &models.Collection{ID: uuid.New(), Name: "theses"}
	w.items.addCollection(collection)

	item := &models.Item{
		ID:               uuid.New(),
		Name:             "thesis",
		OwningCollection: collection.ID,
		Bundles: []models.Bundle{
			{ID: uuid.New(), Name: models.BundleOriginal, Bitstreams: []models.Bitstream{
				{ID: uuid.New(), Name: "thesis.pdf"},
			}},
			{ID: uuid.New(), Name: models.BundleLicense, Bitstreams: []models.Bitstream{
				{ID: uuid.New(), Name: "license.txt"},
			}},
			{ID: uuid.New(), Name: models.BundleThumbnail, Bitstreams: []models.Bitstream{
				{ID: uuid.New(), Name: "thumb.png"},
			}},
		},
	}
	if terms != "" {
		item.AddMetadata("dc.embargo.terms", terms)
	}
	w.items.addItem(item)
	return item
}

func TestResolveLiftDate(t *testing.T) {
	want2099 := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		terms   string
		want    *time.Time
		wantErr error
	}{
		{"no terms resolves to nil", "", nil, nil},
		{"future iso date", "2099-01-01", &want2099, nil},
		{"forever token", "forever", &ForeverDate, nil},
		{"forever token case insensitive", "FOREVER", &ForeverDate, nil},
		{"garbage terms rejected", "next tuesday", nil, ErrInvalidTerms},
		{"past date rejected", "2020-01-01", nil, ErrPastLiftDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEmbargoWorld(t)
			item := newEmbargoItem(w, tt.terms)

			got, err := w.coordinator.ResolveLiftDate(context.Background(), item)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveLiftDate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLiftDate() error = %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ResolveLiftDate() = %v, want nil", got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("ResolveLiftDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetEmbargo_SkipsExemptBundles(t *testing.T) {
	w := newEmbargoWorld(t)
	item := newEmbargoItem(w, "2099-01-01")

	if err := w.coordinator.SetEmbargo(context.Background(), item); err != nil {
		t.Fatalf("SetEmbargo() error = %v", err)
	}

	if got := item.FirstMetadata("dc.embargo.lift"); got != "2099-01-01" {
		t.Errorf("lift field = %q, want 2099-01-01", got)
	}

	// ORIGINAL bundle and its bitstream get policies; LICENSE does not.
	// The THUMBNAIL bundle is not embargo-exempt, only audit-exempt.
	original := &item.Bundles[0]
	if calls := w.policies.callsFor(original.ID); len(calls) != 1 {
		t.Errorf("generate calls for ORIGINAL bundle = %d, want 1", len(calls))
	}
	if calls := w.policies.callsFor(original.Bitstreams[0].ID); len(calls) != 1 {
		t.Errorf("generate calls for ORIGINAL bitstream = %d, want 1", len(calls))
	}
	license := &item.Bundles[1]
	if calls := w.policies.callsFor(license.ID); len(calls) != 0 {
		t.Errorf("generate calls for LICENSE bundle = %d, want 0", len(calls))
	}
	if calls := w.policies.callsFor(license.Bitstreams[0].ID); len(calls) != 0 {
		t.Errorf("generate calls for LICENSE bitstream = %d, want 0", len(calls))
	}

	// Generated policies carry the lift date and the terms as reason.
	calls := w.policies.callsFor(original.ID)
	if calls[0].lift == nil || calls[0].lift.Year() != 2099 {
		t.Errorf("generated lift date = %v, want year 2099", calls[0].lift)
	}
	if calls[0].reason != "2099-01-01" {
		t.Errorf("generated reason = %q, want the terms text", calls[0].reason)
	}
}

func TestSetEmbargo_RecoversRecordedLiftDate(t *testing.T) {
	w := newEmbargoWorld(t)
	item := newEmbargoItem(w, "")
	item.AddMetadata("dc.embargo.lift", "2099-06-01")

	if err := w.coordinator.SetEmbargo(context.Background(), item); err != nil {
		t.Fatalf("SetEmbargo() error = %v", err)
	}

	original := &item.Bundles[0]
	calls := w.policies.callsFor(original.ID)
	if len(calls) != 1 {
		t.Fatalf("generate calls = %d, want 1", len(calls))
	}
	want := time.Date(2099, 6, 1, 0, 0, 0, 0, time.UTC)
	if calls[0].lift == nil || !calls[0].lift.Equal(want) {
		t.Errorf("recovered lift date = %v, want %v", calls[0].lift, want)
	}
}

func TestSetEmbargo_NoTermsIsNoop(t *testing.T) {
	w := newEmbargoWorld(t)
	item := newEmbargoItem(w, "")

	if err := w.coordinator.SetEmbargo(context.Background(), item); err != nil {
		t.Fatalf("SetEmbargo() error = %v", err)
	}
	if n := w.policies.callCount(); n != 0 {
		t.Errorf("generate calls = %d, want 0", n)
	}
	if got := item.FirstMetadata("dc.embargo.lift"); got != "" {
		t.Errorf("lift field = %q, want empty", got)
	}
}

func TestSetEmbargo_PastTermsDoNotCorruptItem(t *testing.T) {
	w := newEmbargoWorld(t)
	item := newEmbargoItem(w, "2020-01-01")

	err := w.coordinator.SetEmbargo(context.Background(), item)
	if !errors.Is(err, ErrPastLiftDate) {
		t.Fatalf("SetEmbargo() error = %v, want ErrPastLiftDate", err)
	}
	// The check happens before any metadata write.
	if got := item.FirstMetadata("dc.embargo.lift"); got != "" {
		t.Errorf("lift field = %q, want empty after rejected terms", got)
	}
	if n := w.policies.callCount(); n != 0 {
		t.Errorf("generate calls = %d, want 0", n)
	}
}

func TestEmbargoRoundTrip(t *testing.T) {
	w := newEmbargoWorld(t)
	item := newEmbargoItem(w, "2099-01-01")

	if err := w.coordinator.SetEmbargo(context.Background(), item); err != nil {
		t.Fatalf("SetEmbargo() error = %v", err)
	}

	// Under embargo the generated policies are future-dated, so the audit
	// finds no READ policy currently in place.
	violations, err := w.coordinator.CheckEmbargo(context.Background(), item)
	if err != nil {
		t.Fatalf("CheckEmbargo() error = %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("CheckEmbargo() violations = %d, want 0", len(violations))
	}

	if err := w.coordinator.LiftEmbargo(context.Background(), item); err != nil {
		t.Fatalf("LiftEmbargo() error = %v", err)
	}
	if got := item.FirstMetadata("dc.embargo.lift"); got != "" {
		t.Errorf("lift field after lift = %q, want empty", got)
	}
	if got := item.FirstMetadata("dc.date.available"); got == "" {
		t.Error("available field not stamped on lift")
	}

	// Lifting leaves the policies alone.
	original := &item.Bundles[0]
	after, err := w.policies.PoliciesFor(context.Background(), original)
	if err != nil {
		t.Fatalf("PoliciesFor() error = %v", err)
	}
	if len(after) == 0 {
		t.Error("embargo policies removed on lift; they should persist")
	}
}

func TestCheckEmbargo_ReportsValidReadPolicies(t *testing.T) {
	w := newEmbargoWorld(t)
	item := newEmbargoItem(w, "")

	// A currently valid READ policy on the ORIGINAL bitstream is a
	// violation; the same on THUMBNAIL is excluded from the audit.
	group := uuid.New()
	original := &item.Bundles[0]
	thumbnail := &item.Bundles[2]
	w.policies.addPolicy(&models.ResourcePolicy{
		ID:           uuid.New(),
		ResourceType: models.ResourceBitstream,
		ResourceID:   original.Bitstreams[0].ID,
		Action:       models.ActionRead,
		Group:        &group,
	})
	w.policies.addPolicy(&models.ResourcePolicy{
		ID:           uuid.New(),
		ResourceType: models.ResourceBitstream,
		ResourceID:   thumbnail.Bitstreams[0].ID,
		Action:       models.ActionRead,
		Group:        &group,
	})
	// A WRITE policy is not a violation.
	w.policies.addPolicy(&models.ResourcePolicy{
		ID:           uuid.New(),
		ResourceType: models.ResourceBitstream,
		ResourceID:   original.Bitstreams[0].ID,
		Action:       models.ActionWrite,
		Group:        &group,
	})

	violations, err := w.coordinator.CheckEmbargo(context.Background(), item)
	if err != nil {
		t.Fatalf("CheckEmbargo() error = %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("CheckEmbargo() violations = %d, want 1", len(violations))
	}
	if violations[0].ObjectID != original.Bitstreams[0].ID {
		t.Errorf("violation object = %v, want the ORIGINAL bitstream", violations[0].ObjectID)
	}
}

func TestLifter_ScanLiftsDueItems(t *testing.T) {
	w := newEmbargoWorld(t)

	due := newEmbargoItem(w, "")
	due.AddMetadata("dc.embargo.lift", "2026-02-01")
	notDue := newEmbargoItem(w, "")
	notDue.AddMetadata("dc.embargo.lift", "2099-01-01")

	lifter, err := NewLifter(w.coordinator, time.Hour)
	if err != nil {
		t.Fatalf("NewLifter() error = %v", err)
	}
	lifter.scan(context.Background())

	if got := due.FirstMetadata("dc.embargo.lift"); got != "" {
		t.Errorf("due item lift field = %q, want cleared", got)
	}
	if got := due.FirstMetadata("dc.date.available"); got == "" {
		t.Error("due item available field not stamped")
	}
	if got := notDue.FirstMetadata("dc.embargo.lift"); got != "2099-01-01" {
		t.Errorf("not-due item lift field = %q, want untouched", got)
	}
}
