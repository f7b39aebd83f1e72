// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/models"
)

// Metadata fields stamped at installation.
const (
	fieldAccessioned = "dc.date.accessioned"
	fieldAvailable   = "dc.date.available"
)

// ItemInstaller is the production Installer: it marks the item archived
// and stamps its accession and availability dates.
type ItemInstaller struct {
	items ItemStore
	now   func() time.Time
}

// NewItemInstaller creates an installer over the item store.
func NewItemInstaller(items ItemStore) *ItemInstaller {
	return &ItemInstaller{items: items, now: time.Now}
}

// InstallItem archives the workflow item's underlying item.
func (in *ItemInstaller) InstallItem(ctx context.Context, c *models.Context,
	wfi *models.WorkflowItem) (*models.Item, error) {
	item, err := in.items.Find(ctx, wfi.Item)
	if err != nil {
		return nil, fmt.Errorf("install: %w", err)
	}

	stamp := in.now().UTC().Format(time.RFC3339)
	item.Archived = true
	item.SetMetadata(fieldAccessioned, stamp)
	item.SetMetadata(fieldAvailable, stamp)

	if err := in.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("install: %w", err)
	}

	logging.Info().
		Str("item", item.ID.String()).
		Str("user", c.UserID()).
		Msg("Item installed into archive")
	return item, nil
}

// BitstreamProvenance describes the item's current files for provenance
// notes: a count line followed by one line per bitstream with its size
// and checksum.
func (in *ItemInstaller) BitstreamProvenance(_ context.Context, item *models.Item) (string, error) {
	var names []string
	total := 0
	for _, bundle := range item.Bundles {
		for _, bs := range bundle.Bitstreams {
			total++
			names = append(names, fmt.Sprintf("%s: %d bytes, checksum: %s",
				bs.Name, bs.SizeByte, bs.Checksum))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "No. of bitstreams: %d", total)
	for _, line := range names {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String(), nil
}
