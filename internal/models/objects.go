// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package models

import (
	"github.com/google/uuid"
)

// ResourceType identifies the kind of repository object a policy or
// operation targets.
type ResourceType int

const (
	ResourceBitstream ResourceType = iota
	ResourceBundle
	ResourceItem
	ResourceCollection
	ResourceCommunity
	ResourceSite
	ResourceGroup
	ResourceEPerson
)

// String returns the lowercase name used in logs and error messages.
func (t ResourceType) String() string {
	switch t {
	case ResourceBitstream:
		return "bitstream"
	case ResourceBundle:
		return "bundle"
	case ResourceItem:
		return "item"
	case ResourceCollection:
		return "collection"
	case ResourceCommunity:
		return "community"
	case ResourceSite:
		return "site"
	case ResourceGroup:
		return "group"
	case ResourceEPerson:
		return "eperson"
	default:
		return "unknown"
	}
}

// Object is the contract every policy-bearing repository object satisfies.
// Implementations return a stable identity; policies reference objects by
// (Type, ID) pairs.
type Object interface {
	ObjectID() uuid.UUID
	ObjectType() ResourceType
	ObjectName() string
}

// Well-known bundle names. LICENSE, METADATA, and the license-badge bundle
// stay world-readable under embargo; TEXT and THUMBNAIL are derivative
// bundles excluded from embargo audits.
const (
	BundleOriginal     = "ORIGINAL"
	BundleLicense      = "LICENSE"
	BundleMetadata     = "METADATA"
	BundleLicenseBadge = "CC-LICENSE"
	BundleText         = "TEXT"
	BundleThumbnail    = "THUMBNAIL"
)

// Community is a top-level container of collections. Parent is nil for
// root communities.
type Community struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Parent *uuid.UUID `json:"parent,omitempty"`
}

func (c *Community) ObjectID() uuid.UUID      { return c.ID }
func (c *Community) ObjectType() ResourceType { return ResourceCommunity }
func (c *Community) ObjectName() string       { return c.Name }

// Collection holds items and owns the three workflow role groups.
// A nil group means the corresponding review step is skipped.
type Collection struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Community uuid.UUID `json:"community"`

	// Workflow role groups by step: reviewers (1), approvers (2), editors (3).
	Step1Group *uuid.UUID `json:"step1_group,omitempty"`
	Step2Group *uuid.UUID `json:"step2_group,omitempty"`
	Step3Group *uuid.UUID `json:"step3_group,omitempty"`
}

func (c *Collection) ObjectID() uuid.UUID      { return c.ID }
func (c *Collection) ObjectType() ResourceType { return ResourceCollection }
func (c *Collection) ObjectName() string       { return c.Name }

// StepGroup returns the role group for workflow step 1, 2, or 3, or nil
// when the step has no group assigned.
func (c *Collection) StepGroup(step int) *uuid.UUID {
	switch step {
	case 1:
		return c.Step1Group
	case 2:
		return c.Step2Group
	case 3:
		return c.Step3Group
	default:
		return nil
	}
}

// MetadataValue is one descriptive metadata entry on an item. Field is the
// flat dotted name, e.g. "dc.description.provenance".
type MetadataValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Item is an archived or in-submission repository item.
type Item struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Submitter        uuid.UUID       `json:"submitter"`
	OwningCollection uuid.UUID       `json:"owning_collection"`
	Archived         bool            `json:"archived"`
	Withdrawn        bool            `json:"withdrawn"`
	Bundles          []Bundle        `json:"bundles,omitempty"`
	Metadata         []MetadataValue `json:"metadata,omitempty"`
}

func (i *Item) ObjectID() uuid.UUID      { return i.ID }
func (i *Item) ObjectType() ResourceType { return ResourceItem }
func (i *Item) ObjectName() string       { return i.Name }

// MetadataValues returns all values recorded for the given field, in
// insertion order.
func (i *Item) MetadataValues(field string) []string {
	var out []string
	for _, mv := range i.Metadata {
		if mv.Field == field {
			out = append(out, mv.Value)
		}
	}
	return out
}

// FirstMetadata returns the first value for the field, or "" when absent.
func (i *Item) FirstMetadata(field string) string {
	for _, mv := range i.Metadata {
		if mv.Field == field {
			return mv.Value
		}
	}
	return ""
}

// AddMetadata appends a value for the field.
func (i *Item) AddMetadata(field, value string) {
	i.Metadata = append(i.Metadata, MetadataValue{Field: field, Value: value})
}

// ClearMetadata removes every value recorded for the field.
func (i *Item) ClearMetadata(field string) {
	kept := i.Metadata[:0]
	for _, mv := range i.Metadata {
		if mv.Field != field {
			kept = append(kept, mv)
		}
	}
	i.Metadata = kept
}

// SetMetadata replaces all values for the field with a single value.
func (i *Item) SetMetadata(field, value string) {
	i.ClearMetadata(field)
	i.AddMetadata(field, value)
}

// Bundle groups bitstreams within an item (ORIGINAL, LICENSE, THUMBNAIL...).
type Bundle struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Item       uuid.UUID   `json:"item"`
	Bitstreams []Bitstream `json:"bitstreams,omitempty"`
}

func (b *Bundle) ObjectID() uuid.UUID      { return b.ID }
func (b *Bundle) ObjectType() ResourceType { return ResourceBundle }
func (b *Bundle) ObjectName() string       { return b.Name }

// Bitstream is a single stored file.
type Bitstream struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Bundle   uuid.UUID `json:"bundle"`
	SizeByte int64     `json:"size_bytes"`
	Checksum string    `json:"checksum,omitempty"`
}

func (b *Bitstream) ObjectID() uuid.UUID      { return b.ID }
func (b *Bitstream) ObjectType() ResourceType { return ResourceBitstream }
func (b *Bitstream) ObjectName() string       { return b.Name }
