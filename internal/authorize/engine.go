// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

// Config holds configuration for the authorization engine.
type Config struct {
	// MaxParentDepth caps the inherited-admin walk up the containment
	// hierarchy. The hierarchy is expected to be shallow (bitstream ->
	// bundle -> item -> collection -> community chain plus
	// sub-communities); the cap defends against miswired parent data.
	MaxParentDepth int

	// AuditEnabled records every decision through the audit logger.
	AuditEnabled bool
}

// DefaultConfig returns default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxParentDepth: 16,
		AuditEnabled:   true,
	}
}

// Engine evaluates authorization decisions against the policy store and
// group membership, and owns all policy mutation primitives.
type Engine struct {
	policies PolicyStore
	groups   GroupMembership
	resolver AdminObjectResolver
	updater  ObjectUpdater
	config   *Config
	audit    *AuditLogger

	// now is swappable for date-validity tests.
	now func() time.Time
}

// NewEngine creates an authorization engine. All collaborators are
// required except updater, which may be nil when no last-modified side
// effect is wanted (tests, read-only tooling).
func NewEngine(policies PolicyStore, groups GroupMembership, resolver AdminObjectResolver,
	updater ObjectUpdater, config *Config) (*Engine, error) {
	if policies == nil {
		return nil, errors.New("policy store is required")
	}
	if groups == nil {
		return nil, errors.New("group membership is required")
	}
	if resolver == nil {
		return nil, errors.New("admin object resolver is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxParentDepth <= 0 {
		config.MaxParentDepth = 16
	}

	e := &Engine{
		policies: policies,
		groups:   groups,
		resolver: resolver,
		updater:  updater,
		config:   config,
		now:      time.Now,
	}
	if config.AuditEnabled {
		e.audit = NewAuditLogger(nil)
	}
	return e, nil
}

// Close releases engine resources.
func (e *Engine) Close() {
	if e.audit != nil {
		e.audit.Close()
	}
}

// Authorize succeeds iff the context may perform action on obj. With
// useInheritance set, administrators of the object's inheritance-admin
// target (and its containment chain) are also granted. A nil obj always
// fails with a denial naming the attempted action and user.
func (e *Engine) Authorize(ctx context.Context, c *models.Context, obj models.Object,
	action models.Action, useInheritance bool) error {
	start := e.now()
	err := e.authorize(ctx, c, obj, action, useInheritance)
	e.record(c, obj, action, start, err)
	return err
}

func (e *Engine) authorize(ctx context.Context, c *models.Context, obj models.Object,
	action models.Action, useInheritance bool) error {
	if c.IgnoreAuthorization {
		return nil
	}
	if obj == nil {
		return newDenied(c, nil, action)
	}

	var adminObj models.Object
	if useInheritance {
		var err error
		adminObj, err = e.resolver.AdminObject(ctx, obj, action)
		if err != nil {
			return fmt.Errorf("resolve admin object: %w", err)
		}
	}
	if isAdmin, err := e.isAdminOf(ctx, c, adminObj); err != nil {
		return err
	} else if isAdmin {
		return nil
	}

	policies, err := e.policies.FindByAction(ctx, obj, action)
	if err != nil {
		return fmt.Errorf("find policies: %w", err)
	}

	now := e.now()
	for _, p := range policies {
		if !p.DateValid(now) {
			continue
		}
		if p.EPerson != nil && c.CurrentUser != nil && *p.EPerson == c.CurrentUser.ID {
			return nil
		}
		if p.Group != nil {
			member, err := e.groups.IsMember(ctx, c, *p.Group)
			if err != nil {
				return fmt.Errorf("check group membership: %w", err)
			}
			if member {
				return nil
			}
		}
	}

	return newDenied(c, obj, action)
}

// AuthorizeAnyOf tries each action in order and succeeds on the first
// grant. When every action is denied, the error reported is the one from
// the first attempted action, not the last.
func (e *Engine) AuthorizeAnyOf(ctx context.Context, c *models.Context, obj models.Object,
	actions []models.Action, useInheritance bool) error {
	var firstErr error
	for _, action := range actions {
		err := e.Authorize(ctx, c, obj, action, useInheritance)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if !IsDenied(err) {
			// Store or resolver failure: propagate, do not keep probing.
			return err
		}
	}
	return firstErr
}

// AuthorizeBoolean is Authorize converted to a bool; it never returns an
// error. Store failures are treated as denials.
func (e *Engine) AuthorizeBoolean(ctx context.Context, c *models.Context, obj models.Object,
	action models.Action, useInheritance bool) bool {
	return e.Authorize(ctx, c, obj, action, useInheritance) == nil
}

// AuthorizeAnyOfBoolean is AuthorizeAnyOf converted to a bool.
func (e *Engine) AuthorizeAnyOfBoolean(ctx context.Context, c *models.Context, obj models.Object,
	actions []models.Action, useInheritance bool) bool {
	return e.AuthorizeAnyOf(ctx, c, obj, actions, useInheritance) == nil
}

// IsAdmin reports whether the context is a system administrator: either
// ignore-authorization is set or the current user is a member of the
// Administrators group.
func (e *Engine) IsAdmin(ctx context.Context, c *models.Context) (bool, error) {
	if c.IgnoreAuthorization {
		return true, nil
	}
	if c.CurrentUser == nil {
		return false, nil
	}
	return e.groups.IsMemberOfName(ctx, c, models.GroupAdministrators)
}

// IsAdminOf reports whether the context administers obj, either as a
// system administrator or through a date-valid ADMIN policy on obj or any
// ancestor in the containment hierarchy. Granting ADMIN on a community
// therefore covers every collection and item beneath it.
func (e *Engine) IsAdminOf(ctx context.Context, c *models.Context, obj models.Object) (bool, error) {
	return e.isAdminOf(ctx, c, obj)
}

func (e *Engine) isAdminOf(ctx context.Context, c *models.Context, obj models.Object) (bool, error) {
	if isAdmin, err := e.IsAdmin(ctx, c); err != nil || isAdmin {
		return isAdmin, err
	}
	if obj == nil {
		return false, nil
	}

	// Iterative parent-chain walk with a visited set; the containment
	// hierarchy should be acyclic but miswired parent data must not spin.
	type objKey struct {
		t  models.ResourceType
		id uuid.UUID
	}
	visited := make(map[objKey]struct{})

	cur := obj
	for depth := 0; cur != nil && depth < e.config.MaxParentDepth; depth++ {
		key := objKey{cur.ObjectType(), cur.ObjectID()}
		if _, seen := visited[key]; seen {
			return false, fmt.Errorf("containment cycle at %s %s", key.t, key.id)
		}
		visited[key] = struct{}{}

		granted, err := e.hasDirectAdminPolicy(ctx, c, cur)
		if err != nil || granted {
			return granted, err
		}

		parent, err := e.resolver.ParentObject(ctx, cur)
		if err != nil {
			return false, fmt.Errorf("resolve parent of %s %s: %w", key.t, key.id, err)
		}
		cur = parent
	}
	return false, nil
}

// hasDirectAdminPolicy scans date-valid ADMIN policies directly on obj.
func (e *Engine) hasDirectAdminPolicy(ctx context.Context, c *models.Context, obj models.Object) (bool, error) {
	policies, err := e.policies.FindByAction(ctx, obj, models.ActionAdmin)
	if err != nil {
		return false, fmt.Errorf("find admin policies: %w", err)
	}
	now := e.now()
	for _, p := range policies {
		if !p.DateValid(now) {
			continue
		}
		if p.EPerson != nil && c.CurrentUser != nil && *p.EPerson == c.CurrentUser.ID {
			return true, nil
		}
		if p.Group != nil {
			member, err := e.groups.IsMember(ctx, c, *p.Group)
			if err != nil {
				return false, err
			}
			if member {
				return true, nil
			}
		}
	}
	return false, nil
}

// record emits metrics and the audit event for one decision.
func (e *Engine) record(c *models.Context, obj models.Object, action models.Action,
	start time.Time, err error) {
	duration := e.now().Sub(start)
	allowed := err == nil

	objType := "nil"
	objID := ""
	if obj != nil {
		objType = obj.ObjectType().String()
		objID = obj.ObjectID().String()
	}

	RecordDecision(objType, action.String(), allowed, duration)

	if e.audit != nil {
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		e.audit.LogDecision(&AuditEvent{
			ActorID:    c.UserID(),
			ObjectType: objType,
			ObjectID:   objID,
			Action:     action.String(),
			Decision:   allowed,
			Reason:     reason,
			Duration:   duration,
		})
	}
}

// touch propagates the last-modified side effect, when an updater is
// wired. Touch failures are logged by the caller's store layer, not here;
// they propagate opaquely.
func (e *Engine) touch(ctx context.Context, obj models.Object) error {
	if e.updater == nil || obj == nil {
		return nil
	}
	return e.updater.TouchLastModified(ctx, obj)
}
