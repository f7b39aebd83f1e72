// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/models"
)

// Config holds workflow engine configuration.
type Config struct {
	// CurationEnabled consults the curation hook before each advance.
	CurationEnabled bool

	// ProvenanceField receives submission/approval/rejection notes.
	ProvenanceField string
}

// DefaultConfig returns default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		CurationEnabled: true,
		ProvenanceField: "dc.description.provenance",
	}
}

// poolGrantActions are the TYPE_WORKFLOW policies granted to a step's
// role group on the item while the item sits in that step.
var poolGrantActions = []models.Action{
	models.ActionRead, models.ActionWrite, models.ActionAdd,
	models.ActionRemove, models.ActionDelete,
}

// Deps bundles the engine's collaborators. Curation, EmbargoSetter,
// Notifier, and Publisher are optional; the rest are required.
type Deps struct {
	Workflows  WorkflowStore
	Tasks      TaskListStore
	Workspaces WorkspaceStore
	Items      ItemStore
	Directory  Directory
	Policies   PolicyService
	Installer  Installer
	Curation   CurationHook
	Embargo    EmbargoSetter
	Notifier   Notifier
	Publisher  message.Publisher
}

// Engine drives the submission review state machine.
type Engine struct {
	deps       Deps
	dispatcher *Dispatcher
	config     *Config

	// now is swappable for tests.
	now func() time.Time
}

// NewEngine creates a workflow engine.
func NewEngine(deps Deps, dispatcher *Dispatcher, config *Config) (*Engine, error) {
	switch {
	case deps.Workflows == nil:
		return nil, errors.New("workflow store is required")
	case deps.Tasks == nil:
		return nil, errors.New("task list store is required")
	case deps.Workspaces == nil:
		return nil, errors.New("workspace store is required")
	case deps.Items == nil:
		return nil, errors.New("item store is required")
	case deps.Directory == nil:
		return nil, errors.New("directory is required")
	case deps.Policies == nil:
		return nil, errors.New("policy service is required")
	case deps.Installer == nil:
		return nil, errors.New("installer is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.ProvenanceField == "" {
		config.ProvenanceField = "dc.description.provenance"
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher(deps.Notifier, nil)
	}

	return &Engine{
		deps:       deps,
		dispatcher: dispatcher,
		config:     config,
		now:        time.Now,
	}, nil
}

// Start converts a workspace item into a workflow item at SUBMIT,
// records a submission provenance note, deletes the workspace item, and
// immediately advances out of SUBMIT.
func (e *Engine) Start(ctx context.Context, c *models.Context,
	wsi *models.WorkspaceItem) (*models.WorkflowItem, error) {
	return e.start(ctx, c, wsi, false)
}

// StartWithoutNotify is Start with the first pool-entry notification
// suppressed. The suppression is one-shot: it is carried on the workflow
// item and consumed by the first pool transition, so later pool entries
// for the same item notify normally. Used for bulk imports.
func (e *Engine) StartWithoutNotify(ctx context.Context, c *models.Context,
	wsi *models.WorkspaceItem) (*models.WorkflowItem, error) {
	return e.start(ctx, c, wsi, true)
}

func (e *Engine) start(ctx context.Context, c *models.Context, wsi *models.WorkspaceItem,
	suppressNotify bool) (*models.WorkflowItem, error) {
	item, err := e.deps.Items.Find(ctx, wsi.Item)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}

	bitstreams, err := e.deps.Installer.BitstreamProvenance(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("bitstream provenance: %w", err)
	}
	item.AddMetadata(e.config.ProvenanceField,
		submissionProvenance(c.CurrentUser, e.now(), bitstreams))
	if err := e.deps.Items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("record submission provenance: %w", err)
	}

	wfi := &models.WorkflowItem{
		ID:               uuid.New(),
		Item:             wsi.Item,
		Collection:       wsi.Collection,
		State:            models.StateSubmit,
		MultipleTitles:   wsi.MultipleTitles,
		PublishedBefore:  wsi.PublishedBefore,
		MultipleFiles:    wsi.MultipleFiles,
		NotifySuppressed: suppressNotify,
	}
	if err := e.deps.Workflows.Save(ctx, wfi); err != nil {
		return nil, fmt.Errorf("save workflow item: %w", err)
	}
	if err := e.deps.Workspaces.Delete(ctx, wsi.ID); err != nil {
		return nil, fmt.Errorf("delete workspace item: %w", err)
	}

	logging.Info().
		Str("workflow_item", wfi.ID.String()).
		Str("item", wfi.Item.String()).
		Str("collection", wfi.Collection.String()).
		Msg("Submission started")

	if _, err := e.Advance(ctx, c, wfi, true, true); err != nil {
		return nil, err
	}
	return wfi, nil
}

// Advance moves a claimed (or freshly submitted) workflow item to the
// next step. With record set, an approval provenance note is appended
// for steps 1 and 2; editors at step 3 record no decision since they
// cannot reject. Calling Advance from a pool state is a caller error and
// a logged no-op. Returns true when the item reached the archive.
func (e *Engine) Advance(ctx context.Context, c *models.Context, wfi *models.WorkflowItem,
	curate, record bool) (bool, error) {
	if e.config.CurationEnabled && curate && e.deps.Curation != nil {
		needs, err := e.deps.Curation.NeedsCuration(ctx, c, wfi)
		if err != nil {
			return false, fmt.Errorf("curation check: %w", err)
		}
		if needs {
			ok, err := e.deps.Curation.DoCuration(ctx, c, wfi)
			if err != nil {
				return false, fmt.Errorf("curation: %w", err)
			}
			if !ok {
				// Curation queued a task or rejected the item; halt
				// without changing state.
				logging.Info().
					Str("workflow_item", wfi.ID.String()).
					Msg("Advance halted by curation")
				return false, nil
			}
		}
	}

	switch wfi.State {
	case models.StateSubmit:
		return e.doState(ctx, c, wfi, models.StateStep1Pool, nil)

	case models.StateStep1, models.StateStep2:
		if record {
			if err := e.recordApproval(ctx, c, wfi); err != nil {
				return false, err
			}
		}
		next := models.StateStep2Pool
		if wfi.State == models.StateStep2 {
			next = models.StateStep3Pool
		}
		return e.doState(ctx, c, wfi, next, nil)

	case models.StateStep3:
		return e.doState(ctx, c, wfi, models.StateArchive, nil)

	case models.StateStep1Pool, models.StateStep2Pool, models.StateStep3Pool,
		models.StateArchive:
		e.logStateViolation("advance", wfi)
		return false, nil

	default:
		e.logStateViolation("advance", wfi)
		return false, nil
	}
}

// Claim assigns a pooled task to eperson, moving the item to the
// corresponding claimed state. From any non-pool state it is a logged
// no-op. A lost race against a concurrent claimant surfaces as
// ErrStateConflict from the store.
func (e *Engine) Claim(ctx context.Context, c *models.Context, wfi *models.WorkflowItem,
	eperson uuid.UUID) error {
	if !wfi.State.IsPool() {
		e.logStateViolation("claim", wfi)
		return nil
	}
	_, err := e.doState(ctx, c, wfi, wfi.State.Claimed(), &eperson)
	return err
}

// Unclaim returns a claimed task to its pool. The pool membership is
// re-derived for the whole role group, not restored to the previous
// claimant set. From any non-claimed state it is a logged no-op.
func (e *Engine) Unclaim(ctx context.Context, c *models.Context, wfi *models.WorkflowItem) error {
	if !wfi.State.IsClaimed() {
		e.logStateViolation("unclaim", wfi)
		return nil
	}
	_, err := e.doState(ctx, c, wfi, wfi.State.Pool(), nil)
	return err
}

// Abort unconditionally returns the item to the submitter's workspace,
// regardless of current state. Administrators only.
func (e *Engine) Abort(ctx context.Context, c *models.Context,
	wfi *models.WorkflowItem) (*models.WorkspaceItem, error) {
	admin, err := e.deps.Policies.IsAdmin(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("admin check: %w", err)
	}
	if !admin {
		return nil, ErrAdminRequired
	}

	wsi, err := e.returnToWorkspace(ctx, wfi)
	if err != nil {
		return nil, err
	}

	abortedTotal.Inc()
	logging.Warn().
		Str("workflow_item", wfi.ID.String()).
		Str("actor", c.UserID()).
		Str("state", wfi.State.String()).
		Msg("Workflow aborted")
	e.publishEvent(c, wfi, wfi.State, models.StateSubmit, nil, nil)
	return wsi, nil
}

// Reject removes the item from the pipeline: pooled tasks are deleted, a
// rejection provenance note citing actor and reason is recorded, the
// submitter is emailed the reason, and the submission returns to the
// workspace. A transition event back to SUBMIT with no owner is fired.
func (e *Engine) Reject(ctx context.Context, c *models.Context, wfi *models.WorkflowItem,
	reason string) (*models.WorkspaceItem, error) {
	item, err := e.deps.Items.Find(ctx, wfi.Item)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}

	item.AddMetadata(e.config.ProvenanceField,
		rejectionProvenance(c.CurrentUser, reason, e.now()))
	if err := e.deps.Items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("record rejection provenance: %w", err)
	}

	oldState := wfi.State
	wsi, err := e.returnToWorkspace(ctx, wfi)
	if err != nil {
		return nil, err
	}

	if submitter, err := e.deps.Directory.EPerson(ctx, item.Submitter); err == nil {
		e.dispatcher.Send(ctx, TemplateReject, submitter, map[string]string{
			"item":   item.Name,
			"reason": reason,
		})
	} else {
		logging.Error().Err(err).
			Str("submitter", item.Submitter.String()).
			Msg("Resolve submitter for rejection notice")
	}

	rejectedTotal.Inc()
	logging.Info().
		Str("workflow_item", wfi.ID.String()).
		Str("actor", c.UserID()).
		Str("reason", reason).
		Msg("Submission rejected")
	e.publishEvent(c, wfi, oldState, models.StateSubmit, nil, nil)
	return wsi, nil
}

// doState executes the transition of wfi into target: derives the pure
// transition, persists the state swap, then runs the side effects
// (task-list changes, policy grants, notifications, install, event).
// There is no partial rollback across the sequence; callers needing
// all-or-nothing semantics must supply a transactional store.
func (e *Engine) doState(ctx context.Context, c *models.Context, wfi *models.WorkflowItem,
	target models.WorkflowState, newOwner *uuid.UUID) (bool, error) {
	collection, err := e.deps.Items.Collection(ctx, wfi.Collection)
	if err != nil {
		return false, fmt.Errorf("find collection: %w", err)
	}
	if collection == nil {
		return false, fmt.Errorf("collection %s not found", wfi.Collection)
	}

	var poolGroup *uuid.UUID
	var poolMembers []uuid.UUID
	var poolPeople []*models.EPerson
	if target.IsPool() {
		poolGroup = collection.StepGroup(target.Step())
		if poolGroup != nil {
			poolPeople, err = e.deps.Directory.AllMembers(ctx, *poolGroup)
			if err != nil {
				return false, fmt.Errorf("resolve step %d group members: %w", target.Step(), err)
			}
			for _, p := range poolPeople {
				poolMembers = append(poolMembers, p.ID)
			}
		}
	}

	tr := deriveTransition(wfi, target, newOwner, poolGroup, poolMembers)

	if tr.To == models.StateArchive {
		return true, e.archive(ctx, c, wfi, tr)
	}

	oldState := wfi.State
	wfi.State = tr.To
	wfi.Owner = tr.Owner
	if tr.ConsumeSuppression {
		wfi.NotifySuppressed = false
	}
	if err := e.deps.Workflows.SwapState(ctx, wfi, oldState); err != nil {
		return false, err
	}
	transitionsTotal.WithLabelValues(oldState.String(), tr.To.String()).Inc()

	if tr.DeleteTasks {
		if err := e.deps.Tasks.DeleteAll(ctx, wfi.ID); err != nil {
			return false, fmt.Errorf("delete task list: %w", err)
		}
	}

	if len(tr.CreateTasksFor) > 0 {
		if _, err := e.deps.Tasks.CreateAll(ctx, wfi.ID, tr.CreateTasksFor); err != nil {
			return false, fmt.Errorf("create task list: %w", err)
		}
		if err := e.grantPoolPolicies(ctx, wfi, *tr.PoolGroup); err != nil {
			return false, err
		}
		if tr.Notify {
			e.notifyPool(ctx, wfi, poolPeople)
		}
	}

	e.publishEvent(c, wfi, oldState, tr.To, tr.Owner, tr.PoolGroup)

	if tr.SkipThrough {
		logging.Debug().
			Str("workflow_item", wfi.ID.String()).
			Int("step", target.Step()).
			Msg("Empty role group, skipping step")
		return e.Advance(ctx, c, wfi, true, false)
	}
	return false, nil
}

// archive promotes the item into the permanent collection: delete tasks,
// install, seed default read policies, apply any embargo from metadata,
// strip TYPE_WORKFLOW policies, delete the workflow item, and notify the
// submitter.
func (e *Engine) archive(ctx context.Context, c *models.Context, wfi *models.WorkflowItem,
	tr Transition) error {
	if err := e.deps.Tasks.DeleteAll(ctx, wfi.ID); err != nil {
		return fmt.Errorf("delete task list: %w", err)
	}

	item, err := e.deps.Installer.InstallItem(ctx, c, wfi)
	if err != nil {
		return fmt.Errorf("install item: %w", err)
	}

	collection, err := e.deps.Items.Collection(ctx, wfi.Collection)
	if err != nil {
		return fmt.Errorf("find collection: %w", err)
	}
	if err := e.deps.Policies.InheritDefaultPolicies(ctx, collection, item); err != nil {
		return fmt.Errorf("inherit default policies: %w", err)
	}
	if e.deps.Embargo != nil {
		if err := e.deps.Embargo.SetEmbargo(ctx, item); err != nil {
			return fmt.Errorf("set embargo: %w", err)
		}
	}

	if err := e.deps.Policies.RemovePoliciesByType(ctx, item, models.PolicyTypeWorkflow); err != nil {
		return fmt.Errorf("strip workflow policies: %w", err)
	}
	if err := e.deps.Workflows.Delete(ctx, wfi.ID); err != nil {
		return fmt.Errorf("delete workflow item: %w", err)
	}

	if submitter, err := e.deps.Directory.EPerson(ctx, item.Submitter); err == nil {
		e.dispatcher.Send(ctx, TemplateArchive, submitter, map[string]string{
			"item":       item.Name,
			"collection": collection.Name,
		})
	} else {
		logging.Error().Err(err).
			Str("submitter", item.Submitter.String()).
			Msg("Resolve submitter for archive notice")
	}

	archivedTotal.Inc()
	transitionsTotal.WithLabelValues(tr.From.String(), models.StateArchive.String()).Inc()
	logging.Info().
		Str("workflow_item", wfi.ID.String()).
		Str("item", item.ID.String()).
		Msg("Item archived")
	e.publishEvent(c, wfi, tr.From, models.StateArchive, nil, nil)
	return nil
}

// returnToWorkspace deletes the workflow item and its tasks, strips
// TYPE_WORKFLOW policies from the underlying item, and recreates a
// workspace item carrying the submission flags.
func (e *Engine) returnToWorkspace(ctx context.Context,
	wfi *models.WorkflowItem) (*models.WorkspaceItem, error) {
	if err := e.deps.Tasks.DeleteAll(ctx, wfi.ID); err != nil {
		return nil, fmt.Errorf("delete task list: %w", err)
	}
	if err := e.deps.Workflows.Delete(ctx, wfi.ID); err != nil {
		return nil, fmt.Errorf("delete workflow item: %w", err)
	}

	if item, err := e.deps.Items.Find(ctx, wfi.Item); err == nil {
		if err := e.deps.Policies.RemovePoliciesByType(ctx, item, models.PolicyTypeWorkflow); err != nil {
			return nil, fmt.Errorf("strip workflow policies: %w", err)
		}
	}

	wsi := &models.WorkspaceItem{
		ID:              uuid.New(),
		Item:            wfi.Item,
		Collection:      wfi.Collection,
		MultipleTitles:  wfi.MultipleTitles,
		PublishedBefore: wfi.PublishedBefore,
		MultipleFiles:   wfi.MultipleFiles,
	}
	if err := e.deps.Workspaces.Save(ctx, wsi); err != nil {
		return nil, fmt.Errorf("save workspace item: %w", err)
	}
	return wsi, nil
}

// grantPoolPolicies gives the step's role group working access to the
// item for the duration of the step.
func (e *Engine) grantPoolPolicies(ctx context.Context, wfi *models.WorkflowItem,
	group uuid.UUID) error {
	item, err := e.deps.Items.Find(ctx, wfi.Item)
	if err != nil {
		return fmt.Errorf("find item: %w", err)
	}
	for _, action := range poolGrantActions {
		if _, err := e.deps.Policies.AddGroupPolicy(ctx, item, action, group,
			models.PolicyTypeWorkflow); err != nil {
			return fmt.Errorf("grant %s to role group: %w", action, err)
		}
	}
	return nil
}

// notifyPool emails every pooled member about the pending task.
func (e *Engine) notifyPool(ctx context.Context, wfi *models.WorkflowItem,
	people []*models.EPerson) {
	for _, p := range people {
		e.dispatcher.Send(ctx, TemplateTask, p, map[string]string{
			"workflow_item": wfi.ID.String(),
			"step":          fmt.Sprintf("%d", wfi.State.Step()),
		})
	}
}

// publishEvent fires the transition domain event. The owner is cleared
// when the new state is a pool state.
func (e *Engine) publishEvent(c *models.Context, wfi *models.WorkflowItem,
	from, to models.WorkflowState, owner, ownerGroup *uuid.UUID) {
	if to.IsPool() {
		owner = nil
	}
	publishTransition(e.deps.Publisher, &TransitionEvent{
		WorkflowItemID: wfi.ID,
		ItemID:         wfi.Item,
		CollectionID:   wfi.Collection,
		From:           from.String(),
		To:             to.String(),
		Actor:          c.UserID(),
		Owner:          owner,
		OwnerGroup:     ownerGroup,
		OccurredAt:     e.now(),
	})
}

// recordApproval appends an approval provenance note for the current
// step.
func (e *Engine) recordApproval(ctx context.Context, c *models.Context,
	wfi *models.WorkflowItem) error {
	item, err := e.deps.Items.Find(ctx, wfi.Item)
	if err != nil {
		return fmt.Errorf("find item: %w", err)
	}
	item.AddMetadata(e.config.ProvenanceField,
		approvalProvenance(c.CurrentUser, wfi.State.Step(), e.now()))
	if err := e.deps.Items.Update(ctx, item); err != nil {
		return fmt.Errorf("record approval provenance: %w", err)
	}
	return nil
}

// logStateViolation logs an operation attempted from an unsupported
// state. These are silently no-oped, matching long-standing behavior
// callers depend on.
func (e *Engine) logStateViolation(operation string, wfi *models.WorkflowItem) {
	stateViolationsTotal.WithLabelValues(operation, wfi.State.String()).Inc()
	logging.Warn().
		Str("operation", operation).
		Str("workflow_item", wfi.ID.String()).
		Str("state", wfi.State.String()).
		Msg("Operation not valid in current state, ignoring")
}
