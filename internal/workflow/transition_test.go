// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"testing"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/models"
)

func TestDeriveTransition_PoolEntry(t *testing.T) {
	group := uuid.New()
	members := []uuid.UUID{uuid.New(), uuid.New()}
	wfi := &models.WorkflowItem{ID: uuid.New(), State: models.StateSubmit}

	tr := deriveTransition(wfi, models.StateStep1Pool, nil, &group, members)

	if tr.To != models.StateStep1Pool {
		t.Errorf("To = %v, want STEP1POOL", tr.To)
	}
	if tr.Owner != nil {
		t.Error("pool entry must clear the owner")
	}
	if !tr.DeleteTasks || len(tr.CreateTasksFor) != 2 {
		t.Errorf("tasks: delete=%v create=%d, want delete and 2 creates",
			tr.DeleteTasks, len(tr.CreateTasksFor))
	}
	if !tr.Notify || tr.ConsumeSuppression || tr.SkipThrough {
		t.Errorf("notify=%v consume=%v skip=%v, want notify only",
			tr.Notify, tr.ConsumeSuppression, tr.SkipThrough)
	}
}

func TestDeriveTransition_PoolEntrySuppressed(t *testing.T) {
	group := uuid.New()
	wfi := &models.WorkflowItem{ID: uuid.New(), State: models.StateSubmit, NotifySuppressed: true}

	tr := deriveTransition(wfi, models.StateStep1Pool, nil, &group, []uuid.UUID{uuid.New()})

	if tr.Notify {
		t.Error("suppressed pool entry must not notify")
	}
	if !tr.ConsumeSuppression {
		t.Error("suppression must be consumed by the pool entry")
	}
}

func TestDeriveTransition_EmptyGroupSkipsThrough(t *testing.T) {
	tests := []struct {
		name    string
		group   *uuid.UUID
		members []uuid.UUID
	}{
		{"absent group", nil, nil},
		{"empty group", func() *uuid.UUID { g := uuid.New(); return &g }(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wfi := &models.WorkflowItem{ID: uuid.New(), State: models.StateStep1}
			tr := deriveTransition(wfi, models.StateStep2Pool, nil, tt.group, tt.members)

			if !tr.SkipThrough {
				t.Fatal("empty step must skip through")
			}
			if tr.To != models.StateStep2 {
				t.Errorf("To = %v, want STEP2 (claimed pass-through)", tr.To)
			}
			if len(tr.CreateTasksFor) != 0 || tr.Notify {
				t.Error("skip-through must create no tasks and send nothing")
			}
		})
	}
}

func TestDeriveTransition_Claim(t *testing.T) {
	claimant := uuid.New()
	wfi := &models.WorkflowItem{ID: uuid.New(), State: models.StateStep2Pool}

	tr := deriveTransition(wfi, models.StateStep2, &claimant, nil, nil)

	if tr.To != models.StateStep2 {
		t.Errorf("To = %v, want STEP2", tr.To)
	}
	if tr.Owner == nil || *tr.Owner != claimant {
		t.Errorf("Owner = %v, want the claimant", tr.Owner)
	}
	if !tr.DeleteTasks {
		t.Error("claiming must delete the pooled tasks")
	}
}

func TestDeriveTransition_Archive(t *testing.T) {
	wfi := &models.WorkflowItem{ID: uuid.New(), State: models.StateStep3}

	tr := deriveTransition(wfi, models.StateArchive, nil, nil, nil)

	if !tr.Install {
		t.Error("archive transition must install")
	}
	if tr.Owner != nil {
		t.Error("archive clears the owner")
	}
}
