// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/logging"
)

// TransitionTopic carries one TransitionEvent per workflow state change.
const TransitionTopic = "workflow.transitions"

// TransitionEvent records one workflow state change for downstream
// consumers (usage statistics, external notification fan-out). Owner is
// omitted when the new state is a pool state; nothing is owned in a
// pool.
type TransitionEvent struct {
	WorkflowItemID uuid.UUID  `json:"workflow_item_id"`
	ItemID         uuid.UUID  `json:"item_id"`
	CollectionID   uuid.UUID  `json:"collection_id"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	Actor          string     `json:"actor"`
	Owner          *uuid.UUID `json:"owner,omitempty"`
	OwnerGroup     *uuid.UUID `json:"owner_group,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// publishTransition serializes and publishes the event. Publish failures
// are logged, not propagated: observability must not block a transition.
func publishTransition(publisher message.Publisher, ev *TransitionEvent) {
	if publisher == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Error().Err(err).Msg("Serialize transition event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("workflow_item", ev.WorkflowItemID.String())
	msg.Metadata.Set("to_state", ev.To)

	if err := publisher.Publish(TransitionTopic, msg); err != nil {
		eventPublishErrors.Inc()
		logging.Error().Err(err).
			Str("workflow_item", ev.WorkflowItemID.String()).
			Msg("Publish transition event")
		return
	}
	eventsPublished.Inc()
}
