// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

func TestPublishTransition_GoChannelRoundTrip(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, TransitionTopic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := &TransitionEvent{
		WorkflowItemID: uuid.New(),
		ItemID:         uuid.New(),
		CollectionID:   uuid.New(),
		From:           "STEP1POOL",
		To:             "STEP1",
		Actor:          "reviewer@example.edu",
		OccurredAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	publishTransition(pubsub, want)

	select {
	case msg := <-messages:
		var got TransitionEvent
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		msg.Ack()
		if got.WorkflowItemID != want.WorkflowItemID || got.From != want.From || got.To != want.To {
			t.Errorf("event = %+v, want %+v", got, want)
		}
		if msg.Metadata.Get("to_state") != "STEP1" {
			t.Errorf("to_state metadata = %q, want STEP1", msg.Metadata.Get("to_state"))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no transition event received")
	}
}

func TestPublishTransition_NilPublisherIsNoop(t *testing.T) {
	// Engines without an event bus wired simply skip publishing.
	publishTransition(nil, &TransitionEvent{WorkflowItemID: uuid.New()})
}
