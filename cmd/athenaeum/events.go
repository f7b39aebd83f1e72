// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package main

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"

	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/workflow"
)

// transitionLogger subscribes to workflow transition events and writes
// them to the structured log. It runs under the messaging supervisor.
type transitionLogger struct {
	subscriber message.Subscriber
}

func newTransitionLogger(subscriber message.Subscriber) *transitionLogger {
	return &transitionLogger{subscriber: subscriber}
}

// Serve consumes transition events until the context is canceled.
func (t *transitionLogger) Serve(ctx context.Context) error {
	messages, err := t.subscriber.Subscribe(ctx, workflow.TransitionTopic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var ev workflow.TransitionEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			logging.Warn().Err(err).
				Str("message", msg.UUID).
				Msg("Unparsable transition event")
			msg.Ack()
			continue
		}

		logging.Info().
			Str("workflow_item", ev.WorkflowItemID.String()).
			Str("from", ev.From).
			Str("to", ev.To).
			Str("actor", ev.Actor).
			Msg("Workflow transition")
		msg.Ack()
	}
	return ctx.Err()
}

func (t *transitionLogger) String() string {
	return "transition-logger"
}
