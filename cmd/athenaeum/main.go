// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

// Package main is the entry point for the Athenaeum service.
//
// Athenaeum manages access control and the submission review workflow
// for an institutional repository: date-boxed resource policies,
// embargoes resolved from item metadata, and a three-step review
// pipeline with pooled tasks.
//
// # Application Architecture
//
// The service initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Store: embedded BadgerDB with policy/group/item/workflow records
//  3. Engines: authorization engine, embargo coordinator, workflow engine
//  4. Events: in-process Pub/Sub carrying workflow transition events
//  5. Supervision: suture tree running the embargo lifter and the
//     transition event logger
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables (ATHENAEUM_ prefix), an optional
// config file (athenaeum.yaml), and built-in defaults. See
// internal/config for every key.
//
// # Signal Handling
//
// The service shuts down gracefully on SIGINT and SIGTERM: the
// supervisor tree stops its services, then the event bus and the store
// are closed.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/athenaeum-org/athenaeum/internal/authorize"
	"github.com/athenaeum-org/athenaeum/internal/config"
	"github.com/athenaeum-org/athenaeum/internal/embargo"
	"github.com/athenaeum-org/athenaeum/internal/logging"
	"github.com/athenaeum-org/athenaeum/internal/store"
	"github.com/athenaeum-org/athenaeum/internal/supervisor"
	"github.com/athenaeum-org/athenaeum/internal/workflow"
)

// app holds the constructed engines for wiring into services.
type app struct {
	authz    *authorize.Engine
	embargo  *embargo.Coordinator
	workflow *workflow.Engine
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config not yet available.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Bool("lifter_enabled", cfg.Embargo.LifterEnabled).
		Msg("Configuration loaded")

	db, err := store.Open(cfg.Store.Path, cfg.Store.InMemory)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	policyStore := store.NewBadgerPolicyStore(db)
	groupStore := store.NewBadgerGroupStore(db)
	itemStore := store.NewBadgerItemStore(db)
	workflowStore := store.NewBadgerWorkflowStore(db)
	taskStore := store.NewBadgerTaskListStore(db)
	workspaceStore := store.NewBadgerWorkspaceStore(db)
	resolver := store.NewResolver(itemStore)

	authzEngine, err := authorize.NewEngine(policyStore, groupStore, resolver, itemStore, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create authorization engine")
	}
	defer authzEngine.Close()

	coordinator, err := embargo.NewCoordinator(itemStore, authzEngine, nil, &embargo.Config{
		TermsField:     cfg.Embargo.TermsField,
		LiftField:      cfg.Embargo.LiftField,
		AvailableField: cfg.Embargo.AvailableField,
		ForeverToken:   cfg.Embargo.ForeverToken,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create embargo coordinator")
	}

	// In-process event bus for workflow transition events.
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer func() {
		if err := pubSub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	dispatcher := workflow.NewDispatcher(workflow.LogNotifier{}, &workflow.DispatcherConfig{
		RatePerSecond:   cfg.Notify.RatePerSecond,
		Burst:           cfg.Notify.Burst,
		BreakerFailures: uint32(cfg.Notify.BreakerFailures),
		BreakerTimeout:  cfg.Notify.BreakerTimeout,
	})

	wfEngine, err := workflow.NewEngine(workflow.Deps{
		Workflows:  workflowStore,
		Tasks:      taskStore,
		Workspaces: workspaceStore,
		Items:      itemStore,
		Directory:  groupStore,
		Policies:   authzEngine,
		Installer:  workflow.NewItemInstaller(itemStore),
		Embargo:    coordinator,
		Notifier:   workflow.LogNotifier{},
		Publisher:  pubSub,
	}, dispatcher, &workflow.Config{
		CurationEnabled: cfg.Workflow.CurationEnabled,
		ProvenanceField: cfg.Workflow.ProvenanceField,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create workflow engine")
	}

	a := &app{authz: authzEngine, embargo: coordinator, workflow: wfEngine}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Embargo.LifterEnabled {
		lifter, err := embargo.NewLifter(a.embargo, cfg.Embargo.LifterInterval)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create embargo lifter")
		}
		tree.AddMaintenanceService(lifter)
	}
	tree.AddMessagingService(newTransitionLogger(pubSub))

	logging.Info().Msg("Athenaeum started")
	if err := tree.Serve(ctx); err != nil && !isContextErr(err) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}
	logging.Info().Msg("Athenaeum stopped")
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
