package di

import (
	"fmt"

	"github.com/pedrorrivero/qlab/internal/config"
	"github.com/pedrorrivero/qlab/internal/database"
	"github.com/pedrorrivero/qlab/internal/database/repositories"
	"github.com/pedrorrivero/qlab/internal/events"
	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/workflows"
	"github.com/rs/zerolog"
)

// Wire creates all services in dependency order and returns the populated
// container. This is the single source of truth for service creation.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// Database
	runsDB, err := database.New(database.Config{
		Path: cfg.DataDir + "/runs.db",
		Name: "runs",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize runs database: %w", err)
	}
	container.RunsDB = runsDB
	log.Info().Str("path", runsDB.Path()).Msg("Runs database initialized")

	// Event bus
	container.EventBus = events.NewBus(log)

	// Measurement backend
	container.Backend = backend.NewSimulator(backend.SimulatorConfig{
		Seed:      cfg.Seed,
		MaxQubits: cfg.MaxQubits,
	}, log)
	log.Info().Str("backend", container.Backend.Name()).Msg("Measurement backend initialized")

	// Repositories
	runRepo, err := repositories.NewRunRepository(runsDB, log)
	if err != nil {
		runsDB.Close()
		return nil, fmt.Errorf("failed to initialize run repository: %w", err)
	}
	container.RunRepo = runRepo

	// Workflow runner
	container.Runner = workflows.NewRunner(container.Backend, runRepo, container.EventBus, cfg, log)

	return container, nil
}
