// Package di provides dependency injection for service implementations.
package di

import (
	"github.com/pedrorrivero/qlab/internal/database"
	"github.com/pedrorrivero/qlab/internal/database/repositories"
	"github.com/pedrorrivero/qlab/internal/events"
	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/workflows"
)

// Container holds all shared services, created once at startup.
type Container struct {
	// RunsDB persists workflow run records.
	RunsDB *database.DB

	// EventBus distributes progress events to in-process subscribers and
	// the SSE stream.
	EventBus *events.Bus

	// Backend executes circuits. The default is the local statevector
	// simulator.
	Backend backend.Backend

	// Repositories
	RunRepo *repositories.RunRepository

	// Services
	Runner *workflows.Runner
}

// Close releases container resources in reverse dependency order.
func (c *Container) Close() error {
	if c.RunsDB != nil {
		return c.RunsDB.Close()
	}
	return nil
}
