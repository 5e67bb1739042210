// Package cleanup provides data cleanup and maintenance functionality.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/pedrorrivero/qlab/internal/database"
	"github.com/pedrorrivero/qlab/internal/database/repositories"
	"github.com/pedrorrivero/qlab/internal/events"
	"github.com/rs/zerolog"
)

// RunsCleanupJob deletes workflow runs older than the retention window.
// Runs daily so the runs database stays bounded on long-lived deployments.
type RunsCleanupJob struct {
	runs          *repositories.RunRepository
	db            *database.DB
	bus           *events.Bus
	retentionDays int
	log           zerolog.Logger
}

// NewRunsCleanupJob creates a new runs cleanup job
func NewRunsCleanupJob(runs *repositories.RunRepository, db *database.DB, bus *events.Bus, retentionDays int, log zerolog.Logger) *RunsCleanupJob {
	return &RunsCleanupJob{
		runs:          runs,
		db:            db,
		bus:           bus,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "runs_cleanup").Logger(),
	}
}

// Name returns the job name for scheduler logs
func (j *RunsCleanupJob) Name() string {
	return "runs_cleanup"
}

// Run executes the cleanup job
func (j *RunsCleanupJob) Run(ctx context.Context) error {
	if j.retentionDays <= 0 {
		j.log.Debug().Msg("Retention disabled, skipping cleanup")
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	j.log.Info().Time("cutoff", cutoff).Msg("Starting runs cleanup job")

	deleted, err := j.runs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old runs: %w", err)
	}

	if deleted > 0 {
		// Deletes grow the WAL; checkpoint so the file shrinks back.
		if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint after cleanup failed")
		}

		if j.bus != nil {
			j.bus.EmitTyped(events.RunsCleaned, "cleanup", &events.RunsCleanedData{
				Deleted:       int(deleted),
				RetentionDays: j.retentionDays,
			})
		}
	}

	j.log.Info().Int64("deleted", deleted).Msg("Runs cleanup completed")
	return nil
}
