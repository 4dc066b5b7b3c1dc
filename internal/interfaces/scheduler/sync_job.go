package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"ledgerlink/internal/domain/aggregation"
)

// BalanceSyncJob refreshes one user's account snapshots from the
// aggregator.
type BalanceSyncJob struct {
	userID      int64
	syncService *aggregation.AccountSyncService
}

// NewBalanceSyncJob creates a balance sync job for a user.
func NewBalanceSyncJob(userID int64, syncService *aggregation.AccountSyncService) *BalanceSyncJob {
	return &BalanceSyncJob{
		userID:      userID,
		syncService: syncService,
	}
}

// Execute runs the sync. A user without bank links is a no-op, not a
// failure; partial per-link errors are reported so the run shows up as
// failed in the pool metrics.
func (j *BalanceSyncJob) Execute(ctx context.Context) error {
	log.Printf("Starting balance sync for user %d", j.userID)

	result, err := j.syncService.SyncUserAccounts(ctx, j.userID)
	if err != nil {
		if errors.Is(err, aggregation.ErrNoBankLinks) {
			log.Printf("Balance sync for user %d skipped: no bank links", j.userID)
			return nil
		}
		log.Printf("Balance sync failed for user %d: %v", j.userID, err)
		return fmt.Errorf("sync failed: %w", err)
	}

	if len(result.Errors) > 0 {
		log.Printf("Balance sync for user %d completed with errors: Created=%d, Updated=%d, Errors=%d",
			j.userID, result.Created, result.Updated, len(result.Errors))
		return fmt.Errorf("sync completed with %d errors", len(result.Errors))
	}

	log.Printf("Balance sync for user %d completed successfully: Created=%d, Updated=%d",
		j.userID, result.Created, result.Updated)

	return nil
}

// UserID returns the user ID associated with this job.
func (j *BalanceSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job.
func (j *BalanceSyncJob) Description() string {
	return fmt.Sprintf("Balance sync for user %d", j.userID)
}
