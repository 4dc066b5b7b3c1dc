// Package scheduler runs the periodic balance refresh: at configured
// times of day it enqueues one sync job per user with bank links onto a
// bounded worker pool.
package scheduler

import "context"

// Job is a unit of work executed by the worker pool.
type Job interface {
	// Execute runs the job. The context carries the pool's timeout and
	// shutdown cancellation.
	Execute(ctx context.Context) error

	// UserID identifies whose data the job touches, for logging.
	UserID() string

	// Description is a human-readable job label for logging.
	Description() string
}
