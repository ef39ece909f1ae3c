package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// StaleImportMarker fails import sessions that never finished.
type StaleImportMarker interface {
	MarkStaleRunningFailed(startedBefore time.Time) (int64, error)
}

// MarkStaleImportsTask fails sessions still pending or running that started
// before StartedBefore, which happens when the process stops mid-import. A
// zero StartedBefore means the time the task is processed.
type MarkStaleImportsTask struct {
	StartedBefore time.Time `json:"started_before"`
}

// Config returns the queue configuration for stale import cleanup tasks.
func (t MarkStaleImportsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "mark_stale_imports",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// MarkStaleImportsProcessor creates a processor function for MarkStaleImportsTask.
func MarkStaleImportsProcessor(marker StaleImportMarker) backlite.QueueProcessor[MarkStaleImportsTask] {
	return func(ctx context.Context, task MarkStaleImportsTask) error {
		if marker == nil {
			return fmt.Errorf("import session store not configured")
		}

		cutoff := task.StartedBefore
		if cutoff.IsZero() {
			cutoff = time.Now()
		}

		updated, err := marker.MarkStaleRunningFailed(cutoff)
		if err != nil {
			return fmt.Errorf("mark stale imports: %w", err)
		}

		if updated > 0 {
			log.Printf("[TASK] Marked %d stale import sessions as failed", updated)
		}
		return nil
	}
}

// NewMarkStaleImportsQueue creates a backlite queue for stale import cleanup tasks.
func NewMarkStaleImportsQueue(marker StaleImportMarker) backlite.Queue {
	return backlite.NewQueue(MarkStaleImportsProcessor(marker))
}
