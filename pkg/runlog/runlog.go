package runlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/KyleBrandon/synapse/internal/database"
	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/directory/collector"
	"github.com/google/uuid"
)

// New returns a Recorder backed by store, store may be nil.
func New(store RunStore) *Recorder {
	return NewWithTimeout(store, DefaultRecordTimeout)
}

// NewWithTimeout bounds every insert by timeout.
func NewWithTimeout(store RunStore, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = DefaultRecordTimeout
	}

	return &Recorder{store: store, timeout: timeout}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.store != nil
}

// Record stores the outcome of a traversal. The insert outlives the
// cancellation of ctx but never runs longer than the recorder timeout.
// Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, upstream string, root directory.ContainerRef, result *collector.Result, startedAt time.Time) {
	if !r.Enabled() || result == nil {
		return
	}

	params := database.CreateTraversalRunParams{
		ID:             uuid.New(),
		Upstream:       upstream,
		DriveID:        root.DriveID,
		ItemID:         root.ItemID,
		ItemCount:      int64(result.TotalCount),
		FailedBranches: int32(len(result.Failures)),
		Truncated:      result.Truncated,
		StartedAt:      startedAt.UTC(),
		DurationMs:     time.Since(startedAt).Milliseconds(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	run, err := r.store.CreateTraversalRun(ctx, params)
	if err != nil {
		slog.Error("Failed to record the traversal run", "driveID", root.DriveID, "error", err)
		return
	}

	slog.Debug("Recorded traversal run", "runID", run.ID, "driveID", run.DriveID, "items", run.ItemCount)
}
