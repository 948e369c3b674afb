package runlog

import (
	"context"
	"time"

	"github.com/KyleBrandon/synapse/internal/database"
)

const (
	UpstreamGraph  = "graph"
	UpstreamGDrive = "gdrive"

	DefaultRecordTimeout = 5 * time.Second
)

type (
	RunStore interface {
		CreateTraversalRun(ctx context.Context, arg database.CreateTraversalRunParams) (database.TraversalRun, error)
	}

	// Recorder writes one row per completed traversal. A Recorder without a
	// store drops every run.
	Recorder struct {
		store   RunStore
		timeout time.Duration
	}
)
