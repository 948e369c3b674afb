package gdrive

import (
	"context"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/server/service/traversal"
)

type (
	DriveReader interface {
		directory.ChildLister
		DriveInfo(ctx context.Context, driveID string) (*directory.Drive, error)
	}

	Handler struct {
		drives  DriveReader
		runner  *traversal.Runner
		timeout time.Duration
	}
)
