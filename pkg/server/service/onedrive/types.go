package onedrive

import (
	"context"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/server/service/traversal"
)

type (
	DriveReader interface {
		directory.ChildLister
		Drive(ctx context.Context, driveID string) (*directory.Drive, error)
		UserDrive(ctx context.Context, userID string) (*directory.Drive, error)
		SiteDrive(ctx context.Context, siteID string) (*directory.Drive, error)
	}

	Handler struct {
		drives  DriveReader
		runner  *traversal.Runner
		timeout time.Duration
	}

	// resolveFunc finds the drive a route addresses.
	resolveFunc func(ctx context.Context, id string) (*directory.Drive, error)
)
