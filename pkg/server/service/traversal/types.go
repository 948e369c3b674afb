package traversal

import (
	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/directory/collector"
	"github.com/KyleBrandon/synapse/pkg/runlog"
)

type (
	FailedBranch struct {
		ItemID string `json:"item_id"`
		Path   string `json:"path"`
		Error  string `json:"error"`
	}

	// Response is the body of every items/all route. The drive fields are
	// left out when the route does not expose them.
	Response struct {
		SiteID         string            `json:"site_id,omitempty"`
		DriveID        string            `json:"drive_id,omitempty"`
		DriveName      string            `json:"drive_name,omitempty"`
		DriveType      string            `json:"drive_type,omitempty"`
		Items          []directory.Entry `json:"items"`
		TotalCount     int               `json:"total_count"`
		FailedBranches []FailedBranch    `json:"failed_branches"`
		Truncated      bool              `json:"truncated"`
	}

	ItemsResponse struct {
		Items []directory.Entry `json:"items"`
	}

	// Runner walks a drive with a collector and records the run.
	Runner struct {
		collector *collector.Collector
		lister    directory.ChildLister
		runs      *runlog.Recorder
		upstream  string
	}
)
