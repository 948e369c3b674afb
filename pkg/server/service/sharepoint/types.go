package sharepoint

import (
	"context"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
)

type (
	SiteReader interface {
		ListSites(ctx context.Context) ([]directory.Site, error)
		ListLists(ctx context.Context, siteID string) ([]directory.List, error)
		ListListItems(ctx context.Context, siteID, listID string) ([]directory.ListItem, error)
	}

	Handler struct {
		sites   SiteReader
		timeout time.Duration
	}
)
