package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/KyleBrandon/synapse/pkg/directory"
	abstractions "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoft/kiota-abstractions-go/serialization"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/drives"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/sites"
)

var _ directory.ChildLister = (*GraphClient)(nil)

// New authenticates with the client credentials flow and returns a Graph client.
func New(cfg Config) (*GraphClient, error) {
	slog.Debug(">>graph.New")
	defer slog.Debug("<<graph.New")

	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("missing required Azure credentials")
	}

	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		slog.Error("Unable to create the client secret credential", "error", err)
		return nil, err
	}

	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{GraphDefaultScope})
	if err != nil {
		slog.Error("Unable to create the Graph client", "error", err)
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing Graph client, the credentials of cfg are ignored.
func NewWithClient(client *msgraphsdk.GraphServiceClient, cfg Config) *GraphClient {
	return &GraphClient{
		client:      client,
		followPages: cfg.FollowPages,
		pageSize:    cfg.PageSize,
	}
}

// ListChildren returns the immediate children of a drive item.
func (gc *GraphClient) ListChildren(ctx context.Context, driveID, itemID string) ([]directory.Child, error) {
	var config *drives.ItemItemsItemChildrenRequestBuilderGetRequestConfiguration
	if gc.pageSize > 0 {
		top := gc.pageSize
		config = &drives.ItemItemsItemChildrenRequestBuilderGetRequestConfiguration{
			QueryParameters: &drives.ItemItemsItemChildrenRequestBuilderGetQueryParameters{
				Top: &top,
			},
		}
	}

	resp, err := gc.client.Drives().ByDriveId(driveID).Items().ByDriveItemId(itemID).Children().Get(ctx, config)
	if err != nil {
		return nil, wrapGraphError("failed to list children", err)
	}

	items, err := readPages[models.DriveItemable](ctx, gc, resp, models.CreateDriveItemCollectionResponseFromDiscriminatorValue, "children")
	if err != nil {
		return nil, err
	}

	children := make([]directory.Child, 0, len(items))
	for _, item := range items {
		children = append(children, childFromDriveItem(item))
	}

	return children, nil
}

// Drive returns the drive with the given id.
func (gc *GraphClient) Drive(ctx context.Context, driveID string) (*directory.Drive, error) {
	drive, err := gc.client.Drives().ByDriveId(driveID).Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to get drive", err)
	}

	return driveOrNotFound(drive, "drive not found")
}

// UserDrive returns the OneDrive of a user.
func (gc *GraphClient) UserDrive(ctx context.Context, userID string) (*directory.Drive, error) {
	drive, err := gc.client.Users().ByUserId(userID).Drive().Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to get user drive", err)
	}

	return driveOrNotFound(drive, "drive not found for user")
}

// SiteDrive returns the default document library of a SharePoint site.
func (gc *GraphClient) SiteDrive(ctx context.Context, siteID string) (*directory.Drive, error) {
	drive, err := gc.client.Sites().BySiteId(siteID).Drive().Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to get site drive", err)
	}

	return driveOrNotFound(drive, "drive not found for site")
}

// ListUsers returns the users of the tenant.
func (gc *GraphClient) ListUsers(ctx context.Context) ([]directory.User, error) {
	resp, err := gc.client.Users().Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to list users", err)
	}

	users, err := readPages[models.Userable](ctx, gc, resp, models.CreateUserCollectionResponseFromDiscriminatorValue, "users")
	if err != nil {
		return nil, err
	}

	out := make([]directory.User, 0, len(users))
	for _, u := range users {
		out = append(out, userFromModel(u))
	}

	return out, nil
}

// ListMessages returns the messages of a user's mailbox.
func (gc *GraphClient) ListMessages(ctx context.Context, userID string) ([]directory.Message, error) {
	resp, err := gc.client.Users().ByUserId(userID).Messages().Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to list messages", err)
	}

	messages, err := readPages[models.Messageable](ctx, gc, resp, models.CreateMessageCollectionResponseFromDiscriminatorValue, "messages")
	if err != nil {
		return nil, err
	}

	out := make([]directory.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageFromModel(userID, m))
	}

	return out, nil
}

// ListSites returns every SharePoint site visible to the application.
func (gc *GraphClient) ListSites(ctx context.Context) ([]directory.Site, error) {
	search := SiteSearchAll
	config := &sites.SitesRequestBuilderGetRequestConfiguration{
		QueryParameters: &sites.SitesRequestBuilderGetQueryParameters{
			Search: &search,
		},
	}

	resp, err := gc.client.Sites().Get(ctx, config)
	if err != nil {
		return nil, wrapGraphError("failed to list sites", err)
	}

	values, err := readPages[models.Siteable](ctx, gc, resp, models.CreateSiteCollectionResponseFromDiscriminatorValue, "sites")
	if err != nil {
		return nil, err
	}

	out := make([]directory.Site, 0, len(values))
	for _, s := range values {
		out = append(out, siteFromModel(s))
	}

	return out, nil
}

// ListLists returns the lists of a SharePoint site.
func (gc *GraphClient) ListLists(ctx context.Context, siteID string) ([]directory.List, error) {
	resp, err := gc.client.Sites().BySiteId(siteID).Lists().Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to list site lists", err)
	}

	values, err := readPages[models.Listable](ctx, gc, resp, models.CreateListCollectionResponseFromDiscriminatorValue, "lists")
	if err != nil {
		return nil, err
	}

	out := make([]directory.List, 0, len(values))
	for _, l := range values {
		out = append(out, listFromModel(l))
	}

	return out, nil
}

// ListListItems returns the items of a SharePoint list.
func (gc *GraphClient) ListListItems(ctx context.Context, siteID, listID string) ([]directory.ListItem, error) {
	resp, err := gc.client.Sites().BySiteId(siteID).Lists().ByListId(listID).Items().Get(ctx, nil)
	if err != nil {
		return nil, wrapGraphError("failed to list list items", err)
	}

	values, err := readPages[models.ListItemable](ctx, gc, resp, models.CreateListItemCollectionResponseFromDiscriminatorValue, "list items")
	if err != nil {
		return nil, err
	}

	out := make([]directory.ListItem, 0, len(values))
	for _, item := range values {
		out = append(out, listItemFromModel(item))
	}

	return out, nil
}

// readPages returns the values of a collection response, following next
// links when pagination is enabled.
func readPages[T any](ctx context.Context, gc *GraphClient, resp pageable[T], factory serialization.ParsableFactory, resource string) ([]T, error) {
	if resp == nil {
		return nil, nil
	}

	if !gc.followPages {
		if next := resp.GetOdataNextLink(); next != nil && *next != "" {
			slog.Warn("Additional pages were not read, pagination is disabled", "resource", resource)
		}

		return resp.GetValue(), nil
	}

	iter, err := msgraphcore.NewPageIterator[T](resp, gc.client.GetAdapter(), factory)
	if err != nil {
		return nil, directory.NewUpstreamError("failed to create page iterator for "+resource, err)
	}

	var values []T
	err = iter.Iterate(ctx, func(value T) bool {
		values = append(values, value)
		return true
	})
	if err != nil {
		return nil, wrapGraphError("failed to read pages of "+resource, err)
	}

	return values, nil
}

func driveOrNotFound(drive models.Driveable, msg string) (*directory.Drive, error) {
	if drive == nil {
		return nil, directory.NewError(directory.ErrNotFound, msg, nil)
	}

	d := driveFromModel(drive)

	return &d, nil
}

// wrapGraphError maps Graph failures onto the directory error taxonomy.
func wrapGraphError(msg string, err error) error {
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		if main := odataErr.GetErrorEscaped(); main != nil && main.GetMessage() != nil {
			msg = msg + ": " + *main.GetMessage()
		}

		return directory.NewStatusError(odataErr.ResponseStatusCode, msg, err)
	}

	var apiErr *abstractions.ApiError
	if errors.As(err, &apiErr) {
		return directory.NewStatusError(apiErr.ResponseStatusCode, msg, err)
	}

	return directory.NewUpstreamError(msg, err)
}
