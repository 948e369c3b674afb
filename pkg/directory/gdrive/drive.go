package gdrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var _ directory.ChildLister = (*GDriveClient)(nil)

// New authenticates with a service account key file and returns a read-only Drive client.
func New(ctx context.Context, credentialsFile string) (*GDriveClient, error) {
	slog.Debug(">>gdrive.New")
	defer slog.Debug("<<gdrive.New")

	// Load service account JSON
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		slog.Error("Unable to read service account file", "error", err)
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
	if err != nil {
		slog.Error("Unable to parse credentials", "error", err)
		return nil, err
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)

	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Error("Unable to create Drive client", "error", err)
		return nil, err
	}

	return NewWithService(service), nil
}

// NewWithService wraps an existing Drive service.
func NewWithService(service *drive.Service) *GDriveClient {
	return &GDriveClient{service: service}
}

// ListChildren returns every non-trashed child of a folder, reading all pages.
func (gc *GDriveClient) ListChildren(ctx context.Context, driveID, itemID string) ([]directory.Child, error) {
	call := gc.service.Files.List().
		Q(childrenQuery(parentID(driveID, itemID))).
		Fields(fileFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)

	if isSharedDrive(driveID) {
		call = call.Corpora("drive").DriveId(driveID)
	}

	var children []directory.Child
	err := call.Pages(ctx, func(fileList *drive.FileList) error {
		for _, file := range fileList.Files {
			children = append(children, childFromFile(file))
		}
		return nil
	})
	if err != nil {
		return nil, wrapDriveError("failed to list folder children", err)
	}

	return children, nil
}

// DriveInfo resolves a shared drive, or the service account's own drive for MyDriveID.
func (gc *GDriveClient) DriveInfo(ctx context.Context, driveID string) (*directory.Drive, error) {
	if !isSharedDrive(driveID) {
		root, err := gc.service.Files.Get(MyDriveID).Fields("id, name, webViewLink").Context(ctx).Do()
		if err != nil {
			return nil, wrapDriveError("failed to get drive root", err)
		}

		return &directory.Drive{
			ID:        MyDriveID,
			Name:      root.Name,
			DriveType: "personal",
			WebURL:    root.WebViewLink,
		}, nil
	}

	shared, err := gc.service.Drives.Get(driveID).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return nil, wrapDriveError("failed to get shared drive", err)
	}

	return &directory.Drive{
		ID:        shared.Id,
		Name:      shared.Name,
		DriveType: "shared",
	}, nil
}

func isSharedDrive(driveID string) bool {
	return driveID != "" && driveID != MyDriveID
}

// parentID maps the root item of a shared drive to the drive id, which Drive
// uses as the id of its top folder.
func parentID(driveID, itemID string) string {
	if itemID == "" || itemID == directory.RootItemID {
		if isSharedDrive(driveID) {
			return driveID
		}
		return MyDriveID
	}

	return itemID
}

func childrenQuery(parent string) string {
	escaped := strings.ReplaceAll(parent, `'`, `\'`)
	return fmt.Sprintf("'%s' in parents and trashed = false", escaped)
}

func childFromFile(file *drive.File) directory.Child {
	child := directory.Child{
		ID:       file.Id,
		Name:     file.Name,
		WebURL:   file.WebViewLink,
		IsFolder: file.MimeType == FolderMimeType,
	}
	child.IsFile = !child.IsFolder

	if child.IsFile {
		size := file.Size
		child.Size = &size
	}

	child.CreatedAt = parseTime(file.Id, "createdTime", file.CreatedTime)
	child.ModifiedAt = parseTime(file.Id, "modifiedTime", file.ModifiedTime)

	return child
}

func parseTime(fileID, field, value string) *time.Time {
	if value == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.Warn("Failed to parse the file time", "fileID", fileID, "field", field, "value", value, "error", err)
		return nil
	}

	return &t
}

func wrapDriveError(msg string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			msg = msg + ": " + apiErr.Message
		}
		return directory.NewStatusError(apiErr.Code, msg, err)
	}

	return directory.NewUpstreamError(msg, err)
}
