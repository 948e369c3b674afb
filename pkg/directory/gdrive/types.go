package gdrive

import (
	"google.golang.org/api/drive/v3"
)

const (
	FolderMimeType = "application/vnd.google-apps.folder"

	// MyDriveID addresses the service account's own drive instead of a shared drive.
	MyDriveID = "root"

	fileFields = "nextPageToken, files(id, name, mimeType, size, createdTime, modifiedTime, webViewLink)"
)

// GDriveClient reads folder listings from Google Drive.
type GDriveClient struct {
	service *drive.Service
}
