package directory

import (
	"context"
	"time"
)

// RootItemID identifies the top container of a drive.
const RootItemID = "root"

// Kind of an entry in a remote tree.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

type (
	// ContainerRef identifies a scope whose children can be listed.
	ContainerRef struct {
		DriveID string
		ItemID  string
	}

	// Child is a single record returned by a children listing.
	Child struct {
		ID         string
		Name       string
		Size       *int64
		CreatedAt  *time.Time
		ModifiedAt *time.Time
		WebURL     string
		IsFolder   bool
		IsFile     bool
	}

	// Entry is one node of a collected tree with its materialized path.
	Entry struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Kind       Kind       `json:"kind"`
		Size       *int64     `json:"size,omitempty"`
		CreatedAt  *time.Time `json:"created_datetime"`
		ModifiedAt *time.Time `json:"modified_datetime"`
		WebURL     string     `json:"web_url"`
		Folder     bool       `json:"folder"`
		File       bool       `json:"file"`
		Path       string     `json:"path,omitempty"`
	}

	// ChildLister lists the immediate children of a container.
	ChildLister interface {
		ListChildren(ctx context.Context, driveID, itemID string) ([]Child, error)
	}

	Quota struct {
		Total     *int64 `json:"total"`
		Used      *int64 `json:"used"`
		Remaining *int64 `json:"remaining"`
	}

	Drive struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		DriveType string `json:"drive_type"`
		Owner     string `json:"owner,omitempty"`
		Quota     *Quota `json:"quota"`
		WebURL    string `json:"web_url"`
	}

	User struct {
		ID                string `json:"id"`
		DisplayName       string `json:"display_name"`
		UserPrincipalName string `json:"user_principal_name"`
		Mail              string `json:"mail,omitempty"`
		JobTitle          string `json:"job_title,omitempty"`
	}

	Message struct {
		ID               string     `json:"id"`
		UserID           string     `json:"user_id"`
		Subject          string     `json:"subject"`
		From             string     `json:"from,omitempty"`
		ReceivedDateTime *time.Time `json:"received_datetime"`
		BodyPreview      string     `json:"body_preview"`
		WebLink          string     `json:"web_link,omitempty"`
		IsRead           bool       `json:"is_read"`
	}

	Site struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		DisplayName string     `json:"display_name"`
		WebURL      string     `json:"web_url"`
		CreatedAt   *time.Time `json:"created_datetime"`
		ModifiedAt  *time.Time `json:"modified_datetime"`
	}

	List struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		DisplayName string     `json:"display_name"`
		WebURL      string     `json:"web_url"`
		CreatedAt   *time.Time `json:"created_datetime"`
		ModifiedAt  *time.Time `json:"modified_datetime"`
	}

	ListItem struct {
		ID          string     `json:"id"`
		WebURL      string     `json:"web_url"`
		ContentType string     `json:"content_type,omitempty"`
		CreatedAt   *time.Time `json:"created_datetime"`
		ModifiedAt  *time.Time `json:"modified_datetime"`
	}
)

// Root returns the reference to the top of the given drive.
func Root(driveID string) ContainerRef {
	return ContainerRef{DriveID: driveID, ItemID: RootItemID}
}

// KindOf derives the kind from the folder marker only.
func (c Child) KindOf() Kind {
	if c.IsFolder {
		return KindFolder
	}

	return KindFile
}

// NewEntry builds the entry for a child stored at path, the full slash joined
// name chain from the traversal root. Size is kept for files only.
func NewEntry(c Child, path string) Entry {
	kind := c.KindOf()

	e := Entry{
		ID:         c.ID,
		Name:       c.Name,
		Kind:       kind,
		CreatedAt:  c.CreatedAt,
		ModifiedAt: c.ModifiedAt,
		WebURL:     c.WebURL,
		Folder:     kind == KindFolder,
		File:       kind == KindFile,
		Path:       path,
	}

	// folders have no content size
	if kind == KindFile {
		e.Size = c.Size
	}

	return e
}

// JoinPath appends name to a materialized parent path.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "/" + name
}
