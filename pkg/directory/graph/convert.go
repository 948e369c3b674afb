package graph

import (
	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
)

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func childFromDriveItem(item models.DriveItemable) directory.Child {
	return directory.Child{
		ID:         deref(item.GetId()),
		Name:       deref(item.GetName()),
		Size:       item.GetSize(),
		CreatedAt:  item.GetCreatedDateTime(),
		ModifiedAt: item.GetLastModifiedDateTime(),
		WebURL:     deref(item.GetWebUrl()),
		IsFolder:   item.GetFolder() != nil,
		IsFile:     item.GetFile() != nil,
	}
}

func driveFromModel(drive models.Driveable) directory.Drive {
	d := directory.Drive{
		ID:        deref(drive.GetId()),
		Name:      deref(drive.GetName()),
		DriveType: deref(drive.GetDriveType()),
		WebURL:    deref(drive.GetWebUrl()),
	}

	if owner := drive.GetOwner(); owner != nil && owner.GetUser() != nil {
		d.Owner = deref(owner.GetUser().GetDisplayName())
	}

	if quota := drive.GetQuota(); quota != nil {
		d.Quota = &directory.Quota{
			Total:     quota.GetTotal(),
			Used:      quota.GetUsed(),
			Remaining: quota.GetRemaining(),
		}
	}

	return d
}

func userFromModel(u models.Userable) directory.User {
	return directory.User{
		ID:                deref(u.GetId()),
		DisplayName:       deref(u.GetDisplayName()),
		UserPrincipalName: deref(u.GetUserPrincipalName()),
		Mail:              deref(u.GetMail()),
		JobTitle:          deref(u.GetJobTitle()),
	}
}

func messageFromModel(userID string, m models.Messageable) directory.Message {
	msg := directory.Message{
		ID:               deref(m.GetId()),
		UserID:           userID,
		Subject:          deref(m.GetSubject()),
		ReceivedDateTime: m.GetReceivedDateTime(),
		BodyPreview:      deref(m.GetBodyPreview()),
		WebLink:          deref(m.GetWebLink()),
		IsRead:           deref(m.GetIsRead()),
	}

	if from := m.GetFrom(); from != nil && from.GetEmailAddress() != nil {
		msg.From = deref(from.GetEmailAddress().GetAddress())
	}

	return msg
}

func siteFromModel(s models.Siteable) directory.Site {
	return directory.Site{
		ID:          deref(s.GetId()),
		Name:        deref(s.GetName()),
		DisplayName: deref(s.GetDisplayName()),
		WebURL:      deref(s.GetWebUrl()),
		CreatedAt:   s.GetCreatedDateTime(),
		ModifiedAt:  s.GetLastModifiedDateTime(),
	}
}

func listFromModel(l models.Listable) directory.List {
	return directory.List{
		ID:          deref(l.GetId()),
		Name:        deref(l.GetName()),
		DisplayName: deref(l.GetDisplayName()),
		WebURL:      deref(l.GetWebUrl()),
		CreatedAt:   l.GetCreatedDateTime(),
		ModifiedAt:  l.GetLastModifiedDateTime(),
	}
}

func listItemFromModel(item models.ListItemable) directory.ListItem {
	li := directory.ListItem{
		ID:         deref(item.GetId()),
		WebURL:     deref(item.GetWebUrl()),
		CreatedAt:  item.GetCreatedDateTime(),
		ModifiedAt: item.GetLastModifiedDateTime(),
	}

	if ct := item.GetContentType(); ct != nil {
		li.ContentType = deref(ct.GetName())
	}

	return li
}
