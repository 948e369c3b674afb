package mail

import (
	"context"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
)

type (
	MailReader interface {
		ListUsers(ctx context.Context) ([]directory.User, error)
		ListMessages(ctx context.Context, userID string) ([]directory.Message, error)
	}

	Handler struct {
		mail        MailReader
		concurrency int
		timeout     time.Duration
	}
)
