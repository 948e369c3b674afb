package users

import (
	"context"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
)

type (
	UserLister interface {
		ListUsers(ctx context.Context) ([]directory.User, error)
	}

	Handler struct {
		users   UserLister
		timeout time.Duration
	}
)
