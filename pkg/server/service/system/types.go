package system

import (
	"context"

	"github.com/KyleBrandon/synapse/pkg/utils"
)

const WelcomeMessage = "Welcome to Project Synapse API!"

const (
	DatabaseOK       = "ok"
	DatabaseDisabled = "disabled"
	DatabaseError    = "error"
)

type (
	// Pinger reports whether the database is reachable.
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	Handler struct {
		logLevel *utils.LogLevelHandler
		db       Pinger
	}
)
