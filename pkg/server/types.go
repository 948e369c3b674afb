package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/KyleBrandon/synapse/internal/config"
	"github.com/KyleBrandon/synapse/pkg/runlog"
	"github.com/KyleBrandon/synapse/pkg/server/service/gdrive"
	"github.com/KyleBrandon/synapse/pkg/server/service/mail"
	"github.com/KyleBrandon/synapse/pkg/server/service/onedrive"
	"github.com/KyleBrandon/synapse/pkg/server/service/sharepoint"
	"github.com/KyleBrandon/synapse/pkg/server/service/users"
)

const (
	DEFAULT_SERVER_PORT          = "8080"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"

	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 10 * time.Minute
	shutdownTimeout   = 15 * time.Second
)

type (
	// Upstream is everything the Graph backed routes read.
	Upstream interface {
		users.UserLister
		mail.MailReader
		onedrive.DriveReader
		sharepoint.SiteReader
	}

	ServerConfig struct {
		mux *http.ServeMux

		// environment settings
		TenantID           string
		ClientID           string
		ClientSecret       string
		DatabaseURL        string
		ServerPort         string
		LogFileLocation    string
		ConfigFileLocation string
		GoogleKeyFile      string
		ProfilerAddress    string
		Settings           config.Config

		// logging information
		Logger      *slog.Logger
		LoggerLevel *slog.LevelVar
		LogFile     *os.File

		upstream     Upstream
		google       gdrive.DriveReader
		runs         *runlog.Recorder
		DBConnection *sql.DB
	}
)
