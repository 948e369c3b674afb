package server

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/KyleBrandon/synapse/internal/config"
	"github.com/KyleBrandon/synapse/internal/database"
	"github.com/KyleBrandon/synapse/pkg/directory/collector"
	googledrive "github.com/KyleBrandon/synapse/pkg/directory/gdrive"
	"github.com/KyleBrandon/synapse/pkg/directory/graph"
	"github.com/KyleBrandon/synapse/pkg/runlog"
	"github.com/KyleBrandon/synapse/pkg/server/service/gdrive"
	"github.com/KyleBrandon/synapse/pkg/server/service/mail"
	"github.com/KyleBrandon/synapse/pkg/server/service/onedrive"
	"github.com/KyleBrandon/synapse/pkg/server/service/sharepoint"
	"github.com/KyleBrandon/synapse/pkg/server/service/system"
	"github.com/KyleBrandon/synapse/pkg/server/service/users"
	"github.com/KyleBrandon/synapse/pkg/utils"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Import for side effects (PostgreSQL driver)
)

// Used by "flag" to read command line argument
var (
	cmdLineFlagLogLevel string
)

func init() {
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the server at")
}

func InitializeServer() error {
	slog.Debug(">>InitializeServer")
	defer slog.Debug("<<InitializeServer")

	cfg, err := initializeServerConfig()
	if err != nil {
		return err
	}
	defer cfg.LogFile.Close()

	if err := cfg.openDatabase(); err != nil {
		return err
	}
	if cfg.DBConnection != nil {
		defer cfg.DBConnection.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.connectUpstreams(ctx); err != nil {
		return err
	}

	cfg.mux = cfg.buildMux()

	cfg.startProfiler()

	return cfg.runServer(ctx)
}

func initializeServerConfig() (*ServerConfig, error) {
	slog.Debug(">>initalizeServerConfig")
	defer slog.Debug("<<initalizeServerConfig")

	cfg := &ServerConfig{}

	// MUST BE FIRST FOR LOGGER
	if err := cfg.readEnvironmentVariables(); err != nil {
		return nil, err
	}

	if err := cfg.configureLogger(); err != nil {
		return nil, err
	}

	settings, err := config.LoadConfigSettings(cfg.ConfigFileLocation)
	if err != nil {
		slog.Error("Failed to load config file", "file", cfg.ConfigFileLocation, "error", err)
		return nil, err
	}

	cfg.Settings = settings

	return cfg, nil
}

func (sc *ServerConfig) readEnvironmentVariables() error {
	slog.Debug(">>readEnvironmentVariables")
	defer slog.Debug("<<readEnvironmentVariables")

	// load the environment
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Could not load .env file", "error", err)
	}

	sc.TenantID = os.Getenv("AZURE_TENANT_ID")
	sc.ClientID = os.Getenv("AZURE_CLIENT_ID")
	sc.ClientSecret = os.Getenv("AZURE_CLIENT_SECRET")
	if len(sc.TenantID) == 0 || len(sc.ClientID) == 0 || len(sc.ClientSecret) == 0 {
		slog.Error("Azure credentials are not configured")
		return errors.New("environment variables AZURE_TENANT_ID, AZURE_CLIENT_ID and AZURE_CLIENT_SECRET are required")
	}

	sc.ServerPort = os.Getenv("PORT")
	if len(sc.ServerPort) == 0 {
		sc.ServerPort = DEFAULT_SERVER_PORT
	}

	sc.LogFileLocation = os.Getenv("LOG_FILE_LOCATION")

	sc.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}

	sc.DatabaseURL = os.Getenv("DATABASE_URL")
	sc.GoogleKeyFile = os.Getenv("GOOGLE_SERVICE_KEY_FILE")
	sc.ProfilerAddress = os.Getenv("PROFILER_ADDRESS")

	return nil
}

func (sc *ServerConfig) configureLogger() error {
	slog.Debug(">>configureLogger")
	defer slog.Debug("<<configureLogger")

	// create a variable to store the current log level
	currentLevel := new(slog.LevelVar)

	// parse the log level from any passed in command line flag
	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	currentLevel.Set(level)

	// by default we will write to stderr
	logFile := os.Stderr
	if len(sc.LogFileLocation) != 0 {
		logFile, err = os.OpenFile(sc.LogFileLocation, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			slog.Error("Failed to open log file", "file", sc.LogFileLocation, "error", err)
			return err
		}
	}

	logger := utils.NewLogger(logFile, currentLevel)
	slog.SetDefault(logger)

	sc.Logger = logger
	sc.LoggerLevel = currentLevel
	sc.LogFile = logFile

	return nil
}

// openDatabase connects to Postgres when DATABASE_URL is set. Without it the
// traversal run log is disabled.
func (sc *ServerConfig) openDatabase() error {
	if len(sc.DatabaseURL) == 0 {
		slog.Info("No database configured, traversal runs will not be recorded")
		sc.runs = runlog.New(nil)
		return nil
	}

	db, err := sql.Open("postgres", sc.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		return err
	}

	if err := db.Ping(); err != nil {
		slog.Warn("Database is not reachable yet", "error", err)
	}

	sc.DBConnection = db
	sc.runs = runlog.New(database.New(db))

	return nil
}

func (sc *ServerConfig) connectUpstreams(ctx context.Context) error {
	client, err := graph.New(graph.Config{
		TenantID:     sc.TenantID,
		ClientID:     sc.ClientID,
		ClientSecret: sc.ClientSecret,
		FollowPages:  sc.Settings.FollowPages(),
		PageSize:     sc.Settings.Traversal.PageSize,
	})
	if err != nil {
		slog.Error("Failed to create the Graph client", "error", err)
		return err
	}
	sc.upstream = client

	if len(sc.GoogleKeyFile) == 0 {
		slog.Info("No Google service key configured, Google Drive routes are disabled")
		return nil
	}

	google, err := googledrive.New(ctx, sc.GoogleKeyFile)
	if err != nil {
		slog.Error("Failed to create the Google Drive client", "error", err)
		return err
	}
	sc.google = google

	return nil
}

func (sc *ServerConfig) collectorConfig() collector.Config {
	return collector.Config{
		MaxDepth:       sc.Settings.Traversal.MaxDepth,
		Concurrency:    sc.Settings.Traversal.Concurrency,
		RequestTimeout: sc.Settings.RequestTimeout(),
	}
}

// buildMux registers every service on a new mux.
func (sc *ServerConfig) buildMux() *http.ServeMux {
	mux := http.NewServeMux()
	timeout := sc.Settings.RequestTimeout()

	var db system.Pinger
	if sc.DBConnection != nil {
		db = sc.DBConnection
	}
	system.NewHandler(mux, sc.LoggerLevel, db)

	users.NewHandler(mux, sc.upstream, timeout)
	mail.NewHandler(mux, sc.upstream, sc.Settings.Mail.Concurrency, timeout)
	onedrive.NewHandler(mux, sc.upstream, sc.collectorConfig(), sc.runs)
	sharepoint.NewHandler(mux, sc.upstream, timeout)

	if sc.google != nil {
		gdrive.NewHandler(mux, sc.google, sc.collectorConfig(), sc.runs)
	}

	return mux
}

func (sc *ServerConfig) startProfiler() {
	if len(sc.ProfilerAddress) == 0 {
		return
	}

	go func() {
		slog.Debug("Start profiling server", "address", sc.ProfilerAddress)
		err := http.ListenAndServe(sc.ProfilerAddress, nil)
		if err != nil {
			slog.Info("Profiling server failed to start", "error", err)
		}
	}()
}

// runServer listens until ctx is canceled, then drains in-flight requests.
func (sc *ServerConfig) runServer(ctx context.Context) error {
	slog.Debug(">>runServer")
	defer slog.Debug("<<runServer")

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", sc.ServerPort),
		Handler:           utils.RequestLogger(sc.mux),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", sc.ServerPort)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		slog.Error("Server failed", "error", err)
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		return err
	}

	return nil
}
