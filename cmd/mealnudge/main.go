package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Forkful/MealNudge/internal/api"
	"github.com/Forkful/MealNudge/internal/lockfile"
	"github.com/Forkful/MealNudge/internal/notify"
	"github.com/Forkful/MealNudge/internal/store"
	"github.com/Forkful/MealNudge/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for MealNudge state data
	DefaultStateDir = "/var/lib/mealnudge"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "mealnudge.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to lock state directory", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	storeOpts := buildStoreOptions(flags)
	notifyOpts := buildNotifyOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping MealNudge reminder engine")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "channel", *flags.channel)
	if err := api.Run(storeOpts, notifyOpts, apiOpts...); err != nil {
		slog.Error("MealNudge failed to run", "error", err)
		lock.Release()
		os.Exit(1)
	}
	slog.Info("MealNudge exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	APIAddr     string
	Channel     string
	Recipient   string
	AuthGrant   bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir  *string
	dbDSN     *string
	apiAddr   *string
	channel   *string
	recipient *string
	authGrant *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("MEALNUDGE_STATE_DIR"),
		APIAddr:     os.Getenv("API_ADDR"),
		Channel:     os.Getenv("NOTIFY_CHANNEL"),
		Recipient:   os.Getenv("NOTIFY_RECIPIENT"),
		AuthGrant:   util.ParseBoolEnv("NOTIFY_AUTH_GRANT", true),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No MEALNUDGE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// Default to a SQLite file inside the state directory.
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"MEALNUDGE_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"NOTIFY_CHANNEL", config.Channel,
		"NOTIFY_RECIPIENT_SET", config.Recipient != "",
		"NOTIFY_AUTH_GRANT", config.AuthGrant)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for MealNudge data (overrides $MEALNUDGE_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the reminder store (overrides $DATABASE_URL)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		channel:   flag.String("channel", config.Channel, "notification channel: console, twilio or whatsapp (overrides $NOTIFY_CHANNEL)"),
		recipient: flag.String("recipient", config.Recipient, "notification recipient for phone-based channels (overrides $NOTIFY_RECIPIENT)"),
		authGrant: flag.Bool("auth-grant", config.AuthGrant, "grant notification authorization when prompted (overrides $NOTIFY_AUTH_GRANT)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"channel", *flags.channel,
		"recipient_set", *flags.recipient != "",
		"authGrant", *flags.authGrant)

	// Follow the state directory when the DSN was derived from it.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return nil
	}
	dbDir := filepath.Dir(*flags.dbDSN)
	slog.Debug("Creating state directory for file-based database", "state_dir", dbDir)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		slog.Error("Failed to create state directory", "error", err, "state_dir", dbDir)
		return err
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, will use in-memory store")
		return storeOpts
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgres")
		storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
	} else {
		slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
		storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
	}
	return storeOpts
}

// buildNotifyOptions constructs notification center configuration options
func buildNotifyOptions(flags Flags) []notify.Option {
	return []notify.Option{notify.WithAuthorizationGrant(*flags.authGrant)}
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.channel != "" {
		apiOpts = append(apiOpts, api.WithChannel(*flags.channel))
	}
	if *flags.recipient != "" {
		apiOpts = append(apiOpts, api.WithRecipient(*flags.recipient))
	}
	return apiOpts
}
