package cli

import (
	"context"
	"io"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/bowr/streamear/pkg/repository"
	"github.com/bowr/streamear/pkg/settings"
	"github.com/bowr/streamear/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const (
	backendFile      = "file"
	backendGCS       = "gcs"
	backendFirestore = "firestore"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Settings document
	settingsPath string

	// Seed store
	backend     string
	dataDir     string
	bucket      string
	prefix      string
	project     string
	database    string
	credentials string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("STREAMEAR_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       string(logging.FormatConsole),
			Sources:     cli.EnvVars("STREAMEAR_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.StringFlag{
			Name:        "settings",
			Aliases:     []string{"s"},
			Usage:       "Path to the YAML settings file",
			Value:       "settings.yaml",
			Sources:     cli.EnvVars("STREAMEAR_SETTINGS"),
			Destination: &cfg.settingsPath,
		},
		&cli.StringFlag{
			Name:        "backend",
			Aliases:     []string{"b"},
			Usage:       "Seed store backend (file, gcs, firestore)",
			Value:       backendFile,
			Sources:     cli.EnvVars("STREAMEAR_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory of the file backend",
			Value:       ".",
			Sources:     cli.EnvVars("STREAMEAR_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket of the gcs backend",
			Sources:     cli.EnvVars("STREAMEAR_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "Object name prefix of the gcs backend",
			Sources:     cli.EnvVars("STREAMEAR_PREFIX"),
			Destination: &cfg.prefix,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("STREAMEAR_PROJECT", "GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("STREAMEAR_DATABASE", "FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Path to a Google Cloud service account key; application default credentials when empty",
			Sources:     cli.EnvVars("STREAMEAR_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
	}
}

// setupLogger installs the configured logger as default and attaches it to ctx
func (cfg *config) setupLogger(ctx context.Context, w io.Writer) context.Context {
	logger := logging.New(cfg.logLevel, logging.Format(cfg.logFormat), w)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

func (cfg *config) clientOptions() []option.ClientOption {
	if cfg.credentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.credentials)}
}

// loadSettings reads the settings document. It is called per use, never cached.
func (cfg *config) loadSettings() (*settings.Settings, error) {
	return settings.Load(cfg.settingsPath)
}

// newRepository creates the seed store selected by --backend. The returned
// closer releases backend clients.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, func(), error) {
	nop := func() {}

	switch cfg.backend {
	case backendFile, "":
		if cfg.dataDir == "" {
			return nil, nil, goerr.New("data-dir is required")
		}
		return repository.NewFile(cfg.dataDir), nop, nil

	case backendGCS:
		if cfg.bucket == "" {
			return nil, nil, goerr.New("bucket is required for gcs backend")
		}
		var opts []adapter.StorageOption
		if cfg.prefix != "" {
			opts = append(opts, adapter.WithPrefix(cfg.prefix))
		}
		storage, err := adapter.NewStorage(ctx, cfg.bucket, cfg.clientOptions(), opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create storage")
		}
		return repository.NewStorage(storage), nop, nil

	case backendFirestore:
		if cfg.project == "" {
			return nil, nil, goerr.New("project is required for firestore backend")
		}
		if cfg.database == "" {
			return nil, nil, goerr.New("database is required for firestore backend")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database, cfg.clientOptions()...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create repository")
		}
		return repo, func() { _ = repo.Close() }, nil

	default:
		return nil, nil, goerr.New("unknown backend", goerr.V("backend", cfg.backend))
	}
}

// geminiConfig holds the transcription provider settings
type geminiConfig struct {
	project  string
	location string
	model    string
}

func geminiFlags(cfg *geminiConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.location,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model used for transcription",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.model,
		},
	}
}

// newGemini creates a new Gemini transcriber
func (g *geminiConfig) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	if g.project == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if g.location == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, g.project, g.location, adapter.WithGeminiModel(g.model))
}
