package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xrsl/job/internal/ai/gemini"
	"github.com/xrsl/job/internal/config"
	"github.com/xrsl/job/internal/logger"
	"github.com/xrsl/job/internal/secrets"
	"github.com/xrsl/job/internal/store"
)

const app = "job"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "job is a personal job-hunting assistant: search career pages, store postings, assess fit, draft applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Println("Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job.toml, discovered via JOB_CONFIG, cwd, XDG config dir, home)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	jsonOut, _ := cmd.Flags().GetBool("json")
	return logger.New(jsonOut, debug)
}

// loadConfig resolves the full settings stack: command flags, environment,
// config file, built-in defaults.
func loadConfig(cmd *cobra.Command, bindings map[string]string, log *zap.Logger) (*config.Config, error) {
	cfg, _, err := config.Load(config.LoadOptions{
		Flags:        cmd.Flags(),
		FlagBindings: bindings,
		ConfigFile:   cfgFile,
		Logger:       log,
	})
	return cfg, err
}

// dbPath resolves the database location, preferring the configured path.
func dbPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return store.DefaultPath()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := dbPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// newGenerator builds the Gemini backend shared by extract, fit and app.
func newGenerator(ctx context.Context, cfg *config.Config, model string, log *zap.Logger) (*gemini.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.AI.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file in job.toml or the GEMINI_API_KEY environment variable)", err)
	}

	return gemini.NewGenerator(ctx, apiKey, model, cfg.AI.Gemini.MaxRetries, log.With(
		zap.String("provider", "gemini"),
		zap.String("model", model),
	))
}

// findJob resolves a job by numeric id or by posting URL.
func findJob(ctx context.Context, s *store.Store, identifier string) (*store.Job, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return s.GetJob(ctx, id)
	}
	return s.GetJobByURL(ctx, identifier)
}
