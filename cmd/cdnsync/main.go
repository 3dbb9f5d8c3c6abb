package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/cdnsync/internal/config"
	"github.com/openmined/cdnsync/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var home, _ = os.UserHomeDir()

// flagKeys maps CLI flags onto config keys. Flags absent from a command are skipped.
var flagKeys = map[string]string{
	"root":        "root",
	"bucket":      "bucket",
	"prefix":      "upload.prefix",
	"concurrency": "upload.concurrency",
	"log-level":   "log.level",
	"log-json":    "log.json",
	"metrics":     "metrics.textfile",
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cdnsync",
		Short:         "Mirror a local asset directory into an S3 bucket",
		Version:       version.Detailed(),
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default ./"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "target bucket")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(
		newSyncCmd(),
		newEmptyCmd(),
		newURLCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	// a missing .env is fine, anything else is worth a warning
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	setupLogger(slog.LevelWarn, false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red.Render(errorPrefix(err)+err.Error()))
		stop()
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, CDNSYNC_* env vars and flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", "cdnsync"))
		v.SetConfigName(strings.TrimSuffix(config.DefaultFileName, filepath.Ext(config.DefaultFileName)))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	config.BindEnv(v)

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	return config.Load(v)
}

// prepare loads the config and installs the run logger. validate is false for
// commands that never reach the bucket.
func prepare(cmd *cobra.Command, validate bool) (*config.Config, error) {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelWarn
	}
	setupLogger(level, cfg.Log.JSON)
	slog.Debug("config loaded", "path", cfg.Path, "bucket", cfg.Bucket, "root", cfg.Root)
	return cfg, nil
}

// setupLogger sends logs to stderr so stdout carries only command output
func setupLogger(level slog.Level, json bool) {
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}
	slog.SetDefault(slog.New(handler).With("run", uuid.NewString()))
}
