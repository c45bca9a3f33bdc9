package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/logs"
	"shoebox/internal/pipeline"
	"shoebox/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads and validates the configuration without touching the
// consolidation root. Read-only commands stop here; mutating commands go
// through workspaceConfig.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// workspaceConfig loads the configuration and creates the consolidation
// root tree.
func (c *commandContext) workspaceConfig() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stageLogger builds the file-backed logger stage commands run under. The
// console stays reserved for progress and summaries; structured detail goes
// to <log_dir>/shoebox.log, with old run artifacts pruned per retention.
func (c *commandContext) stageLogger(cfg *config.Config) (*slog.Logger, error) {
	logPath := filepath.Join(cfg.Paths.LogDir, logs.LogName)
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		return nil, err
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "final_consolidation_*.json"},
	)
	return logger, nil
}

// stageContext tags the command context with a fresh run ID so single-stage
// invocations correlate in the log the same way full runs do.
func stageContext(cmd *cobra.Command) context.Context {
	return services.WithRunID(cmd.Context(), uuid.NewString())
}

// withRunLock holds the exclusive run lock for the duration of fn.
func withRunLock(cfg *config.Config, fn func() error) error {
	lock := pipeline.NewLock(cfg.LockPath())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

// resolveMode applies the --live / --dry-run overrides on top of the
// configured dry_run default.
func resolveMode(cfg *config.Config, live, dryRun bool) error {
	if live && dryRun {
		return errors.New("cannot combine --live with --dry-run")
	}
	if live {
		cfg.Process.DryRun = false
	}
	if dryRun {
		cfg.Process.DryRun = true
	}
	return nil
}

func addModeFlags(cmd *cobra.Command, live, dryRun *bool) {
	cmd.Flags().BoolVar(live, "live", false, "Apply changes on disk, overriding dry_run from config")
	cmd.Flags().BoolVar(dryRun, "dry-run", false, "Preview changes without modifying files")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func modeLabel(dryRun bool) string {
	if dryRun {
		return "DRY RUN"
	}
	return "LIVE"
}
