// cmd/tools/riskctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lepto-risk-workers/internal/common/config"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/engine"
)

type rootOptions struct {
	ConfigPath string
	SQLitePath string
	LogLevel   string
	JSON       bool
	Timeout    time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "Query, seed and administer the Leptospirosis risk store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: configs/config.yaml)")
	pf.StringVar(&opts.SQLitePath, "sqlite", "", "use this SQLite snapshot as the record source")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.JSON, "json", false, "print JSON instead of text")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall operation timeout")

	cmd.AddCommand(
		newQueryCmd(opts),
		newCompareCmd(opts),
		newCountriesCmd(opts),
		newChatCmd(opts),
		newSeedCmd(opts),
		newMigrateCmd(opts),
		newRegistryCmd(opts),
		newSurveillanceCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFromFile(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.SQLitePath != "" {
		cfg.Engine.Source = config.SourceSQLite
		cfg.Database.SQLite.Path = o.SQLitePath
		cfg.Engine.CacheEnabled = false
	}
	return cfg, nil
}

func (o *rootOptions) logger() logger.Logger {
	return logger.NewStructured(o.LogLevel, "console", "stderr")
}

func (o *rootOptions) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, o.Timeout)
}

// openEngine opens the configured source and returns an engine over it.
// Call the returned close func when done.
func (o *rootOptions) openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := o.logger()
	backend, err := engine.OpenSource(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return engine.FromConfig(cfg, backend.Source, nil, log), backend.Close, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
