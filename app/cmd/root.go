// Package cmd wires the threadview cobra tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexcodex/threadview/config"
)

var (
	cfgFile   string
	workspace string

	globalCfg *config.Config
)

// Execute is the entry point for the CLI.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "threadview",
		Short:         "Terminal viewer for agent chat transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				if wd, err := os.Getwd(); err == nil {
					workspace = wd
				} else {
					return err
				}
			}
			if cfgFile == "" {
				cfgFile = config.DefaultPath(workspace)
			}
			cfg, err := config.Load(cfgFile, workspace)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			globalCfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace directory")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to threadview config file")

	root.AddCommand(
		newViewCmd(),
		newRenderCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return root
}

// newLogger builds the shared logger, teeing to the configured log file
// when one is set.
func newLogger() *log.Logger {
	var w io.Writer = os.Stderr
	if globalCfg != nil && globalCfg.Logging.File != "" {
		if f, err := os.OpenFile(globalCfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w = io.MultiWriter(os.Stderr, f)
		}
	}
	return log.New(w, "threadview ", log.LstdFlags|log.Lmicroseconds)
}

// pipelineLogger returns the extraction diagnostics logger, nil unless
// pipeline_debug is enabled.
func pipelineLogger() *log.Logger {
	if globalCfg != nil && globalCfg.Logging.Debug {
		return newLogger()
	}
	return nil
}
