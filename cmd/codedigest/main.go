// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command codedigest renders structural digests of Python repositories.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/codedigest/internal/digest"
	"github.com/petar-djukic/codedigest/internal/logging"
	"github.com/petar-djukic/codedigest/internal/ui"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd := newRootCmd(viper.New())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errLookupMiss) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree with its configuration bound to v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codedigest",
		Short: "Structural digests of Python source",
		Long: "codedigest indexes the declarations of Python modules and renders them at a chosen level of detail, " +
			"from bare signatures to full source, along with a ranked skeleton map of the repository.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.NewWriter(cmd.ErrOrStderr(), v.GetString("log-level"))
			logging.SetDefault(logger)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.String("workdir", ".", "Repository root directory")
	flags.String("rev", "", "Read sources from this git revision instead of the working tree")
	flags.String("level", "moderate", "Detail level: signature, minimal, moderate, full")
	flags.Bool("line-numbers", true, "Prefix rendered lines with their line number")
	flags.StringSlice("exclude-markers", digest.DefaultExcludeMarkers, "Comment markers that stop comment attachment")
	flags.Int("map-token-budget", 2048, "Token budget for the repository map")
	flags.Int("class-render-limit", 0, "Fall back to signatures for moderate class renders longer than this (0 = no limit)")
	flags.Int("jobs", 4, "Files digested in parallel")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("color", ui.ColorAuto, "Color diagnostics: auto, always, never")

	// Bind flags to viper.
	for _, name := range []string{
		"workdir", "rev", "level", "line-numbers", "exclude-markers",
		"map-token-budget", "class-render-limit", "jobs", "log-level", "color",
	} {
		v.BindPFlag(name, flags.Lookup(name))
	}

	// Env vars: CODEDIGEST_WORKDIR, CODEDIGEST_LEVEL, etc.
	v.SetEnvPrefix("CODEDIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Config file.
	v.SetConfigName(".codedigest")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newRenderCmd(v))
	rootCmd.AddCommand(newShowCmd(v))
	rootCmd.AddCommand(newExcerptCmd(v))
	rootCmd.AddCommand(newOutlineCmd(v))
	rootCmd.AddCommand(newMapCmd(v))
	rootCmd.AddCommand(newDirsCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print codedigest version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codedigest %s\n", version)
		},
	}
}
