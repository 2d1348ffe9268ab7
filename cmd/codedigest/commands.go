// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/codedigest/internal/ui"
	"github.com/petar-djukic/codedigest/pkg/digester"
	"github.com/petar-djukic/codedigest/pkg/types"
)

// Output formats for commands that produce structured results.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// errLookupMiss makes the process exit non-zero after a miss has already
// been reported.
var errLookupMiss = errors.New("lookup miss")

// newDigester builds a Digester from the bound configuration.
func newDigester(v *viper.Viper) (digester.Digester, error) {
	d, err := digester.New(digester.Config{
		WorkDir:          v.GetString("workdir"),
		Rev:              v.GetString("rev"),
		Jobs:             v.GetInt("jobs"),
		ExcludeMarkers:   v.GetStringSlice("exclude-markers"),
		MapTokenBudget:   v.GetInt("map-token-budget"),
		ClassRenderLimit: v.GetInt("class-render-limit"),
	})
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return d, nil
}

// renderOptions reads the detail level and numbering mode.
func renderOptions(v *viper.Viper) (types.DetailLevel, types.NumberMode, error) {
	level, err := types.ParseDetailLevel(v.GetString("level"))
	if err != nil {
		return 0, 0, err
	}
	return level, types.NumberModeOf(v.GetBool("line-numbers")), nil
}

// newRenderCmd creates the "render" command.
func newRenderCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "render <file>",
		Short: "Render a whole module",
		Long:  "Render prints every top-level declaration of a module at the configured detail level.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, mode, err := renderOptions(v)
			if err != nil {
				return err
			}
			d, err := newDigester(v)
			if err != nil {
				return err
			}
			out, err := d.RenderFile(cmd.Context(), args[0], level, mode)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// newShowCmd creates the "show" command and its function, class, and
// method subcommands.
func newShowCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render a single declaration",
		Long:  "Show looks up one function, class, or method. When the name is not found, close matches are suggested and the command exits non-zero.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "function <file> <name>",
		Short: "Render a top-level function",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, v, "function", args[1], func(d digester.Digester, level types.DetailLevel, mode types.NumberMode) (*digester.Lookup, error) {
				return d.Function(cmd.Context(), args[0], args[1], level, mode)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "class <file> <name>",
		Short: "Render a top-level class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, v, "class", args[1], func(d digester.Digester, level types.DetailLevel, mode types.NumberMode) (*digester.Lookup, error) {
				return d.Class(cmd.Context(), args[0], args[1], level, mode)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "method <file> <class> <method>",
		Short: "Render a method of a top-level class",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, v, "method", args[1]+"."+args[2], func(d digester.Digester, level types.DetailLevel, mode types.NumberMode) (*digester.Lookup, error) {
				return d.Method(cmd.Context(), args[0], args[1], args[2], level, mode)
			})
		},
	})

	return cmd
}

type lookupFunc func(d digester.Digester, level types.DetailLevel, mode types.NumberMode) (*digester.Lookup, error)

// runShow runs one lookup and reports a miss with suggestions on stderr.
func runShow(cmd *cobra.Command, v *viper.Viper, kind, name string, lookup lookupFunc) error {
	level, mode, err := renderOptions(v)
	if err != nil {
		return err
	}
	d, err := newDigester(v)
	if err != nil {
		return err
	}
	res, err := lookup(d, level, mode)
	if err != nil {
		return err
	}
	if !res.Found {
		stderr := cmd.ErrOrStderr()
		ui.NewStyles(ui.ColorEnabled(v.GetString("color"), stderr)).Miss(stderr, kind, name, res.Suggestions)
		return errLookupMiss
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Text)
	return nil
}

// newExcerptCmd creates the "excerpt" command.
func newExcerptCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "excerpt <file>",
		Short: "Print a window of lines",
		Long:  "Excerpt prints the 1-based inclusive line range [start, end] of a file, widened by context lines.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetInt("start")
			end, _ := cmd.Flags().GetInt("end")
			contextLines, _ := cmd.Flags().GetInt("context")

			d, err := newDigester(v)
			if err != nil {
				return err
			}
			out, err := d.Excerpt(cmd.Context(), args[0], start, end, contextLines, types.NumberModeOf(v.GetBool("line-numbers")))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int("start", 1, "First line (1-based)")
	cmd.Flags().Int("end", -1, "Last line, inclusive (-1 = end of file)")
	cmd.Flags().Int("context", 0, "Extra lines on each side")

	return cmd
}

// outlineRow is one declaration in structured outline output.
type outlineRow struct {
	Kind  string `json:"kind" yaml:"kind"`
	Name  string `json:"name" yaml:"name"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// newOutlineCmd creates the "outline" command.
func newOutlineCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "List the declarations of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			d, err := newDigester(v)
			if err != nil {
				return err
			}
			entries, err := d.Outline(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([]outlineRow, len(entries))
			for i, e := range entries {
				rows[i] = outlineRow{
					Kind:  strings.ToLower(e.Kind.String()),
					Name:  e.Name,
					Start: e.StartLine,
					End:   e.EndLine,
				}
			}
			if format != formatText {
				return printStructured(cmd.OutOrStdout(), format, rows)
			}

			w := cmd.OutOrStdout()
			for _, row := range rows {
				if row.Kind == "import" {
					row.Name = "-"
				}
				fmt.Fprintf(w, "%d-%d\t%s\t%s\n", row.Start, row.End, row.Kind, row.Name)
			}
			return nil
		},
	}

	cmd.Flags().String("format", formatText, "Output format: text, json, yaml")

	return cmd
}

// newMapCmd creates the "map" command.
func newMapCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Render the ranked repository map",
		Long:  "Map digests every module in the repository and prints the most referenced declarations as signatures, within the token budget.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			personalized, _ := cmd.Flags().GetStringSlice("personalize")
			format, _ := cmd.Flags().GetString("format")

			d, err := newDigester(v)
			if err != nil {
				return err
			}
			result, err := d.Map(cmd.Context(), personalized)
			if err != nil {
				return err
			}
			if format != formatText {
				return printStructured(cmd.OutOrStdout(), format, mapOutput{
					Map:        result.Map,
					FileCount:  result.FileCount,
					TotalFiles: result.TotalFiles,
					SymCount:   result.SymCount,
					TotalSyms:  result.TotalSyms,
					TokensUsed: result.TokensUsed,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Map)
			return nil
		},
	}

	cmd.Flags().StringSlice("personalize", nil, "Files the reader is focused on; their neighbours rank higher")
	cmd.Flags().String("format", formatText, "Output format: text, json, yaml")

	return cmd
}

// newDirsCmd creates the "dirs" command.
func newDirsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirs [prefix]",
		Short: "List repository directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depth, _ := cmd.Flags().GetInt("depth")
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			d, err := newDigester(v)
			if err != nil {
				return err
			}
			dirs, err := d.Dirs(cmd.Context(), prefix, depth)
			if err != nil {
				return err
			}
			for _, dir := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}

	cmd.Flags().Int("depth", -1, "Maximum number of path separators (-1 = unlimited)")

	return cmd
}

// mapOutput is the repository map with its statistics in structured output.
type mapOutput struct {
	Map        string  `json:"map" yaml:"map"`
	FileCount  int     `json:"file_count" yaml:"file_count"`
	TotalFiles int     `json:"total_files" yaml:"total_files"`
	SymCount   int     `json:"sym_count" yaml:"sym_count"`
	TotalSyms  int     `json:"total_syms" yaml:"total_syms"`
	TokensUsed float64 `json:"tokens_used" yaml:"tokens_used"`
}

// printStructured outputs value as indented JSON or YAML.
func printStructured(w io.Writer, format string, value any) error {
	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
