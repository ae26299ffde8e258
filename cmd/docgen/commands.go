// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	jsonOutput    bool
	outDir        string
	dbPath        string
	policyFlag    string
	extensionsArg []string
	excludeArg    []string
	debounceMS    int
	verbose       bool

	rootCmd = &cobra.Command{
		Use:   "docgen",
		Short: "Generate JSDoc-style documentation objects from JavaScript source",
		Long: `Docgen walks JavaScript ASTs and produces structured documentation
				objects: files, modules, classes, methods, members, functions,
				constants, typedefs and externals, with export reconciliation.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	generateCmd = &cobra.Command{
		Use:   "generate [file or directory]",
		Short: "Generate docs for a file or project tree",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate, // Defined in cmd_generate.go
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Summarize a persisted doc store",
		Run:   runStats, // Defined in cmd_stats.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a project and regenerate docs on change",
		Args:  cobra.ExactArgs(1),
		Run:   runWatch, // Defined in cmd_watch.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable info-level logging")

	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"Print generated docs as JSON (default when stdout is not a terminal)")
	generateCmd.Flags().StringVar(&outDir, "out", "",
		"Persist generated docs to a BadgerDB directory")
	generateCmd.Flags().StringVar(&policyFlag, "policy", "log",
		"Error policy for malformed constructs: 'log' or 'throw'")
	generateCmd.Flags().StringSliceVar(&extensionsArg, "extensions", nil,
		"Source extensions to document (default .js,.mjs,.cjs)")
	generateCmd.Flags().StringSliceVar(&excludeArg, "exclude", nil,
		"Directory names to skip (default node_modules,.git,dist,build,coverage)")

	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&dbPath, "db", "",
		"BadgerDB directory holding a persisted doc store")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVar(&debounceMS, "debounce-ms", 300,
		"Quiet window before regenerating after a change")
	watchCmd.Flags().StringVar(&outDir, "out", "",
		"Persist docs to a BadgerDB directory on exit")
	watchCmd.Flags().StringSliceVar(&extensionsArg, "extensions", nil,
		"Source extensions to document (default .js,.mjs,.cjs)")
	watchCmd.Flags().StringSliceVar(&excludeArg, "exclude", nil,
		"Directory names to skip (default node_modules,.git,dist,build,coverage)")
}

// setupLogging routes service logs to stderr so stdout stays clean for
// command output. Terminals get readable text; pipes get JSON.
func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
