package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagekit/internal/logger"
	"github.com/joshuapare/pagekit/pager"
	"github.com/joshuapare/pagekit/vfs"
	"github.com/joshuapare/pagekit/vfs/osfs"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logFile string
	logJSON bool
)

// fsys is the VFS every command opens files through.
var fsys vfs.VFS = osfs.New()

var rootCmd = &cobra.Command{
	Use:   "pagectl",
	Short: "Create, inspect and verify pagekit page files",
	Long: `pagectl works with page files managed by pagekit: a header page followed
by fixed-size pages, with free pages tracked on an on-disk free list. It can
create files, allocate and free pages, dump the free list and verify it.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initLogging() },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logger.Init(logger.Options{
		Enabled: verbose || logFile != "",
		Level:   level,
		JSON:    logJSON,
		File:    logFile,
	})
}

// pagerOptions returns the options commands open pagers with.
func pagerOptions() *pager.Options {
	opts := pager.DefaultOptions()
	opts.Logger = logger.L
	return opts
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprint(os.Stdout, numbers.Sprintf(format, args...))
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprint(os.Stdout, numbers.Sprintf(format, args...))
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
