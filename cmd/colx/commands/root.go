package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eponymouse/columnal-sub000/core"
)

var (
	envFile    string
	tablesPath string
	tableName  string
	rowIndex   int
)

// errReported is returned once a command has already written its problem
// to stderr.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "colx",
	Short: "colx checks and evaluates table formulas",
	Long: `colx type checks formulas written in the save syntax, evaluates them
against tables loaded from a YAML file and explains how results were
reached.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		configureOutput()
		return nil
	},
}

// Execute runs the command line and exits with its status.
func Execute() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		if core.IsInternal(err) {
			fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(ExitCode(err))
}

// ExitCode is 0 on success, 2 for internal errors and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case core.IsInternal(err):
		return 2
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load, if present")
	rootCmd.PersistentFlags().StringVarP(&tablesPath, "tables", "t", "", "YAML file of tables (default: COLX_TABLES env var)")
	rootCmd.PersistentFlags().StringVar(&tableName, "table", "", "Table the formula belongs to (default: the first table)")
	rootCmd.PersistentFlags().IntVar(&rowIndex, "row", -1, "Row to evaluate against, counting from 0")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// configureOutput applies COLX_LOG_LEVEL and COLX_NO_COLOR, which may have
// come from the env file.
func configureOutput() {
	level := slog.LevelWarn
	if s := os.Getenv("COLX_LOG_LEVEL"); s != "" {
		l, err := core.ParseLogLevel(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ignoring COLX_LOG_LEVEL: %v\n", err)
		} else {
			core.SetLogLevel(l)
			level = slogLevels[l]
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if os.Getenv("COLX_NO_COLOR") != "" {
		color.NoColor = true
	}
}

var slogLevels = map[core.LogLevel]slog.Level{
	core.LogLevelDebug: slog.LevelDebug,
	core.LogLevelInfo:  slog.LevelInfo,
	core.LogLevelWarn:  slog.LevelWarn,
	core.LogLevelError: slog.LevelError,
	core.LogLevelOff:   slog.LevelError + 4,
}
