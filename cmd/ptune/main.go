package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	noColor bool
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ptune",
	Short: "Interactively tune prompt templates against local Ollama models",
	Long: `ptune runs an interactive prompt-engineering loop: it fills a template
with variables, queries a local Ollama model, collects your feedback, and
asks the model to revise the template until you accept the result.

With --learn, every step is recorded in a local history database and your
feedback is merged into a per-type preference summary that biases future
revisions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
