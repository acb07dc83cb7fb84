package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/inspekta/internal/bootstrap"
	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Photo inspection reports from a folder of property photos",
	Long: `inspect analyzes every photo of a property inspection with a vision model,
counts the findings by severity and renders an annotated PDF, an HTML page
and a machine-readable report.json.

Model answers are cached by photo content, prompt version, model and resize
setting, so re-running an unchanged batch makes no model calls.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", bootstrap.ConfigPath(os.Getenv), "path to config.yaml")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lookupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, inspection.ErrFatal) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
