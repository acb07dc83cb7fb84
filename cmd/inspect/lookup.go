package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appinspection "github.com/bryanwahyu/inspekta/internal/application/inspection"
	"github.com/bryanwahyu/inspekta/internal/bootstrap"
	"github.com/bryanwahyu/inspekta/internal/config"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

var (
	lookupDocument string
	lookupPhoto    string
	lookupReport   string
	lookupClient   string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Print the page record of one photo",
	Long: `Print the record of one photo exactly as its report page shows it.

Examples:
  inspect lookup --document reports/<id>/report.json --photo IMG_0042.jpg
  inspect lookup --client acme --report <id> --photo IMG_0042.jpg`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupDocument, "document", "", "local report.json")
	lookupCmd.Flags().StringVar(&lookupPhoto, "photo", "", "photo file name (required)")
	lookupCmd.Flags().StringVar(&lookupReport, "report", "", "published report id")
	lookupCmd.Flags().StringVar(&lookupClient, "client", "default", "client id of a published report")
	_ = lookupCmd.MarkFlagRequired("photo")
}

func runLookup(cmd *cobra.Command, _ []string) error {
	if lookupDocument != "" {
		return lookupLocal(cmd.OutOrStdout(), lookupDocument, lookupPhoto)
	}
	if lookupReport == "" {
		return errors.New("either --document or --report is required")
	}

	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	repos, err := bootstrap.OpenRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()
	store, err := bootstrap.OpenArtifactStore(ctx, cfg)
	if err != nil {
		return err
	}
	svc := &appinspection.Service{Artifacts: store, Reports: repos.Reports, Log: logger.NewNop()}
	page, err := svc.LookupPhoto(ctx, lookupClient, lookupReport, lookupPhoto)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), page)
}

func lookupLocal(w io.Writer, path, photo string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := reports.ReadDocument(f)
	if err != nil {
		return err
	}
	page, ok := doc.Lookup(photo)
	if !ok {
		return fmt.Errorf("%w: photo %s", reports.ErrNotFound, photo)
	}
	return printJSON(w, page)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
