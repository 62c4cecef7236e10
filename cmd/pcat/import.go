package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/matsen/papercat/internal/config"
	"github.com/matsen/papercat/internal/importer"
	"github.com/matsen/papercat/internal/pdf"
	"github.com/matsen/papercat/internal/spreadsheet"
)

var importConfigPath string

func init() {
	importCmd.Flags().StringVar(&importConfigPath, "config", "", "Import configuration file (required)")
	importCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import --config <file> <workbook.xlsx>",
	Short: "Import articles from a spreadsheet",
	Long: `Import the articles listed in a workbook into the store.

The configuration file names the venue and year and, for each document
group, where every article field comes from. Articles already in the store
with the same normalized title, year and venue are updated.

Examples:
  pcat import --config nips2018.yml nips2018.xlsx
  pcat import --config nips2018.yml --log-level INFO nips2018.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Venue    string `json:"venue"`
	Year     int    `json:"year"`
	Workbook string `json:"workbook"`
	importer.Summary
}

// newRegistry configures the built-in extractors from the global config.
func newRegistry(cfg *config.GlobalConfig) (*importer.Registry, error) {
	var opts []pdf.PdftotextOption
	if cfg.PdftotextPath != "" {
		opts = append(opts, pdf.WithPdftotextPath(cfg.PdftotextPath))
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, pdf.WithTimeout(timeout))
	}
	if cfg.ExtractRate > 0 {
		opts = append(opts, pdf.WithRate(cfg.ExtractRate))
	}
	return importer.DefaultRegistry(opts...), nil
}

func runImport(cmd *cobra.Command, args []string) error {
	workbookPath := args[0]

	registry, err := newRegistry(globalConfig)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg, err := config.Parser{Registry: registry}.Load(importConfigPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	log, err := newLogger()
	if err != nil {
		exitWithError(ExitConfigError, "configuring logging: %v", err)
	}
	defer log.Sync()

	db := mustOpenDatabase()
	defer db.Close()

	director, err := importer.NewDirector(cfg, importer.StoreFor(db), registry, log)
	if errors.Is(err, importer.ErrUnknownVenue) {
		exitWithError(ExitConfigError, "%v", err)
	} else if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	wb, err := spreadsheet.OpenXLSX(workbookPath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	defer wb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, runErr := director.Run(ctx, wb)
	result := ImportResult{
		Venue:    director.Venue().Abbreviation,
		Year:     cfg.Year,
		Workbook: workbookPath,
		Summary:  summary,
	}
	if humanOutput {
		printImportHuman(result)
	} else {
		outputJSON(result)
	}

	if runErr != nil {
		if humanOutput {
			fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		}
		log.Sync()
		db.Close()
		os.Exit(ExitDataError)
	}
	return nil
}

func printImportHuman(r ImportResult) {
	fmt.Printf("Imported %s %d from %s\n", r.Venue, r.Year, r.Workbook)
	for _, g := range r.Groups {
		status := ""
		if g.Error != "" {
			status = "  (failed: " + g.Error + ")"
		}
		fmt.Printf("  %-18s %d imported (%d new, %d updated), %d failed, %d ambiguous%s\n",
			g.Group, g.Imported(), g.Inserted, g.Updated, g.Failed, g.Ambiguous, status)
	}
	fmt.Printf("Total: %d imported, %d failed, %d ambiguous\n", r.Imported, r.Failed, r.Ambiguous)
}
