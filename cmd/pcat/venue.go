package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/storage"
)

var venueName string

func init() {
	venueAddCmd.Flags().StringVar(&venueName, "name", "", "Full venue name (required)")
	venueAddCmd.MarkFlagRequired("name")
	venueCmd.AddCommand(venueListCmd, venueAddCmd, venueDeleteCmd)
	rootCmd.AddCommand(venueCmd)
}

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Manage venues",
}

var venueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List venues",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenDatabase()
		defer db.Close()

		venues := db.Venues.All()
		if !humanOutput {
			outputJSON(venues)
			return nil
		}
		for _, v := range venues {
			fmt.Printf("  %-8s %s\n", v.Abbreviation, v.Name)
		}
		return nil
	},
}

var venueAddCmd = &cobra.Command{
	Use:   "add <abbreviation> --name <name>",
	Short: "Add a venue",
	Long: `Add a venue that import configurations can refer to.

Examples:
  pcat venue add EMNLP --name "Empirical Methods in Natural Language Processing"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenDatabase()
		defer db.Close()

		v, err := addVenue(db, args[0], venueName)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Printf("Added venue %s (%s)\n", v.Abbreviation, v.Name)
		} else {
			outputJSON(v)
		}
		return nil
	},
}

var venueDeleteCmd = &cobra.Command{
	Use:   "delete <abbreviation>",
	Short: "Delete a venue no article refers to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenDatabase()
		defer db.Close()

		if err := deleteVenue(db, args[0]); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Printf("Deleted venue %s\n", args[0])
		} else {
			outputJSON(StatusResponse{Status: "deleted"})
		}
		return nil
	},
}

func addVenue(db *storage.DB, abbreviation, name string) (article.Venue, error) {
	if _, exists := db.Venues.WithAbbreviation(abbreviation); exists {
		return article.Venue{}, fmt.Errorf("venue %s already exists", abbreviation)
	}
	return db.Venues.Add(article.Venue{Name: name, Abbreviation: abbreviation})
}

func deleteVenue(db *storage.DB, abbreviation string) error {
	v, ok := db.Venues.WithAbbreviation(abbreviation)
	if !ok {
		return fmt.Errorf("unknown venue %q", abbreviation)
	}
	err := db.Venues.Delete(v)
	if errors.Is(err, storage.ErrReferenced) {
		n, _ := db.Venues.CountReferencesTo(v)
		return fmt.Errorf("venue %s is used by %d articles", abbreviation, n)
	}
	return err
}
