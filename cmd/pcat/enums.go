package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	categoryCmd.AddCommand(categoryListCmd)
	typeCmd.AddCommand(typeListCmd)
	rootCmd.AddCommand(categoryCmd, typeCmd)
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Inspect article categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenDatabase()
		defer db.Close()

		categories := db.Categories.All()
		if !humanOutput {
			outputJSON(categories)
			return nil
		}
		if len(categories) == 0 {
			fmt.Println("No categories")
		}
		for _, c := range categories {
			fmt.Printf("  %3d  %s\n", c.ID, c.Name)
		}
		return nil
	},
}

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Inspect article types",
}

var typeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List article types",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenDatabase()
		defer db.Close()

		types := db.ArticleTypes.All()
		if !humanOutput {
			outputJSON(types)
			return nil
		}
		for _, t := range types {
			fmt.Printf("  %3d  %s\n", t.ID, t.Name)
		}
		return nil
	},
}
