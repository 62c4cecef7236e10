package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/papercat/internal/storage"
)

var (
	listVenue      string
	listYear       int
	listUnread     bool
	listNeedsIndex bool
)

func init() {
	listCmd.Flags().StringVar(&listVenue, "venue", "", "Only articles from this venue abbreviation")
	listCmd.Flags().IntVar(&listYear, "year", 0, "Only articles from this year")
	listCmd.Flags().BoolVar(&listUnread, "unread", false, "Only articles not yet read")
	listCmd.Flags().BoolVar(&listNeedsIndex, "needs-index", false, "Only articles changed since they were last indexed")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	Long: `List the articles in the store.

Examples:
  pcat list
  pcat list --venue NIPS --year 2018 --unread`,
	RunE: runList,
}

// listFilter holds the list command's filters.
type listFilter struct {
	Venue      string
	Year       int
	Unread     bool
	NeedsIndex bool
}

// listArticles applies f to db.
func listArticles(db *storage.DB, f listFilter) ([]ArticleSummary, error) {
	criteria := storage.Criteria{}
	if f.Venue != "" {
		venue, ok := db.Venues.WithAbbreviation(f.Venue)
		if !ok {
			return nil, fmt.Errorf("unknown venue %q", f.Venue)
		}
		criteria["venue"] = venue
	}
	if f.Year != 0 {
		criteria["year"] = f.Year
	}
	if f.Unread {
		criteria["is_read"] = false
	}
	if f.NeedsIndex {
		ids, err := db.Articles.NeedReindexing()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []ArticleSummary{}, nil
		}
		criteria["id"] = ids
	}

	articles, err := db.Articles.Retrieve(criteria)
	if err != nil {
		return nil, err
	}
	out := make([]ArticleSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, summarize(a))
	}
	return out, nil
}

func runList(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	articles, err := listArticles(db, listFilter{
		Venue:      listVenue,
		Year:       listYear,
		Unread:     listUnread,
		NeedsIndex: listNeedsIndex,
	})
	if err != nil {
		exitWithError(ExitError, "listing articles: %v", err)
	}

	if !humanOutput {
		outputJSON(articles)
		return nil
	}
	if len(articles) == 0 {
		fmt.Println("No matching articles")
		return nil
	}
	fmt.Printf("%d articles:\n\n", len(articles))
	for _, a := range articles {
		read := " "
		if a.IsRead {
			read = "*"
		}
		fmt.Printf("  %5d %s %-6s %d  %s\n", a.ID, read, a.Venue, a.Year, truncateString(a.Title, ListTitleMaxLen))
	}
	return nil
}
