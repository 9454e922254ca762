package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the indexed note corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cfg, err := buildContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		query := strings.Join(args, " ")
		results, err := container.NoteService.SemanticSearch(context.Background(), cfg.App.OwnerId, query, searchLimit)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for i, r := range results {
			title := r.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%2d. %s  [distance=%.4f]\n    %s\n", i+1, title, r.Distance, firstLine(r.Content))
		}
		return nil
	},
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
