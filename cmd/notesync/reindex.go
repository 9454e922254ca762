package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the current working set",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, _, err := buildContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		notes := container.Reconciler.WorkingSet()
		log.Printf("Reindexing %d notes", len(notes))
		container.Indexer.ReindexAll(context.Background(), notes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
