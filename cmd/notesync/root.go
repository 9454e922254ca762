package main

import (
	"fmt"
	"log"
	"os"

	"ai-notesync/internal/bootstrap"
	"ai-notesync/internal/config"
	"ai-notesync/pkg/remote"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "Personal note sync and semantic indexing client",
	Long: `notesync keeps a local, optimistically-updated note list in sync with the
remote note store and maintains a vector index for semantic search.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildContainer loads config and wires the full dependency graph.
func buildContainer() (*bootstrap.Container, *config.Config, error) {
	cfg := config.Load()
	if cfg.App.OwnerId == "" {
		return nil, nil, fmt.Errorf("OWNER_ID is not configured")
	}

	var remoteStore remote.Store
	store, err := remote.NewNatsStore(cfg.Remote.NatsURL)
	if err != nil {
		log.Printf("[WARN] Remote store unavailable, notes will stay pending: %v", err)
		remoteStore = remote.UnavailableStore{}
	} else {
		remoteStore = store
	}

	container, err := bootstrap.NewContainer(cfg, remoteStore)
	if err != nil {
		return nil, nil, err
	}
	return container, cfg, nil
}
