package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-notesync/pkg/remote"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync daemon: subscribe to the remote feed and keep the index current",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cfg, err := buildContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := container.ConsumerService.Consume(ctx); err != nil {
			return err
		}

		// Retry notes journaled before the last shutdown
		container.NoteService.FlushPending(ctx)

		if container.Feed != nil {
			err := container.Feed.Subscribe(ctx, cfg.App.OwnerId, func(ctx context.Context, snapshot remote.Snapshot) error {
				container.Reconciler.ApplySnapshot(ctx, snapshot)
				return nil
			})
			if err != nil {
				return err
			}
		} else {
			log.Println("[WARN] Running without a remote feed; working set is local-only")
		}

		log.Printf("notesync running for owner %s", cfg.App.OwnerId)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
