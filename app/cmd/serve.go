package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/lexcodex/threadview/persistence"
	"github.com/lexcodex/threadview/server"
)

func newServeCmd() *cobra.Command {
	var httpAddr string
	var feedAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the transcript API and live feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if httpAddr == "" {
				httpAddr = globalCfg.Feed.HTTPAddress
			}
			if feedAddr == "" {
				feedAddr = globalCfg.Feed.Address
			}
			logger := newLogger()

			store, err := persistence.NewFileTranscriptStore(globalCfg.Storage.Root)
			if err != nil {
				return err
			}
			history, err := persistence.NewSQLiteHistory(globalCfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer history.Close()

			feed := server.NewFeed(logger)
			api := &server.APIServer{
				Store:   store,
				History: history,
				Feed:    feed,
				Logger:  logger,
			}

			ctx := cmd.Context()
			go func() {
				if err := feed.Serve(ctx, feedAddr); err != nil && !errors.Is(err, context.Canceled) {
					logger.Printf("feed: %v", err)
				}
			}()

			err = api.ServeContext(ctx, httpAddr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&httpAddr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&feedAddr, "feed-addr", "", "Feed listen address")
	return cmd
}
