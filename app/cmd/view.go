package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lexcodex/threadview/app/threadview/tui"
	"github.com/lexcodex/threadview/persistence"
)

func newViewCmd() *cobra.Command {
	var follow string

	cmd := &cobra.Command{
		Use:   "view [session]",
		Short: "Open the transcript viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := "default"
			if len(args) > 0 {
				session = args[0]
			}

			store, err := persistence.NewFileTranscriptStore(globalCfg.Storage.Root)
			if err != nil {
				return err
			}
			entries, err := store.History(cmd.Context(), session)
			if err != nil {
				return err
			}

			return tui.Run(cmd.Context(), tui.Options{
				SessionID: session,
				Entries:   entries,
				FeedAddr:  follow,
				MaxDepth:  globalCfg.Render.MaxDepth,
				Logger:    pipelineLogger(),
			})
		},
	}
	cmd.Flags().StringVar(&follow, "follow", "", "Feed address for live updates (e.g. 127.0.0.1:7421)")
	return cmd
}
