package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/threadview/render"
	"github.com/lexcodex/threadview/transcript"
)

func newRenderCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a single payload to stdout",
		Long:  "Reads a raw message payload from a file (or stdin) and prints the rendered entry.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			if width <= 0 {
				width = globalCfg.Render.Width
			}
			opts := []render.Option{render.WithMaxDepth(globalCfg.Render.MaxDepth)}
			if logger := pipelineLogger(); logger != nil {
				opts = append(opts, render.WithLogger(logger))
			}
			renderer, err := render.New(width, opts...)
			if err != nil {
				return err
			}

			out := renderer.Payload(transcript.DecodePayload(string(raw)))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (defaults to render.width from config)")
	return cmd
}
