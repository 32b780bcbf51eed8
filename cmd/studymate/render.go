package main

import (
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/studymate/internal/gcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) renderCmd() *cobra.Command {
	var page int
	var out string

	cmd := &cobra.Command{
		Use:   "render <pdf-path-or-url>",
		Short: "Rasterize one page to a PNG file or gs:// object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.app.Fetcher(ctx).Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			png, err := c.app.Renderer().RenderPage(ctx, doc, page)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("page-%03d.png", page)
			}

			if strings.HasPrefix(out, "gs://") {
				bucket, object, err := gcp.ParseGCSURI(out)
				if err != nil {
					return err
				}
				client, err := storage.NewClient(ctx)
				if err != nil {
					return fmt.Errorf("failed to create storage client: %w", err)
				}
				defer client.Close()
				if err := gcp.SaveToGCSAtomically(ctx, client.Bucket(bucket), object, png, "image/png"); err != nil {
					return err
				}
			} else if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			log.Info().Str("out", out).Int("bytes", len(png)).Msg("Page rendered.")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or gs://bucket/object (default page-NNN.png)")
	return cmd
}
