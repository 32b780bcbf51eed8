package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type extractOutput struct {
	PageNumber int           `json:"pageNumber"`
	Text       string        `json:"text"`
	Images     []imageOutput `json:"images,omitempty"`
}

type imageOutput struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

func (c *cli) extractCmd() *cobra.Command {
	var page int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <pdf-path-or-url>",
		Short: "Print the text of one page, with images transcribed or captioned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.app.Fetcher(ctx).Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			extractor, err := c.app.Extractor(ctx)
			if err != nil {
				return err
			}
			res, err := extractor.ExtractPage(ctx, doc, page)
			if err != nil {
				return err
			}

			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				return nil
			}
			out := extractOutput{PageNumber: res.PageNumber, Text: res.Text}
			for _, img := range res.Images {
				out.Images = append(out.Images, imageOutput{ID: img.ImageID, Kind: img.Kind.String(), Content: img.Content})
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the page and its image descriptions as JSON")
	return cmd
}
