package main

import (
	"github.com/Lllllllleong/studymate/internal/models"
	"github.com/spf13/cobra"
)

func (c *cli) registerCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register <pdf-url>",
		Short: "Record an uploaded PDF and print its pdf_id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warnIfEphemeral(c.cfg)
			parser, err := c.app.PageParser(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := parser.RegisterDocument(cmd.Context(), &models.RegisterDocumentRequest{FileName: name, PDFURL: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "file name to record")
	return cmd
}

func (c *cli) parseCmd() *cobra.Command {
	var page int
	var language string

	cmd := &cobra.Command{
		Use:   "parse <pdf_id>",
		Short: "Extract and explain one page, reusing a stored result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := c.app.PageParser(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := parser.Process(cmd.Context(), &models.ParsePageRequest{
				PDFID:      args[0],
				PageNumber: page,
				Language:   language,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	cmd.Flags().StringVarP(&language, "language", "l", "english", "explanation language: english|hindi|hinglish")
	return cmd
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <pdf_id>",
		Short: "Show page totals of a stored PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := c.app.PageParser(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := parser.DocumentInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func (c *cli) imageCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "image <pdf_id>",
		Short: "Render a page of a stored PDF as a PNG data URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := c.app.PageParser(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := parser.PageImage(cmd.Context(), &models.PageImageRequest{PDFID: args[0], PageNumber: page})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	return cmd
}
