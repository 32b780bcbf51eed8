package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Lllllllleong/studymate/internal/app"
	"github.com/Lllllllleong/studymate/internal/config"
	"github.com/Lllllllleong/studymate/internal/extract"
	"github.com/Lllllllleong/studymate/internal/logging"
	"github.com/Lllllllleong/studymate/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitFailure        = 1
	exitInvalidRequest = 2
	exitNotFound       = 3
)

// cli carries state shared by the subcommands.
type cli struct {
	envFile string
	cfg     *config.Config
	app     *app.App
}

func main() {
	c := &cli{}
	root := &cobra.Command{
		Use:           "studymate",
		Short:         "Extract, explain and render pages of study PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if c.envFile != "" {
				files = append(files, c.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			c.cfg = cfg
			c.app = app.New(cfg)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app != nil {
				return c.app.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "env file to load before reading the environment (default .env)")

	root.AddCommand(
		c.extractCmd(),
		c.registerCmd(),
		c.parseCmd(),
		c.infoCmd(),
		c.imageCmd(),
		c.renderCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		if c.app != nil {
			_ = c.app.Close()
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, extract.ErrInvalidPageNumber):
		return exitInvalidRequest
	case errors.Is(err, services.ErrNotFound):
		return exitNotFound
	}
	return exitFailure
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func warnIfEphemeral(cfg *config.Config) {
	if cfg.DocumentStore == "memory" {
		log.Warn().Msg("DOCUMENT_STORE=memory keeps records only for this process.")
	}
}
