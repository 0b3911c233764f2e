package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resume-builder/internal/app"
	"resume-builder/internal/config"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "resume-render",
		Short:         "Render resumes and analyze job descriptions offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = config.NewLogger(cfg.Log, os.Stderr)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")

	cmd.AddCommand(newRenderCmd(opts), newAnalyzeCmd(opts), newMockAICmd(opts))
	return cmd
}

func (o *rootOptions) build() (*app.Components, error) {
	return app.Build(o.cfg, o.logger, nil)
}
