package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serbe/rugo-sub000/internal/config"
)

type rootOptions struct {
	envFile string
	dev     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "rugo",
		Short:         "Directory and asset registry server",
		Version:       version + " (" + buildDate + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file")
	cmd.PersistentFlags().BoolVar(&opts.dev, "dev", false, "human-readable development logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newUserCmd(opts),
	)
	return cmd
}

// load reads the configuration and builds a logger at its level.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	log, err := newLogger(o.dev, cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newLogger(dev bool, cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}
