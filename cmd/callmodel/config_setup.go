package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"callmodel/internal/config"
)

type configKey struct{}

// loadConfig reads --config when given, otherwise the nearest callmodel.toml.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) config.Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(config.Config); ok {
			return cfg
		}
	}
	return config.Default()
}
