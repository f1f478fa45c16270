package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"nboe-meetings/internal/config"
	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/version"
)

const defaultConfigPath = "configs/config.yaml"

type options struct {
	configPath string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "nboe-meetings",
		Short:         "Scrape Newark Board of Education meetings",
		Long:          "Collects Newark Board of Education meeting records from nps.k12.nj.us and emits them as JSON lines or stores them in a database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to YAML or TOML config")

	rootCmd.AddCommand(NewScrapeCmd(opts))
	rootCmd.AddCommand(NewParseCmd(opts))

	return rootCmd
}

// loadConfig: отсутствующий файл по умолчанию не ошибка, используются встроенные значения.
// Явно указанный --config обязан существовать.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	explicit := cmd.Flags().Changed("config")

	if _, err := os.Stat(o.configPath); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.Default(), "", nil
		}
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, o.configPath, nil
}

func newLogger(cfg *config.Config) *observability.Logger {
	obs := cfg.Observability
	return observability.NewLogger(obs.LogPath, obs.LogLevel, observability.Options{
		MaxSizeMB:  obs.LogMaxSizeMB,
		MaxBackups: obs.LogMaxBackups,
		MaxAgeDays: obs.LogMaxAgeDays,
		Compress:   obs.LogCompress,
	})
}
