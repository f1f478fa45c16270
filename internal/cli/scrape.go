package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"nboe-meetings/internal/app"
	"nboe-meetings/internal/fetcher"
	"nboe-meetings/internal/meeting"
	"nboe-meetings/internal/storage"
)

func NewScrapeCmd(opts *options) *cobra.Command {
	var (
		outputPath string
		noStore    bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the meetings listing and every detail page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if noStore && dryRun {
				return fmt.Errorf("--dry-run needs storage, it cannot be combined with --no-store")
			}

			cfg, configPath, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			defer func() { _ = logger.Close() }()

			selectors, err := cfg.ResolveSelectors(configPath)
			if err != nil {
				return fmt.Errorf("loading selectors: %w", err)
			}

			clock := meeting.SystemClock{}
			lp, dp, err := app.NewParsers(cfg, selectors, clock)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer func() {
					if err := file.Close(); err != nil {
						logger.Error("Failed to close output file", "path", outputPath, "error", err.Error())
					}
				}()
				out = file
			}

			sinks := []app.Sink{app.NewJSONLinesSink(out)}

			var repo storage.Repository
			if !noStore {
				repo, err = app.OpenRepository(cfg, logger)
				if err != nil {
					return fmt.Errorf("opening storage: %w", err)
				}
				if repo == nil && dryRun {
					return fmt.Errorf("--dry-run needs storage.driver other than none")
				}
				if repo != nil {
					defer func() {
						if err := repo.Close(); err != nil {
							logger.Error("Failed to close storage", "error", err.Error())
						}
					}()
					repoSink := app.NewRepositorySink(repo, cfg.Scraper.Name, cfg.Scraper.Agency, clock, logger).SetDryRun(dryRun)
					sinks = append(sinks, repoSink)
				}
			}

			f := fetcher.New(cfg, logger)
			if closer, ok := f.(io.Closer); ok {
				defer func() { _ = closer.Close() }()
			}

			ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
			defer cancel()

			stats, err := app.NewPipeline(cfg, logger, f, lp, dp, sinks...).Run(ctx)
			if err != nil {
				return fmt.Errorf("scrape: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d rows, %d dispatched, %d emitted (%d partial), %d failed, %d skipped, %d new, %d updated\n",
				stats.RunID, stats.Rows, stats.Dispatched, stats.Emitted, stats.Partial, stats.Failed, stats.Skipped, stats.New, stats.Updated)

			if repo != nil {
				stored, err := repo.CountByScraper(ctx, cfg.Scraper.Name)
				if err != nil {
					return fmt.Errorf("counting stored meetings: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d meetings in storage\n", cfg.Scraper.Name, stored)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write JSON lines to file instead of stdout")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "skip the configured storage driver")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report new/updated meetings against storage without writing")

	return cmd
}
