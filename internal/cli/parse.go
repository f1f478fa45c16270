package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nboe-meetings/internal/app"
	"nboe-meetings/internal/dom"
	"nboe-meetings/internal/meeting"
	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/scraper"
)

// NewParseCmd разбирает сохранённые страницы без сети.
func NewParseCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse saved HTML pages offline",
	}

	cmd.AddCommand(newParseListingCmd(opts))
	cmd.AddCommand(newParseDetailCmd(opts))

	return cmd
}

func newParseListingCmd(opts *options) *cobra.Command {
	var (
		filePath string
		baseURL  string
	)

	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Print detail requests found in a saved listing page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configPath, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			selectors, err := cfg.ResolveSelectors(configPath)
			if err != nil {
				return fmt.Errorf("loading selectors: %w", err)
			}
			if baseURL == "" {
				baseURL = cfg.Scraper.StartURL
			}

			doc, err := parseFile(filePath)
			if err != nil {
				return err
			}

			listing, err := scraper.NewListingParser(selectors).ParseListing(doc, baseURL)
			if err != nil {
				return err
			}

			logger := observability.NewLoggerWithWriter(cmd.ErrOrStderr(), cfg.Observability.LogLevel, nil)
			for _, skipped := range listing.Skipped {
				logger.Warn("Listing row skipped", "row", skipped.Row, "error", skipped.Err.Error())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			for _, req := range listing.Requests {
				if err := enc.Encode(req); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "saved listing HTML")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL the page was saved from (default scraper.start_url)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newParseDetailCmd(opts *options) *cobra.Command {
	var (
		filePath  string
		sourceURL string
		locations []string
		nowRaw    string
	)

	cmd := &cobra.Command{
		Use:   "detail",
		Short: "Print the meeting record parsed from a saved detail page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configPath, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			selectors, err := cfg.ResolveSelectors(configPath)
			if err != nil {
				return fmt.Errorf("loading selectors: %w", err)
			}

			var clock meeting.Clock = meeting.SystemClock{}
			if nowRaw != "" {
				now, err := time.Parse(time.RFC3339, nowRaw)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				clock = meeting.FixedClock(now)
			}

			_, dp, err := app.NewParsers(cfg, selectors, clock)
			if err != nil {
				return err
			}

			doc, err := parseFile(filePath)
			if err != nil {
				return err
			}

			m, err := dp.ParseDetail(doc, sourceURL, locations)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			return enc.Encode(m)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "saved detail HTML")
	cmd.Flags().StringVar(&sourceURL, "url", "", "URL the page was saved from")
	cmd.Flags().StringArrayVar(&locations, "location", nil, "location cell fragment from the listing (repeatable)")
	cmd.Flags().StringVar(&nowRaw, "now", "", "reference time for status, RFC3339 (default current time)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func parseFile(path string) (dom.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	doc, err := dom.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}
