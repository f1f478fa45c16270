package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nboe-meetings/internal/config"
	"nboe-meetings/internal/dom"
	"nboe-meetings/internal/fetcher"
	"nboe-meetings/internal/meeting"
	"nboe-meetings/internal/normalize"
	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/scraper"
)

type Pipeline struct {
	cfg     *config.Config
	logger  *observability.Logger
	fetcher fetcher.Fetcher
	listing *scraper.ListingParser
	detail  *scraper.DetailParser
	sinks   []Sink
}

func NewPipeline(
	cfg *config.Config,
	logger *observability.Logger,
	f fetcher.Fetcher,
	lp *scraper.ListingParser,
	dp *scraper.DetailParser,
	sinks ...Sink,
) *Pipeline {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		fetcher: f,
		listing: lp,
		detail:  dp,
		sinks:   sinks,
	}
}

// NewParsers собирает парсеры листинга и детальной страницы из конфигурации.
func NewParsers(cfg *config.Config, selectors *scraper.Selectors, clock meeting.Clock) (*scraper.ListingParser, *scraper.DetailParser, error) {
	loc, err := cfg.GetLocation()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timezone: %w", err)
	}

	dp := scraper.NewDetailParser(selectors, scraper.DetailOptions{
		ScraperName: cfg.Scraper.Name,
		Location:    loc,
		Clock:       clock,
		Virtual:     scraper.VirtualPolicy(cfg.Scraper.VirtualLocation),
		CitySuffix:  cfg.Scraper.CitySuffix,
		Normalizer: normalize.NewNormalizer(normalize.Options{
			TrimNBSP:       cfg.Normalize.TrimNBSP,
			CollapseSpaces: cfg.Normalize.CollapseSpaces,
		}),
	})

	return scraper.NewListingParser(selectors), dp, nil
}

type RunStats struct {
	RunID      uuid.UUID
	Rows       int
	Dispatched int
	Skipped    int
	Emitted    int
	Partial    int // записи, отклонённые частью sink'ов
	Failed     int
	New        int
	Updated    int
	Duration   time.Duration
}

// Run загружает листинг и последовательно обрабатывает каждую детальную страницу.
// Ошибка одной страницы логируется и не прерывает запуск; ошибкой завершается
// только недоступный листинг или отмена контекста.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	started := time.Now()
	stats := &RunStats{RunID: uuid.New()}
	defer func() { stats.Duration = time.Since(started) }()
	ctx = WithRunID(ctx, stats.RunID)
	logger := p.logger.With("run_id", stats.RunID.String(), "scraper", p.cfg.Scraper.Name)

	startURL := p.cfg.Scraper.StartURL
	logger.Info("Starting scrape", "start_url", startURL)

	resp, err := p.fetcher.Fetch(ctx, startURL)
	if err != nil {
		logger.Error("Listing fetch failed", "url", startURL, "error", err.Error())
		return stats, fmt.Errorf("fetch listing: %w", err)
	}

	doc, err := dom.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return stats, fmt.Errorf("parse listing html: %w", err)
	}

	listing, err := p.listing.ParseListing(doc, pageURL(resp, startURL))
	if err != nil {
		logger.Error("Parse listing failed", "url", startURL, "error", err.Error())
		return stats, fmt.Errorf("parse listing: %w", err)
	}

	stats.Rows = listing.Rows
	stats.Skipped = len(listing.Skipped)
	for _, skipped := range listing.Skipped {
		logger.Warn("Listing row skipped", "row", skipped.Row, "error", skipped.Err.Error())
	}

	logger.Info("Listing parsed",
		"rows", listing.Rows,
		"requests", len(listing.Requests),
		"skipped", stats.Skipped,
	)

	for _, req := range listing.Requests {
		// Отмена проверяется между страницами
		if err := ctx.Err(); err != nil {
			logger.Warn("Scrape cancelled", "dispatched", stats.Dispatched)
			return stats, err
		}

		stats.Dispatched++
		m, err := p.processDetail(ctx, req)
		if err != nil {
			stats.Failed++
			logger.Error("Detail page failed",
				"row", req.Row,
				"url", req.URL,
				"error", err.Error(),
			)
			continue
		}

		logger.Debug("Meeting parsed",
			"row", req.Row,
			"id", m.ID,
			"title", m.Title,
			"start", m.Start.Format(time.RFC3339),
			"status", string(m.Status),
		)

		accepted, rejected := p.emit(ctx, logger, m, stats)
		switch {
		case rejected == 0 || accepted > 0:
			stats.Emitted++
			if rejected > 0 {
				stats.Partial++
				logger.Warn("Meeting emitted partially", "id", m.ID, "accepted", accepted, "rejected", rejected)
			}
		default:
			stats.Failed++
		}
	}

	stats.Duration = time.Since(started)
	logger.Info("Scrape completed",
		"rows", stats.Rows,
		"dispatched", stats.Dispatched,
		"skipped", stats.Skipped,
		"emitted", stats.Emitted,
		"partial", stats.Partial,
		"failed", stats.Failed,
		"new", stats.New,
		"updated", stats.Updated,
		"duration_ms", stats.Duration.Milliseconds(),
	)

	return stats, nil
}

func (p *Pipeline) processDetail(ctx context.Context, req scraper.DetailRequest) (*meeting.Meeting, error) {
	resp, err := p.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	doc, err := dom.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	m, err := p.detail.ParseDetail(doc, pageURL(resp, req.URL), req.LocationFragments)
	if err != nil {
		return nil, fmt.Errorf("parse detail: %w", err)
	}
	return m, nil
}

// emit отдаёт запись во все sink'и и возвращает число принявших и отказавших.
func (p *Pipeline) emit(ctx context.Context, logger *observability.Logger, m *meeting.Meeting, stats *RunStats) (accepted, rejected int) {
	for _, sink := range p.sinks {
		if err := sink.Emit(ctx, m); err != nil {
			rejected++
			logger.Error("Emit failed", "sink", sink.Name(), "id", m.ID, "error", err.Error())
			continue
		}
		accepted++
		if rs, isReporter := sink.(resultReporter); isReporter {
			last := rs.LastResult()
			if last.IsNew {
				stats.New++
			}
			if last.IsUpdated {
				stats.Updated++
			}
		}
	}
	return accepted, rejected
}

// pageURL: итоговый URL после редиректов, без фрагмента.
func pageURL(resp *fetcher.Response, requested string) string {
	if resp != nil && resp.URL != "" {
		return normalize.NormalizeURL(resp.URL)
	}
	return normalize.NormalizeURL(requested)
}
