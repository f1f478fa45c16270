package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"nboe-meetings/internal/config"
	"nboe-meetings/internal/observability"
)

// RodFetcher рендерит страницу в headless Chrome.
// Браузер запускается лениво при первом Fetch и живёт до Close.
type RodFetcher struct {
	cfg    *config.Config
	logger *observability.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewRodFetcher(cfg *config.Config, logger *observability.Logger) *RodFetcher {
	if logger == nil {
		logger = observability.Nop()
	}
	return &RodFetcher{cfg: cfg, logger: logger}
}

func (f *RodFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().Headless(true)
	if f.cfg.Rod.ChromePath != "" {
		l = l.Bin(f.cfg.Rod.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	f.logger.Info("Browser started", "control_url", controlURL)

	f.launcher = l
	f.browser = browser
	return browser, nil
}

func (f *RodFetcher) Fetch(ctx context.Context, urlStr string) (*Response, error) {
	browser, err := f.connect()
	if err != nil {
		return nil, err
	}

	// Вкладка открывается без контекста запуска, чтобы Close сработал и после отмены или таймаута
	page, err := browser.Page(proto.TargetCreateTarget{URL: urlStr})
	if err != nil {
		return nil, fmt.Errorf("open page %s: %w", urlStr, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			f.logger.Warn("Failed to close page", "url", urlStr, "error", err.Error())
		}
	}()

	work := page.Context(ctx).Timeout(f.cfg.GetRodPageTimeout())
	defer work.CancelTimeout()

	waitLoad := work.Timeout(f.cfg.GetRodWaitLoadTimeout())
	err = waitLoad.WaitLoad()
	waitLoad.CancelTimeout()
	if err != nil {
		return nil, fmt.Errorf("wait load %s: %w", urlStr, err)
	}

	// Ленивая подгрузка контента
	if delay := f.cfg.GetRodLazyLoadDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := work.HTML()
	if err != nil {
		return nil, fmt.Errorf("read html %s: %w", urlStr, err)
	}

	finalURL := urlStr
	if info, err := work.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	f.logger.Debug("Rendered page", "url", urlStr, "final_url", finalURL, "body_size", len(html))

	// Браузер не отдаёт код ответа документа: страница считается успешной
	return &Response{
		StatusCode: http.StatusOK,
		Body:       []byte(html),
		URL:        finalURL,
		Headers:    http.Header{},
	}, nil
}

func (f *RodFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// New выбирает реализацию по конфигурации.
func New(cfg *config.Config, logger *observability.Logger) Fetcher {
	if cfg.Rod.Enabled {
		return NewRodFetcher(cfg, logger)
	}
	return NewHTTPFetcher(cfg, logger)
}
