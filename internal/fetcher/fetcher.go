package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"nboe-meetings/internal/config"
	"nboe-meetings/internal/observability"
)

// Fetcher загружает страницу по URL. Повторов нет: ошибка страницы не влияет на остальные.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*Response, error)
}

type Response struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

// StatusError возвращается для ответов вне диапазона 2xx.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

type HTTPFetcher struct {
	client *http.Client
	cfg    *config.Config
	logger *observability.Logger
}

func NewHTTPFetcher(cfg *config.Config, logger *observability.Logger) *HTTPFetcher {
	if logger == nil {
		logger = observability.Nop()
	}

	client := &http.Client{
		Timeout: cfg.GetTotalTimeout(),
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnections,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
			// gzip разжимаем сами, см. Fetch
			DisableCompression: true,
		},
	}

	return &HTTPFetcher{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*Response, error) {
	if _, err := url.ParseRequestURI(urlStr); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.cfg.HTTP.UserAgent)
	req.Header.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", urlStr, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "url", urlStr, "error", err.Error())
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: urlStr, StatusCode: resp.StatusCode}
	}

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	f.logger.Debug("Fetched page",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"content_type", resp.Header.Get("Content-Type"),
		"body_size", len(body),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}

// Close освобождает простаивающие соединения.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
