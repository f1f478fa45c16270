package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"nboe-meetings/internal/dom"
	"nboe-meetings/internal/normalize"
)

// ListingParser разбирает страницу со списком заседаний.
type ListingParser struct {
	selectors *Selectors
}

func NewListingParser(selectors *Selectors) *ListingParser {
	return &ListingParser{
		selectors: selectors.WithDefaults(),
	}
}

// ParseListing возвращает по одному DetailRequest на строку таблицы (без заголовка).
// Строки без ссылки не прерывают разбор: они попадают в Listing.Skipped.
func (p *ListingParser) ParseListing(doc dom.Node, pageURL string) (*Listing, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}

	rows := doc.Find(p.selectors.ListingRows)
	listing := &Listing{
		Rows:     len(rows),
		Requests: make([]DetailRequest, 0, len(rows)),
	}

	for i, row := range rows {
		fragments := dom.Texts(row, p.selectors.LocationCell)

		href, ok := dom.FirstAttr(row, p.selectors.DetailLink, "href")
		if !ok || strings.TrimSpace(href) == "" {
			listing.Skipped = append(listing.Skipped, &RowError{Row: i, Err: ErrMissingDetailLink})
			continue
		}

		detailURL, err := resolveURL(base, href)
		if err != nil {
			listing.Skipped = append(listing.Skipped, &RowError{Row: i, Err: err})
			continue
		}

		listing.Requests = append(listing.Requests, DetailRequest{
			Row:               i,
			URL:               detailURL,
			LocationFragments: fragments,
		})
	}

	return listing, nil
}

func resolveURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(normalize.NormalizeURL(href))
	if err != nil {
		return "", fmt.Errorf("invalid detail link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
