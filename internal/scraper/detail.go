package scraper

import (
	"fmt"
	"strings"
	"time"

	"nboe-meetings/internal/dom"
	"nboe-meetings/internal/meeting"
	"nboe-meetings/internal/normalize"
)

// VirtualPolicy решает, что писать в location, если в ячейке листинга "Virtual".
type VirtualPolicy string

const (
	// VirtualLiteral: address и name равны "Virtual".
	VirtualLiteral VirtualPolicy = "literal"
	// VirtualEcho: address и name равны тексту ячейки листинга.
	VirtualEcho VirtualPolicy = "echo"
)

const (
	virtualMarker      = "Virtual"
	locationNameSep    = " - "
	fieldLocationCells = "location"
)

type DetailOptions struct {
	ScraperName string
	Location    *time.Location
	Clock       meeting.Clock
	Virtual     VirtualPolicy
	CitySuffix  string
	Normalizer  *normalize.Normalizer
}

// DetailParser превращает детальную страницу в meeting.Meeting.
type DetailParser struct {
	selectors  *Selectors
	name       string
	loc        *time.Location
	clock      meeting.Clock
	virtual    VirtualPolicy
	citySuffix string
	normalizer *normalize.Normalizer
}

func NewDetailParser(selectors *Selectors, opts DetailOptions) *DetailParser {
	p := &DetailParser{
		selectors:  selectors.WithDefaults(),
		name:       opts.ScraperName,
		loc:        opts.Location,
		clock:      opts.Clock,
		virtual:    opts.Virtual,
		citySuffix: opts.CitySuffix,
		normalizer: opts.Normalizer,
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	if p.clock == nil {
		p.clock = meeting.SystemClock{}
	}
	if p.virtual == "" {
		p.virtual = VirtualLiteral
	}
	if p.normalizer == nil {
		p.normalizer = normalize.NewNormalizer(normalize.Options{TrimNBSP: true, CollapseSpaces: true})
	}
	return p
}

// ParseDetail извлекает все поля и собирает запись. Любая ошибка означает,
// что запись для этой страницы не создаётся.
func (p *DetailParser) ParseDetail(doc dom.Node, sourceURL string, locationFragments []string) (*meeting.Meeting, error) {
	date, err := p.parseDate(doc)
	if err != nil {
		return nil, err
	}

	startTime, endTime, err := p.parseStartEndTime(doc)
	if err != nil {
		return nil, err
	}

	location, err := p.parseLocation(doc, locationFragments)
	if err != nil {
		return nil, err
	}

	fields := meeting.Fields{
		Title:    p.parseTitle(doc),
		Start:    startTime.On(date, p.loc),
		End:      endTime.On(date, p.loc),
		Location: location,
		Links:    p.parseLinks(doc),
		Source:   sourceURL,
	}

	return meeting.New(p.name, fields, p.clock.Now()), nil
}

func (p *DetailParser) parseTitle(doc dom.Node) string {
	title, _ := dom.FirstText(doc, p.selectors.Title)
	return p.normalizer.Text(title)
}

func (p *DetailParser) parseDate(doc dom.Node) (time.Time, error) {
	text, ok := dom.CellText(doc, p.selectors.DateCell)
	if !ok {
		return time.Time{}, &MissingElementError{Field: fieldDate, Selector: p.selectors.DateCell}
	}
	return ParseDate(p.normalizer.Text(text))
}

// parseStartEndTime: при пустой или отсутствующей ячейке полночь для обоих значений.
func (p *DetailParser) parseStartEndTime(doc dom.Node) (TimeOfDay, TimeOfDay, error) {
	text, _ := dom.CellText(doc, p.selectors.TimeCell)
	return ParseTimeRange(p.normalizer.Text(text))
}

func (p *DetailParser) parseLocation(doc dom.Node, fragments []string) (meeting.Location, error) {
	if isVirtual(fragments) {
		return p.virtualLocation(fragments), nil
	}

	address, err := FormatLocation(p.normalizer.Fragments(fragments), p.citySuffix)
	if err != nil {
		return meeting.Location{}, fmt.Errorf("%s: %w", fieldLocationCells, err)
	}

	location := meeting.Location{Address: address}
	if name, ok := dom.FirstText(doc, p.selectors.LocationName); ok {
		name = p.normalizer.Text(name)
		if idx := strings.Index(name, locationNameSep); idx >= 0 {
			name = name[:idx]
		}
		location.Name = meeting.StringPtr(name)
	}

	return location, nil
}

func (p *DetailParser) virtualLocation(fragments []string) meeting.Location {
	if p.virtual == VirtualEcho {
		text := strings.Join(p.normalizer.Fragments(fragments), " ")
		return meeting.Location{Address: text, Name: meeting.StringPtr(text)}
	}
	return meeting.Location{Address: virtualMarker, Name: meeting.StringPtr(virtualMarker)}
}

func isVirtual(fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(f, virtualMarker) {
			return true
		}
	}
	return false
}

func (p *DetailParser) parseLinks(doc dom.Node) []meeting.Link {
	links := []meeting.Link{}
	for _, cell := range doc.Find(p.selectors.LinkCells) {
		for _, a := range cell.Find("a") {
			href, _ := a.Attr("href")
			links = append(links, meeting.Link{
				Title: p.normalizer.Text(a.Text()),
				Href:  strings.TrimSpace(href),
			})
		}
	}
	return links
}
