package meeting

import "time"

// Classification всегда одна: заседание совета.
type Classification string

const Board Classification = "board meeting"

type Status string

const (
	StatusPassed    Status = "passed"
	StatusTentative Status = "tentative"
)

// Location: адрес и название места. Name == nil, если название не найдено.
type Location struct {
	Address string  `json:"address"`
	Name    *string `json:"name"`
}

type Link struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Meeting: нормализованная запись о заседании, одна на детальную страницу.
type Meeting struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Classification Classification `json:"classification"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	AllDay         bool           `json:"all_day"`
	TimeNotes      string         `json:"time_notes"`
	Location       Location       `json:"location"`
	Links          []Link         `json:"links"`
	Source         string         `json:"source"`
	Status         Status         `json:"status"`
}

// Fields: всё, что извлекается со страницы; производные поля считает New.
type Fields struct {
	Title    string
	Start    time.Time
	End      time.Time
	Location Location
	Links    []Link
	Source   string
}

// New собирает запись: константные поля, статус относительно now и ID.
func New(scraperName string, f Fields, now time.Time) *Meeting {
	links := f.Links
	if links == nil {
		links = []Link{}
	}

	m := &Meeting{
		Title:          f.Title,
		Description:    "",
		Classification: Board,
		Start:          f.Start,
		End:            f.End,
		AllDay:         false,
		TimeNotes:      "",
		Location:       f.Location,
		Links:          links,
		Source:         f.Source,
	}
	m.Status = StatusAt(m.Start, now)

	slugSource := m.Title
	if Slugify(slugSource) == "" {
		slugSource = SlugSourceFromURL(m.Source)
	}
	m.ID = GenerateID(scraperName, m.Start, slugSource)

	return m
}

// StringPtr: helper для Location.Name.
func StringPtr(s string) *string {
	return &s
}
