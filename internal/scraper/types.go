package scraper

// Selectors: CSS-селекторы листинга и детальной страницы.
type Selectors struct {
	ListingRows  string `yaml:"listing_rows" toml:"listing_rows"`
	LocationCell string `yaml:"location_cell" toml:"location_cell"`
	DetailLink   string `yaml:"detail_link" toml:"detail_link"`
	Title        string `yaml:"title" toml:"title"`
	DateCell     string `yaml:"date_cell" toml:"date_cell"`
	TimeCell     string `yaml:"time_cell" toml:"time_cell"`
	LocationName string `yaml:"location_name" toml:"location_name"`
	LinkCells    string `yaml:"link_cells" toml:"link_cells"`
}

// DefaultSelectors соответствуют разметке сайта nps.k12.nj.us
// (таблицы плагина Shortcodes Ultimate).
func DefaultSelectors() *Selectors {
	return &Selectors{
		ListingRows:  ".su-table.su-table-alternate table tbody tr:not(:first-child)",
		LocationCell: "td:nth-child(4)",
		DetailLink:   "td a",
		Title:        "h1.entry-title",
		DateCell:     ".su-table.su-table-alternate table tr td:nth-child(2)",
		TimeCell:     ".su-table table tr:nth-child(2) td:nth-child(2)",
		LocationName: ".su-table table tr:nth-child(3) td:nth-child(2) a",
		LinkCells:    ".su-table.su-table-alternate table tbody tr:first-child td:nth-child(2)",
	}
}

// WithDefaults заполняет пустые поля значениями по умолчанию.
func (s *Selectors) WithDefaults() *Selectors {
	d := DefaultSelectors()
	if s == nil {
		return d
	}
	out := *s
	if out.ListingRows == "" {
		out.ListingRows = d.ListingRows
	}
	if out.LocationCell == "" {
		out.LocationCell = d.LocationCell
	}
	if out.DetailLink == "" {
		out.DetailLink = d.DetailLink
	}
	if out.Title == "" {
		out.Title = d.Title
	}
	if out.DateCell == "" {
		out.DateCell = d.DateCell
	}
	if out.TimeCell == "" {
		out.TimeCell = d.TimeCell
	}
	if out.LocationName == "" {
		out.LocationName = d.LocationName
	}
	if out.LinkCells == "" {
		out.LinkCells = d.LinkCells
	}
	return &out
}

// DetailRequest: задание на загрузку детальной страницы с контекстом из листинга.
type DetailRequest struct {
	Row               int      `json:"row"`
	URL               string   `json:"url"`
	LocationFragments []string `json:"location_fragments"`
}

// Listing содержит задания и пропущенные строки листинга.
type Listing struct {
	Rows     int
	Requests []DetailRequest
	Skipped  []*RowError
}
