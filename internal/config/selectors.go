package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"nboe-meetings/internal/scraper"
)

// LoadSelectors загружает селекторы из YAML файла; пустые поля берутся по умолчанию.
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	// Проверяем существование файла
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	// Открываем файл
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	// Парсим YAML
	var selectors scraper.Selectors
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	merged := selectors.WithDefaults()
	if err := validateSelectors(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// ResolveSelectors: без selectors_file используются встроенные селекторы.
// Относительный путь считается от каталога файла конфигурации.
func (c *Config) ResolveSelectors(configPath string) (*scraper.Selectors, error) {
	if c.SelectorsFile == "" {
		return scraper.DefaultSelectors(), nil
	}

	filePath := c.SelectorsFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(filepath.Dir(configPath), filePath)
	}

	return LoadSelectors(filePath)
}

// validateSelectors проверяет, что каждый селектор компилируется.
func validateSelectors(s *scraper.Selectors) error {
	fields := map[string]string{
		"listing_rows":  s.ListingRows,
		"location_cell": s.LocationCell,
		"detail_link":   s.DetailLink,
		"title":         s.Title,
		"date_cell":     s.DateCell,
		"time_cell":     s.TimeCell,
		"location_name": s.LocationName,
		"link_cells":    s.LinkCells,
	}
	for name, sel := range fields {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("%s: invalid selector %q: %w", name, sel, err)
		}
	}
	return nil
}
