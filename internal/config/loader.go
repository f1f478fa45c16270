package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadConfig читает YAML (или TOML по расширению .toml) поверх Default() и валидирует.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		if _, err := toml.DecodeFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				// Логируем ошибку, но не возвращаем, иначе перезапишем основную ошибку
				log.Printf("Warning: failed to close config file: %v", closeErr)
			}
		}()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		// Пустой файл (io.EOF) = только значения по умолчанию
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}
