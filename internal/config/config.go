package config

import (
	"fmt"
	"net/url"
	"time"
	// America/New_York должен загружаться и без системного tzdata
	_ "time/tzdata"
)

type Config struct {
	Scraper       ScraperConfig       `yaml:"scraper" toml:"scraper"`
	HTTP          HttpConfig          `yaml:"http" toml:"http"`
	Rod           RodConfig           `yaml:"rod" toml:"rod"`
	SelectorsFile string              `yaml:"selectors_file" toml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize" toml:"normalize"`
	Storage       StorageConfig       `yaml:"storage" toml:"storage"`
	Observability ObservabilityConfig `yaml:"observability" toml:"observability"`
}

type ScraperConfig struct {
	Name            string `yaml:"name" toml:"name"`
	Agency          string `yaml:"agency" toml:"agency"`
	Timezone        string `yaml:"timezone" toml:"timezone"`
	StartURL        string `yaml:"start_url" toml:"start_url"`
	CitySuffix      string `yaml:"city_suffix" toml:"city_suffix"`
	VirtualLocation string `yaml:"virtual_location" toml:"virtual_location"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled" toml:"enabled"`
	ChromePath       string `yaml:"chrome_path" toml:"chrome_path"`
	PageTimeoutS     int    `yaml:"page_timeout_s" toml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s" toml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s" toml:"lazy_load_delay_s"`
}

type HttpConfig struct {
	UserAgent              string `yaml:"user_agent" toml:"user_agent"`
	TotalTimeoutMS         int    `yaml:"total_timeout_ms" toml:"total_timeout_ms"`
	MaxIdleConnections     int    `yaml:"max_idle_connections" toml:"max_idle_connections"`
	IdleConnectionTimeoutS int    `yaml:"idle_connection_timeout_s" toml:"idle_connection_timeout_s"`
	AcceptLanguage         string `yaml:"accept_language" toml:"accept_language"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp" toml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces" toml:"collapse_spaces"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver" toml:"driver"`
	DSN              string `yaml:"dsn" toml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms" toml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path" toml:"log_path"`
	LogLevel      string `yaml:"log_level" toml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" toml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups" toml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days" toml:"log_max_age_days"`
	LogCompress   bool   `yaml:"log_compress" toml:"log_compress"`
}

// Default возвращает конфиг для сайта Newark Board of Education.
// Файл конфигурации переопределяет только заданные в нём поля.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Name:            "newnj_nbe",
			Agency:          "Newark Board of Education",
			Timezone:        "America/New_York",
			StartURL:        "https://www.nps.k12.nj.us/board-of-education/meetings/",
			CitySuffix:      ", Newark, NJ",
			VirtualLocation: "literal",
		},
		HTTP: HttpConfig{
			UserAgent:              "nboe-meetings/1.0",
			TotalTimeoutMS:         30000,
			MaxIdleConnections:     10,
			IdleConnectionTimeoutS: 90,
			AcceptLanguage:         "en-US,en;q=0.9",
		},
		Rod: RodConfig{
			PageTimeoutS:     60,
			WaitLoadTimeoutS: 30,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:       true,
			CollapseSpaces: true,
		},
		Storage: StorageConfig{
			Driver:           "none",
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogMaxSizeMB:  10,
			LogMaxBackups: 3,
			LogMaxAgeDays: 28,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Scraper.Name == "" {
		return fmt.Errorf("scraper.name is required")
	}
	if c.Scraper.StartURL == "" {
		return fmt.Errorf("scraper.start_url is required")
	}
	if u, err := url.Parse(c.Scraper.StartURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("scraper.start_url must be an absolute URL")
	}
	if _, err := c.GetLocation(); err != nil {
		return fmt.Errorf("scraper.timezone: %w", err)
	}
	if c.Scraper.VirtualLocation != "literal" && c.Scraper.VirtualLocation != "echo" {
		return fmt.Errorf("scraper.virtual_location must be 'literal' or 'echo'")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxIdleConnections < 0 {
		return fmt.Errorf("http.max_idle_connections must be >= 0")
	}
	switch c.Storage.Driver {
	case "none":
	case "mssql", "sqlite":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	default:
		return fmt.Errorf("storage.driver must be 'mssql', 'sqlite' or 'none'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.LazyLoadDelayS < 0 {
			return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetLocation() (*time.Location, error) {
	if c.Scraper.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Scraper.Timezone)
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}
