package app

import (
	"fmt"

	"nboe-meetings/internal/config"
	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/storage"
	"nboe-meetings/internal/storage/mssql"
	"nboe-meetings/internal/storage/sqlite"
)

// OpenRepository открывает хранилище по storage.driver; для "none" возвращает nil.
func OpenRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case "", "none":
		return nil, nil
	case "mssql":
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
