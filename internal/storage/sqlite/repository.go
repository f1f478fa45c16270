package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/storage"
)

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

// NewRepository открывает базу и создаёт схему, если её нет.
func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite допускает одного писателя; для :memory: каждое соединение это отдельная база
	db.SetMaxOpenConns(1)

	if logger == nil {
		logger = observability.Nop()
	}

	repo := &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
	if err := repo.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *Repository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		scraper_name TEXT NOT NULL,
		agency TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		classification TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		all_day INTEGER NOT NULL DEFAULT 0,
		time_notes TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL,
		location_name TEXT,
		links TEXT NOT NULL DEFAULT '[]',
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		checksum TEXT NOT NULL,
		run_id TEXT NOT NULL,
		scraped_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_meetings_scraper ON meetings(scraper_name);
	`

	ctx, cancel := context.WithTimeout(context.Background(), r.commandTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, schema)
	return err
}

const upsertQuery = `
	INSERT INTO meetings (
		id, scraper_name, agency, title, description, classification, start_at, end_at,
		all_day, time_notes, address, location_name, links, source, status, checksum, run_id, scraped_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		classification = excluded.classification,
		start_at = excluded.start_at,
		end_at = excluded.end_at,
		all_day = excluded.all_day,
		time_notes = excluded.time_notes,
		address = excluded.address,
		location_name = excluded.location_name,
		links = excluded.links,
		source = excluded.source,
		status = excluded.status,
		checksum = excluded.checksum,
		run_id = excluded.run_id,
		scraped_at = excluded.scraped_at
	WHERE meetings.checksum <> excluded.checksum
`

// UpsertMeeting сохраняет или обновляет заседание
func (r *Repository) UpsertMeeting(ctx context.Context, row *storage.MeetingRow) (isNew bool, isUpdated bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings WHERE id = ?`, row.ID).Scan(&existing); err != nil {
		return false, false, fmt.Errorf("failed to query database: %w", err)
	}

	var locationName sql.NullString
	if row.LocationName != nil {
		locationName = sql.NullString{String: *row.LocationName, Valid: true}
	}

	result, err := tx.ExecContext(ctx, upsertQuery,
		row.ID,
		row.ScraperName,
		row.Agency,
		row.Title,
		row.Description,
		row.Classification,
		row.Start.Format(time.RFC3339),
		row.End.Format(time.RFC3339),
		row.AllDay,
		row.TimeNotes,
		row.Address,
		locationName,
		row.LinksJSON,
		row.Source,
		row.Status,
		row.CheckSum,
		row.RunID.String(),
		row.ScrapedAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, false, fmt.Errorf("failed to commit: %w", err)
	}

	if rowsAffected > 0 {
		isNew = existing == 0
		isUpdated = existing > 0
	}

	return isNew, isUpdated, nil
}

// ChecksumByID возвращает сохранённую контрольную сумму заседания
func (r *Repository) ChecksumByID(ctx context.Context, id string) (checkSum string, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	err = r.db.QueryRowContext(ctx, `SELECT checksum FROM meetings WHERE id = ?`, id).Scan(&checkSum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query database: %w", err)
	}
	return checkSum, true, nil
}

// CountByScraper получает количество заседаний скрапера
func (r *Repository) CountByScraper(ctx context.Context, scraperName string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings WHERE scraper_name = ?`, scraperName).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

var _ storage.Repository = (*Repository)(nil)
