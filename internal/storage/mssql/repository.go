package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/storage"
)

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = observability.Nop()
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// upsertQuery: строка обновляется только при изменении CheckSum.
// OUTPUT $action возвращает INSERT/UPDATE; без изменений строк нет.
const upsertQuery = `
	MERGE INTO TblMeetings AS target
	USING (SELECT @ID AS ID) AS source
	ON target.[ID] = source.ID
	WHEN MATCHED AND target.[CheckSum] <> @CheckSum THEN
		UPDATE SET
			[Title] = @Title,
			[Description] = @Description,
			[Classification] = @Classification,
			[StartDT] = @StartDT,
			[EndDT] = @EndDT,
			[AllDay] = @AllDay,
			[TimeNotes] = @TimeNotes,
			[Address] = @Address,
			[LocationName] = @LocationName,
			[Links] = @Links,
			[Source] = @Source,
			[Status] = @Status,
			[CheckSum] = @CheckSum,
			[RunID] = @RunID,
			[ScrapedAt] = @ScrapedAt
	WHEN NOT MATCHED THEN
		INSERT ([ID], [ScraperName], [Agency], [Title], [Description], [Classification], [StartDT], [EndDT],
			[AllDay], [TimeNotes], [Address], [LocationName], [Links], [Source], [Status], [CheckSum], [RunID], [ScrapedAt])
		VALUES (@ID, @ScraperName, @Agency, @Title, @Description, @Classification, @StartDT, @EndDT,
			@AllDay, @TimeNotes, @Address, @LocationName, @Links, @Source, @Status, @CheckSum, @RunID, @ScrapedAt)
	OUTPUT $action;
`

// UpsertMeeting сохраняет или обновляет заседание
func (r *Repository) UpsertMeeting(ctx context.Context, row *storage.MeetingRow) (isNew bool, isUpdated bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	stmt, err := r.db.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return false, false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var locationName sql.NullString
	if row.LocationName != nil {
		locationName = sql.NullString{String: *row.LocationName, Valid: true}
	}

	var action string
	err = stmt.QueryRowContext(ctx,
		sql.Named("ID", row.ID),
		sql.Named("ScraperName", row.ScraperName),
		sql.Named("Agency", row.Agency),
		sql.Named("Title", row.Title),
		sql.Named("Description", row.Description),
		sql.Named("Classification", row.Classification),
		sql.Named("StartDT", row.Start),
		sql.Named("EndDT", row.End),
		sql.Named("AllDay", row.AllDay),
		sql.Named("TimeNotes", row.TimeNotes),
		sql.Named("Address", row.Address),
		sql.Named("LocationName", locationName),
		sql.Named("Links", row.LinksJSON),
		sql.Named("Source", row.Source),
		sql.Named("Status", row.Status),
		sql.Named("CheckSum", row.CheckSum),
		sql.Named("RunID", row.RunID.String()),
		sql.Named("ScrapedAt", row.ScrapedAt),
	).Scan(&action)

	if errors.Is(err, sql.ErrNoRows) {
		// Контрольная сумма совпала, строка не менялась
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	switch action {
	case "INSERT":
		isNew = true
	case "UPDATE":
		isUpdated = true
	default:
		r.logger.Warn("Unexpected MERGE action", "action", action, "id", row.ID)
	}

	return isNew, isUpdated, nil
}

// ChecksumByID возвращает сохранённую контрольную сумму заседания
func (r *Repository) ChecksumByID(ctx context.Context, id string) (checkSum string, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	err = r.db.QueryRowContext(ctx, `SELECT [CheckSum] FROM TblMeetings WHERE ID = @ID`, sql.Named("ID", id)).Scan(&checkSum)
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
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM TblMeetings WHERE ScraperName = @ScraperName`,
		sql.Named("ScraperName", scraperName),
	).Scan(&count)
	if err != nil {
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
