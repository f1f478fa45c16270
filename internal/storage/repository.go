package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nboe-meetings/internal/meeting"
)

// MeetingRow представляет заседание для сохранения в БД
type MeetingRow struct {
	ID             string
	ScraperName    string
	Agency         string
	Title          string
	Description    string
	Classification string
	Start          time.Time
	End            time.Time
	AllDay         bool
	TimeNotes      string
	Address        string
	LocationName   *string
	LinksJSON      string // JSON-массив [{title, href}]
	Source         string
	Status         string
	CheckSum       string // SHA256 содержимого (см. checksum.Generator)
	RunID          uuid.UUID
	ScrapedAt      time.Time
}

// FromMeeting собирает строку БД из записи заседания.
func FromMeeting(m *meeting.Meeting, scraperName, agency string, runID uuid.UUID, checkSum string, scrapedAt time.Time) (*MeetingRow, error) {
	links := m.Links
	if links == nil {
		links = []meeting.Link{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal links: %w", err)
	}

	return &MeetingRow{
		ID:             m.ID,
		ScraperName:    scraperName,
		Agency:         agency,
		Title:          m.Title,
		Description:    m.Description,
		Classification: string(m.Classification),
		Start:          m.Start,
		End:            m.End,
		AllDay:         m.AllDay,
		TimeNotes:      m.TimeNotes,
		Address:        m.Location.Address,
		LocationName:   m.Location.Name,
		LinksJSON:      string(linksJSON),
		Source:         m.Source,
		Status:         string(m.Status),
		CheckSum:       checkSum,
		RunID:          runID,
		ScrapedAt:      scrapedAt.UTC(),
	}, nil
}

// Repository интерфейс для работы с хранилищем заседаний
type Repository interface {
	// UpsertMeeting сохраняет или обновляет заседание по ID, возвращает (isNew, isUpdated, error).
	// Существующая строка обновляется только при изменении CheckSum.
	UpsertMeeting(ctx context.Context, row *MeetingRow) (isNew bool, isUpdated bool, err error)

	// ChecksumByID возвращает сохранённую контрольную сумму; found=false, если записи нет
	ChecksumByID(ctx context.Context, id string) (checkSum string, found bool, err error)

	// CountByScraper получает количество сохранённых заседаний скрапера
	CountByScraper(ctx context.Context, scraperName string) (int, error)

	Close() error
}
