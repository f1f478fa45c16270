package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"nboe-meetings/internal/checksum"
	"nboe-meetings/internal/meeting"
	"nboe-meetings/internal/observability"
	"nboe-meetings/internal/storage"
)

// Sink получает каждую успешно разобранную запись.
type Sink interface {
	Name() string
	Emit(ctx context.Context, m *meeting.Meeting) error
}

type runIDKey struct{}

func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext возвращает uuid.Nil вне запуска пайплайна.
func RunIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(runIDKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// JSONLinesSink пишет одну JSON-запись на строку.
type JSONLinesSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLinesSink{enc: enc}
}

func (s *JSONLinesSink) Name() string { return "jsonl" }

func (s *JSONLinesSink) Emit(_ context.Context, m *meeting.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(m)
}

type UpsertResult struct {
	IsNew     bool
	IsUpdated bool
}

type resultReporter interface {
	LastResult() UpsertResult
}

// RepositorySink сохраняет записи через storage.Repository с контрольной суммой.
type RepositorySink struct {
	repo     storage.Repository
	hasher   *checksum.Generator
	scraper  string
	agency   string
	clock    meeting.Clock
	logger   *observability.Logger
	dryRun   bool
	lastSeen UpsertResult
}

func NewRepositorySink(repo storage.Repository, scraperName, agency string, clock meeting.Clock, logger *observability.Logger) *RepositorySink {
	if clock == nil {
		clock = meeting.SystemClock{}
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &RepositorySink{
		repo:    repo,
		hasher:  checksum.NewGenerator(),
		scraper: scraperName,
		agency:  agency,
		clock:   clock,
		logger:  logger,
	}
}

// SetDryRun: сравнивать с хранилищем без записи.
func (s *RepositorySink) SetDryRun(enabled bool) *RepositorySink {
	s.dryRun = enabled
	return s
}

func (s *RepositorySink) Name() string { return "repository" }

func (s *RepositorySink) Emit(ctx context.Context, m *meeting.Meeting) error {
	s.lastSeen = UpsertResult{}

	if s.dryRun {
		return s.compare(ctx, m)
	}

	row, err := storage.FromMeeting(m, s.scraper, s.agency, RunIDFromContext(ctx), s.hasher.GenerateMeetingHash(m), s.clock.Now())
	if err != nil {
		return err
	}

	isNew, isUpdated, err := s.repo.UpsertMeeting(ctx, row)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", m.ID, err)
	}

	s.lastSeen = UpsertResult{IsNew: isNew, IsUpdated: isUpdated}
	s.logger.Debug("Meeting stored",
		"id", m.ID,
		"is_new", isNew,
		"is_updated", isUpdated,
		"scraped_at", row.ScrapedAt.Format(time.RFC3339),
	)
	return nil
}

// compare сообщает, была бы запись вставлена или обновлена.
func (s *RepositorySink) compare(ctx context.Context, m *meeting.Meeting) error {
	stored, found, err := s.repo.ChecksumByID(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", m.ID, err)
	}

	s.lastSeen = UpsertResult{
		IsNew:     !found,
		IsUpdated: found && !s.hasher.VerifyMeetingHash(stored, m),
	}
	s.logger.Debug("Dry run",
		"id", m.ID,
		"would_insert", s.lastSeen.IsNew,
		"would_update", s.lastSeen.IsUpdated,
	)
	return nil
}

func (s *RepositorySink) LastResult() UpsertResult {
	return s.lastSeen
}
