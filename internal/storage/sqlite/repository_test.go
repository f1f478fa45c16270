package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nboe-meetings/internal/storage"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(":memory:", 5*time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testRow(checkSum string) *storage.MeetingRow {
	start := time.Date(2023, 5, 20, 9, 0, 0, 0, time.UTC)
	name := "Virtual"
	return &storage.MeetingRow{
		ID:             "newnj_nbe/202305200900/x/nboe_retreat",
		ScraperName:    "newnj_nbe",
		Agency:         "Newark Board of Education",
		Title:          "NBOE Retreat",
		Classification: "board meeting",
		Start:          start,
		End:            start.Add(3 * time.Hour),
		Address:        "Virtual",
		LocationName:   &name,
		LinksJSON:      "[]",
		Source:         "https://www.nps.k12.nj.us/events/nboe-retreat-05-20-2023/",
		Status:         "passed",
		CheckSum:       checkSum,
		RunID:          uuid.New(),
		ScrapedAt:      time.Now(),
	}
}

func TestUpsertMeeting(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	isNew, isUpdated, err := repo.UpsertMeeting(ctx, testRow("hash-1"))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.False(t, isUpdated)

	// Та же контрольная сумма: без изменений
	isNew, isUpdated, err = repo.UpsertMeeting(ctx, testRow("hash-1"))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.False(t, isUpdated)

	isNew, isUpdated, err = repo.UpsertMeeting(ctx, testRow("hash-2"))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.True(t, isUpdated)

	count, err := repo.CountByScraper(ctx, "newnj_nbe")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertMeetingNullLocationName(t *testing.T) {
	repo := newTestRepository(t)
	row := testRow("hash-1")
	row.LocationName = nil

	_, _, err := repo.UpsertMeeting(context.Background(), row)
	require.NoError(t, err)

	var name *string
	err = repo.db.QueryRow(`SELECT location_name FROM meetings WHERE id = ?`, row.ID).Scan(&name)
	require.NoError(t, err)
	assert.Nil(t, name)
}

func TestChecksumByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id := "newnj_nbe/202305200900/x/nboe_retreat"

	_, found, err := repo.ChecksumByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = repo.UpsertMeeting(ctx, testRow("hash-1"))
	require.NoError(t, err)

	checkSum, found, err := repo.ChecksumByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hash-1", checkSum)

	_, _, err = repo.UpsertMeeting(ctx, testRow("hash-2"))
	require.NoError(t, err)

	checkSum, _, err = repo.ChecksumByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", checkSum)

	count, err := repo.CountByScraper(ctx, "other_scraper")
	require.NoError(t, err)
	assert.Zero(t, count)
}
