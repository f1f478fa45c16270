package meeting

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAt(t *testing.T) {
	start := time.Date(2023, 5, 20, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"start in the past", start.Add(time.Minute), StatusPassed},
		{"start in the future", start.Add(-time.Minute), StatusTentative},
		{"start equals now", start, StatusTentative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusAt(start, tt.now))
		})
	}
}

func TestFixedClock(t *testing.T) {
	frozen := time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC)
	var clock Clock = FixedClock(frozen)

	assert.True(t, clock.Now().Equal(frozen))
	assert.True(t, clock.Now().Equal(clock.Now()))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NBOE Retreat", "nboe_retreat"},
		{"  Regular Business Meeting  ", "regular_business_meeting"},
		{"Budget Hearing - 2024/25", "budget_hearing_2024_25"},
		{"Special Meeting (Virtual)", "special_meeting_virtual"},
		{"nboe-retreat-05-20-2023", "nboe_retreat_05_20_2023"},
		{"a^b", "a^b"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestGenerateID(t *testing.T) {
	start := time.Date(2023, 5, 20, 9, 0, 0, 0, time.UTC)

	id := GenerateID("newnj_nbe", start, "NBOE Retreat")
	assert.Equal(t, "newnj_nbe/202305200900/x/nboe_retreat", id)

	// детерминированность
	assert.Equal(t, id, GenerateID("newnj_nbe", start, "NBOE Retreat"))
	assert.NotEqual(t, id, GenerateID("newnj_nbe", start.Add(time.Hour), "NBOE Retreat"))
}

func TestSlugSourceFromURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.nps.k12.nj.us/events/nboe-retreat-05-20-2023/", "nboe-retreat-05-20-2023"},
		{"https://www.nps.k12.nj.us/events/budget-hearing", "budget-hearing"},
		{"https://www.nps.k12.nj.us/", "www.nps.k12.nj.us"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SlugSourceFromURL(tt.input), tt.input)
	}
}

func TestNew(t *testing.T) {
	start := time.Date(2023, 5, 20, 9, 0, 0, 0, time.UTC)
	end := time.Date(2023, 5, 20, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC)

	m := New("newnj_nbe", Fields{
		Title:    "NBOE Retreat",
		Start:    start,
		End:      end,
		Location: Location{Address: "Virtual", Name: StringPtr("Virtual")},
		Source:   "https://www.nps.k12.nj.us/events/nboe-retreat-05-20-2023/",
	}, now)

	assert.Equal(t, "newnj_nbe/202305200900/x/nboe_retreat", m.ID)
	assert.Equal(t, Board, m.Classification)
	assert.Equal(t, StatusPassed, m.Status)
	assert.Equal(t, "", m.Description)
	assert.Equal(t, "", m.TimeNotes)
	assert.False(t, m.AllDay)
	assert.NotNil(t, m.Links)
	assert.Empty(t, m.Links)
}

func TestNewFallsBackToSourceSlug(t *testing.T) {
	start := time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC)

	m := New("newnj_nbe", Fields{
		Start:  start,
		End:    start,
		Source: "https://www.nps.k12.nj.us/events/nboe-retreat-05-20-2023/",
	}, start)

	assert.Equal(t, "", m.Title)
	assert.Equal(t, "newnj_nbe/202305200000/x/nboe_retreat_05_20_2023", m.ID)
	assert.Equal(t, StatusTentative, m.Status)
}

func TestMeetingJSON(t *testing.T) {
	start := time.Date(2023, 5, 20, 9, 0, 0, 0, time.UTC)
	m := New("newnj_nbe", Fields{
		Title:    "NBOE Retreat",
		Start:    start,
		End:      start,
		Location: Location{Address: "2 Cedar St, 10th Floor, Newark, NJ"},
		Links:    []Link{{Title: "Watch on Vimeo", Href: "https://vimeo.com/event/3417032"}},
		Source:   "https://www.nps.k12.nj.us/events/x/",
	}, start)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "board meeting", decoded["classification"])
	assert.Equal(t, false, decoded["all_day"])
	location := decoded["location"].(map[string]any)
	assert.Nil(t, location["name"])
	assert.Contains(t, decoded, "time_notes")
}
