package scraper

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout    = "1/2/2006"
	clockLayout   = "3:04 PM"
	timeRangeSep  = " - "
	fieldDate     = "date"
	fieldTimeSpan = "time range"
)

// ParseDate разбирает "05/20/2023" (ведущие нули необязательны).
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	d, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}, &ParseError{Field: fieldDate, Value: text, Err: err}
	}
	return d, nil
}

// TimeOfDay: время суток без даты.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String форматирует обратно в 12-часовой вид, "9:00 AM".
func (c TimeOfDay) String() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format(clockLayout)
}

// On ставит время суток на дату в заданной зоне.
func (c TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// ParseTimeRange разбирает "9:00 AM - 12:00 PM".
// Пустая строка не ошибка, оба значения полночь.
func ParseTimeRange(text string) (start, end TimeOfDay, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TimeOfDay{}, TimeOfDay{}, nil
	}

	halves := strings.Split(text, timeRangeSep)
	if len(halves) != 2 {
		return TimeOfDay{}, TimeOfDay{}, &ParseError{
			Field: fieldTimeSpan,
			Value: text,
			Err:   fmt.Errorf("expected exactly one %q separator", timeRangeSep),
		}
	}

	if start, err = parseClock(halves[0]); err != nil {
		return TimeOfDay{}, TimeOfDay{}, &ParseError{Field: fieldTimeSpan, Value: text, Err: err}
	}
	if end, err = parseClock(halves[1]); err != nil {
		return TimeOfDay{}, TimeOfDay{}, &ParseError{Field: fieldTimeSpan, Value: text, Err: err}
	}

	return start, end, nil
}

func parseClock(s string) (TimeOfDay, error) {
	t, err := time.Parse(clockLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}
