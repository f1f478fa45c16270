package meeting

import "time"

// Clock отдаёт текущее время; подменяется в тестах.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock всегда возвращает одно и то же время.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// StatusAt: "passed" только если start строго раньше now.
func StatusAt(start, now time.Time) Status {
	if start.Before(now) {
		return StatusPassed
	}
	return StatusTentative
}
