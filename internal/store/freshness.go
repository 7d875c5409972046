package store

import "time"

// Schedule boundaries (local hour of day)
const (
	nightStartHour = 23
	nightEndHour   = 6
	morningEndHour = 10

	MorningTTL = time.Hour
	DaytimeTTL = 10 * time.Minute
)

// Freshness decides whether a persisted catalog may still be served.
//
// Validity depends on the wall-clock period of the read, not only on age:
//   - written and read within the same night (23:00-06:00): valid regardless of age
//   - otherwise the entry is valid while its age is below TTLAt(read time)
type Freshness struct {
	loc *time.Location
}

// NewFreshness evaluates the schedule in loc (nil means local time).
func NewFreshness(loc *time.Location) *Freshness {
	if loc == nil {
		loc = time.Local
	}
	return &Freshness{loc: loc}
}

func (f *Freshness) IsNight(t time.Time) bool {
	h := t.In(f.loc).Hour()
	return h >= nightStartHour || h < nightEndHour
}

func (f *Freshness) IsMorning(t time.Time) bool {
	h := t.In(f.loc).Hour()
	return h >= nightEndHour && h < morningEndHour
}

// TTLAt returns the time-to-live applicable to a read at now.
// At night that is whatever remains until 06:00.
func (f *Freshness) TTLAt(now time.Time) time.Duration {
	switch {
	case f.IsNight(now):
		return f.nightEnd(now).Sub(now)
	case f.IsMorning(now):
		return MorningTTL
	default:
		return DaytimeTTL
	}
}

// Valid reports whether an entry written at writtenAt may be served at now.
func (f *Freshness) Valid(writtenAt, now time.Time) bool {
	if f.sameNight(writtenAt, now) {
		return true
	}
	return now.Sub(writtenAt) < f.TTLAt(now)
}

// ExpiresAt returns when an entry written at writtenAt stops being valid,
// judged with the rule in force at now.
func (f *Freshness) ExpiresAt(writtenAt, now time.Time) time.Time {
	if f.sameNight(writtenAt, now) {
		return f.nightEnd(now)
	}
	return writtenAt.Add(f.TTLAt(now))
}

func (f *Freshness) sameNight(a, b time.Time) bool {
	if !f.IsNight(a) || !f.IsNight(b) {
		return false
	}
	return f.nightStart(a).Equal(f.nightStart(b))
}

// nightStart returns 23:00 of the night period containing t.
func (f *Freshness) nightStart(t time.Time) time.Time {
	t = t.In(f.loc)
	y, m, d := t.Date()
	if t.Hour() < nightEndHour {
		d--
	}
	return time.Date(y, m, d, nightStartHour, 0, 0, 0, f.loc)
}

// nightEnd returns 06:00 ending the night period containing t.
func (f *Freshness) nightEnd(t time.Time) time.Time {
	t = t.In(f.loc)
	y, m, d := t.Date()
	if t.Hour() >= nightStartHour {
		d++
	}
	return time.Date(y, m, d, nightEndHour, 0, 0, 0, f.loc)
}
