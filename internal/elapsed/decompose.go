package elapsed

import "time"

// Breakdown is the elapsed span between two instants. Years, months and days
// are calendar units; hours, minutes and seconds are the remainder of the raw
// span modulo fixed-length units, so the two halves are not reconcilable.
type Breakdown struct {
	Years   int `json:"years"`
	Months  int `json:"months"`
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// IsZero reports whether every field is zero.
func (b Breakdown) IsZero() bool { return b == Breakdown{} }

// ApproxDays is the staging approximation years*365 + months*30 + days.
func (b Breakdown) ApproxDays() int { return b.Years*365 + b.Months*30 + b.Days }

// Since re-assembles the calendar part of b on top of start, one unit at a
// time in the same order Decompose steps.
func (b Breakdown) Since(start time.Time) time.Time {
	t := start
	for i := 0; i < b.Years; i++ {
		t = t.AddDate(1, 0, 0)
	}
	for i := 0; i < b.Months; i++ {
		t = t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, b.Days)
}

// Decompose returns the greatest breakdown of now-start. now is read in start's
// location. A now before start yields the zero Breakdown.
func Decompose(start, now time.Time) Breakdown {
	now = now.In(start.Location())
	if !now.After(start) {
		return Breakdown{}
	}

	ms := now.Sub(start).Milliseconds()
	b := Breakdown{
		Seconds: int(ms / 1000 % 60),
		Minutes: int(ms / 60000 % 60),
		Hours:   int(ms / 3600000 % 24),
	}

	cursor := start
	b.Years, cursor = stepWhile(cursor, now, 1, 0, 0)
	b.Months, cursor = stepWhile(cursor, now, 0, 1, 0)
	b.Days, _ = stepWhile(cursor, now, 0, 0, 1)
	return b
}

// stepWhile advances cursor by one unit at a time while it stays at or before
// now. Day-of-month overflow carries into the next step: 31 Jan + 1 month is
// 3 Mar, and the following month is 3 Apr.
func stepWhile(cursor, now time.Time, years, months, days int) (int, time.Time) {
	n := 0
	for {
		next := cursor.AddDate(years, months, days)
		if next.After(now) {
			return n, cursor
		}
		n++
		cursor = next
	}
}
