package calendar

import (
	"fmt"
	"time"
)

// Day describes one cell of the 7-day window.
type Day struct {
	Day     int          `json:"day"`
	Month   time.Month   `json:"month"`
	Year    int          `json:"year"`
	Weekday time.Weekday `json:"weekday"`
	IsToday bool         `json:"is_today"`
	Date    time.Time    `json:"date"`
}

// State is the single visual state of a day. Precedence when several
// apply: selected > today > highlighted > plain.
type State string

const (
	StateSelected    State = "selected"
	StateToday       State = "today"
	StateHighlighted State = "highlighted"
	StatePlain       State = "plain"
)

// highlightDays is the trailing lookback window: days with
// today-3 < d <= today render highlighted.
const highlightDays = 3

// Midnight truncates a time to its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports calendar-day equality (year, month, day).
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// GenerateWeek returns 7 consecutive day descriptors starting at start.
// Day i is start+i days; IsToday compares calendar dates only.
func GenerateWeek(start, today time.Time) []Day {
	days := make([]Day, 0, 7)
	current := Midnight(start)
	for i := 0; i < 7; i++ {
		days = append(days, Day{
			Day:     current.Day(),
			Month:   current.Month(),
			Year:    current.Year(),
			Weekday: current.Weekday(),
			IsToday: SameDay(current, today),
			Date:    current,
		})
		current = current.AddDate(0, 0, 1)
	}
	return days
}

// PreviousWeekStart moves the window anchor back 7 days. The anchor is
// whatever date navigation landed on; it is never snapped to a week
// boundary.
func PreviousWeekStart(start time.Time) time.Time {
	return start.AddDate(0, 0, -7)
}

// NextWeekStart moves the window anchor forward 7 days.
func NextWeekStart(start time.Time) time.Time {
	return start.AddDate(0, 0, 7)
}

// IsHighlighted reports whether date falls in the trailing lookback:
// strictly after today-3 and at most today. Month and year boundaries
// play no part; the comparison is on whole days.
func IsHighlighted(date, today time.Time) bool {
	d := Midnight(date)
	t := Midnight(today)
	lower := t.AddDate(0, 0, -highlightDays)
	return d.After(lower) && !d.After(t)
}

// RangeLabel renders the window header: "28 - Apr 3" inside one month,
// "Apr 28 - May 4" when the window spans two.
func RangeLabel(days []Day) string {
	if len(days) < 2 {
		return ""
	}
	first := days[0].Date
	last := days[len(days)-1].Date
	if first.Month() != last.Month() {
		return fmt.Sprintf("%s - %s", first.Format("Jan 2"), last.Format("Jan 2"))
	}
	return fmt.Sprintf("%d - %s", first.Day(), last.Format("Jan 2"))
}

// Widget is the stateful week view: a movable window start plus one
// selected date. now is injectable for tests.
type Widget struct {
	start    time.Time
	selected time.Time
	now      func() time.Time
	onSelect func(time.Time)
}

// NewWidget anchors the window at start with start selected, mirroring
// the app opening on today.
func NewWidget(start time.Time, now func() time.Time) *Widget {
	if now == nil {
		now = time.Now
	}
	return &Widget{start: Midnight(start), selected: Midnight(start), now: now}
}

// OnSelect registers the external listener notified by Select.
func (w *Widget) OnSelect(fn func(time.Time)) { w.onSelect = fn }

func (w *Widget) Start() time.Time    { return w.start }
func (w *Widget) Selected() time.Time { return w.selected }

// Days regenerates the 7-day window from the current anchor.
func (w *Widget) Days() []Day {
	return GenerateWeek(w.start, w.now())
}

func (w *Widget) PreviousWeek() { w.start = PreviousWeekStart(w.start) }
func (w *Widget) NextWeek()     { w.start = NextWeekStart(w.start) }

// Select sets the single selected date and notifies the listener.
func (w *Widget) Select(date time.Time) {
	w.selected = Midnight(date)
	if w.onSelect != nil {
		w.onSelect(w.selected)
	}
}

// IsSelected reports exact calendar-day equality with the selection.
func (w *Widget) IsSelected(date time.Time) bool {
	return SameDay(date, w.selected)
}

// IsHighlighted applies the trailing lookback against the widget clock.
func (w *Widget) IsHighlighted(date time.Time) bool {
	return IsHighlighted(date, w.now())
}

// StateFor classifies a day into exactly one visual state.
func (w *Widget) StateFor(d Day) State {
	switch {
	case w.IsSelected(d.Date):
		return StateSelected
	case d.IsToday:
		return StateToday
	case w.IsHighlighted(d.Date):
		return StateHighlighted
	default:
		return StatePlain
	}
}

// RangeLabel renders the header for the current window.
func (w *Widget) RangeLabel() string {
	return RangeLabel(w.Days())
}
