package schedule

import (
	"fmt"
	"sort"
	"time"

	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/timefmt"
)

type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
	ViewDay   ViewMode = "day"
)

func (m ViewMode) Valid() bool {
	return m == ViewMonth || m == ViewWeek || m == ViewDay
}

// MaxVisiblePerCell is how many bookings a month cell renders directly.
// The rest are summarized as "+N more".
const MaxVisiblePerCell = 3

type DayCell struct {
	Date          string           `json:"date"`
	Day           int              `json:"day"`
	IsToday       bool             `json:"is_today"`
	Bookings      []domain.Booking `json:"-"`
	Visible       []domain.Booking `json:"bookings"`
	Overflow      int              `json:"overflow"`
	OverflowLabel string           `json:"overflow_label,omitempty"`
}

// MonthGrid lists the cells of a month, Sunday first. Cells holds nil for the
// leading blanks before the 1st.
type MonthGrid struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	LeadingBlanks int        `json:"leading_blanks"`
	Cells         []*DayCell `json:"cells"`
	Skipped       []string   `json:"skipped,omitempty"`
}

func (g MonthGrid) Populated() int {
	n := 0
	for _, c := range g.Cells {
		if c != nil {
			n++
		}
	}
	return n
}

type DayHeader struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Day     int    `json:"day"`
	IsToday bool   `json:"is_today"`
}

// HourRow is one hour of a week or day grid. Cells has one entry per day
// column.
type HourRow struct {
	Hour  int                `json:"hour"`
	Label string             `json:"label"`
	Cells [][]domain.Booking `json:"cells"`
}

type HourGrid struct {
	Days    []DayHeader `json:"days"`
	Rows    []HourRow   `json:"rows"`
	Skipped []string    `json:"skipped,omitempty"`
}

type Grid struct {
	View  ViewMode   `json:"view"`
	Month *MonthGrid `json:"month,omitempty"`
	Week  *HourGrid  `json:"week,omitempty"`
	Day   *HourGrid  `json:"day,omitempty"`
}

// Skipped returns the ids of bookings left out because their date or time
// could not be parsed.
func (g Grid) Skipped() []string {
	switch {
	case g.Month != nil:
		return g.Month.Skipped
	case g.Week != nil:
		return g.Week.Skipped
	case g.Day != nil:
		return g.Day.Skipped
	}
	return nil
}

type placedBooking struct {
	booking domain.Booking
	at      time.Time
}

// bookingIndex groups parseable bookings by calendar date, each day ordered
// by time.
type bookingIndex struct {
	byDate  map[string][]placedBooking
	skipped []string
}

func indexBookings(bookings []domain.Booking, loc *time.Location) bookingIndex {
	idx := bookingIndex{byDate: make(map[string][]placedBooking)}
	for _, b := range bookings {
		at, err := timefmt.Combine(b.Date, b.Time, loc)
		if err != nil {
			idx.skipped = append(idx.skipped, b.ID)
			continue
		}
		key := at.Format(timefmt.DateLayout)
		idx.byDate[key] = append(idx.byDate[key], placedBooking{booking: b, at: at})
	}
	for key := range idx.byDate {
		day := idx.byDate[key]
		sort.SliceStable(day, func(i, j int) bool { return day[i].at.Before(day[j].at) })
	}
	return idx
}

func (idx bookingIndex) on(day time.Time) []placedBooking {
	return idx.byDate[day.Format(timefmt.DateLayout)]
}

// Layout dispatches to the month, week or day layout.
func Layout(view ViewMode, ref time.Time, bookings []domain.Booking, now time.Time, loc *time.Location) (Grid, error) {
	switch view {
	case ViewMonth:
		g := LayoutMonth(ref, bookings, now, loc)
		return Grid{View: view, Month: &g}, nil
	case ViewWeek:
		g := LayoutWeek(ref, bookings, now, loc)
		return Grid{View: view, Week: &g}, nil
	case ViewDay:
		g := LayoutDay(ref, bookings, now, loc)
		return Grid{View: view, Day: &g}, nil
	default:
		return Grid{}, fmt.Errorf("%w: %q", ErrInvalidView, view)
	}
}

func LayoutMonth(ref time.Time, bookings []domain.Booking, now time.Time, loc *time.Location) MonthGrid {
	loc = orUTC(loc)
	ref = ref.In(loc)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	blanks := int(first.Weekday())
	idx := indexBookings(bookings, loc)

	g := MonthGrid{
		Year:          first.Year(),
		Month:         first.Month(),
		LeadingBlanks: blanks,
		Cells:         make([]*DayCell, blanks, blanks+daysInMonth),
		Skipped:       idx.skipped,
	}
	for d := 1; d <= daysInMonth; d++ {
		day := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
		placed := idx.on(day)

		cell := &DayCell{
			Date:     day.Format(timefmt.DateLayout),
			Day:      d,
			IsToday:  timefmt.SameDay(day, now, loc),
			Bookings: make([]domain.Booking, 0, len(placed)),
		}
		for _, p := range placed {
			cell.Bookings = append(cell.Bookings, p.booking)
		}
		cell.Visible = cell.Bookings
		if len(cell.Bookings) > MaxVisiblePerCell {
			cell.Visible = cell.Bookings[:MaxVisiblePerCell]
			cell.Overflow = len(cell.Bookings) - MaxVisiblePerCell
			cell.OverflowLabel = fmt.Sprintf("+%d more", cell.Overflow)
		}
		g.Cells = append(g.Cells, cell)
	}
	return g
}

// LayoutWeek lays out the Sunday-start week containing ref.
func LayoutWeek(ref time.Time, bookings []domain.Booking, now time.Time, loc *time.Location) HourGrid {
	loc = orUTC(loc)
	ref = ref.In(loc)
	start := time.Date(ref.Year(), ref.Month(), ref.Day()-int(ref.Weekday()), 0, 0, 0, 0, loc)

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return layoutHours(days, bookings, now, loc)
}

func LayoutDay(ref time.Time, bookings []domain.Booking, now time.Time, loc *time.Location) HourGrid {
	loc = orUTC(loc)
	ref = ref.In(loc)
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	return layoutHours([]time.Time{day}, bookings, now, loc)
}

// layoutHours places bookings by the hour of their time; minutes are ignored.
func layoutHours(days []time.Time, bookings []domain.Booking, now time.Time, loc *time.Location) HourGrid {
	idx := indexBookings(bookings, loc)
	g := HourGrid{
		Days:    make([]DayHeader, 0, len(days)),
		Rows:    make([]HourRow, 24),
		Skipped: idx.skipped,
	}

	for _, day := range days {
		g.Days = append(g.Days, DayHeader{
			Date:    day.Format(timefmt.DateLayout),
			Weekday: day.Format("Mon"),
			Day:     day.Day(),
			IsToday: timefmt.SameDay(day, now, loc),
		})
	}

	for hour := range g.Rows {
		g.Rows[hour] = HourRow{
			Hour:  hour,
			Label: timefmt.To12Hour(fmt.Sprintf("%02d:00", hour)),
			Cells: make([][]domain.Booking, len(days)),
		}
		for col := range days {
			g.Rows[hour].Cells[col] = []domain.Booking{}
		}
	}

	for col, day := range days {
		for _, p := range idx.on(day) {
			row := &g.Rows[p.at.Hour()]
			row.Cells[col] = append(row.Cells[col], p.booking)
		}
	}
	return g
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
