package app

import (
	"fmt"
	"time"
)

// NavState is the month-navigation cursor plus the currently selected date.
// It is a plain value passed into and returned from each transition, so it
// carries no hidden session state and is trivially testable.
type NavState struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Selected string     `json:"selected"`
}

// DefaultNav returns the cursor for now's month with today selected.
func DefaultNav(now time.Time) NavState {
	return NavState{
		Year:     now.Year(),
		Month:    now.Month(),
		Selected: now.Format(DateFormat),
	}
}

// PrevMonth moves the cursor one month back, wrapping the year at January.
func (n NavState) PrevMonth() NavState {
	n.Month--
	if n.Month < time.January {
		n.Month = time.December
		n.Year--
	}
	return n
}

// NextMonth moves the cursor one month forward, wrapping the year at December.
func (n NavState) NextMonth() NavState {
	n.Month++
	if n.Month > time.December {
		n.Month = time.January
		n.Year++
	}
	return n
}

// Select sets the selected date. The date must be a canonical YYYY-MM-DD
// string within [MinDate, MaxDate]; otherwise the state is returned
// unchanged together with an error.
func (n NavState) Select(date string) (NavState, error) {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return n, fmt.Errorf("invalid date %q: %w", date, err)
	}
	// Canonical zero-padded keys compare correctly as strings.
	if date < MinDate || date > MaxDate {
		return n, fmt.Errorf("date %s outside [%s, %s]", date, MinDate, MaxDate)
	}
	n.Selected = date
	return n, nil
}

// DayCell is one day in the rendered month grid.
type DayCell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"inMonth"`
	Today   bool   `json:"today"`
	Events  int    `json:"events"`
	Holiday string `json:"holiday,omitempty"`
}

// MonthView is the full grid for one displayed month: complete weeks from
// Sunday to Saturday, padded with the neighbouring months' days.
type MonthView struct {
	Year  int         `json:"year"`
	Month time.Month  `json:"month"`
	Label string      `json:"label"`
	Weeks [][]DayCell `json:"weeks"`
}

// MonthGrid builds the week-row grid for a month, annotating each day with
// its event count from doc, public holidays and the today marker.
func MonthGrid(year int, month time.Month, doc Document, now time.Time) MonthView {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	holidays := Holidays(year)
	today := now.Format(DateFormat)

	// Back up to the Sunday on or before the 1st.
	cursor := first.AddDate(0, 0, -int(first.Weekday()))

	view := MonthView{
		Year:  year,
		Month: month,
		Label: fmt.Sprintf("%s %d", month, year),
	}

	for !cursor.After(last) {
		week := make([]DayCell, 0, 7)
		for i := 0; i < 7; i++ {
			date := cursor.Format(DateFormat)
			week = append(week, DayCell{
				Date:    date,
				Day:     cursor.Day(),
				InMonth: cursor.Month() == month && cursor.Year() == year,
				Today:   date == today,
				Events:  len(doc.List(date)),
				Holiday: holidays[date],
			})
			cursor = cursor.AddDate(0, 0, 1)
		}
		view.Weeks = append(view.Weeks, week)
	}

	return view
}
