package app

import (
	"time"
)

// fixed NRW holidays as month/day pairs
var fixedHolidays = []struct {
	Month time.Month
	Day   int
	Name  string
}{
	{time.January, 1, "Neujahr"},
	{time.May, 1, "Tag der Arbeit"},
	{time.October, 3, "Tag der Deutschen Einheit"},
	{time.November, 1, "Allerheiligen"},
	{time.December, 25, "1. Weihnachtstag"},
	{time.December, 26, "2. Weihnachtstag"},
}

// easter-relative NRW holidays as day offsets from Easter Sunday
var easterHolidays = []struct {
	Offset int
	Name   string
}{
	{-2, "Karfreitag"},
	{1, "Ostermontag"},
	{39, "Christi Himmelfahrt"},
	{50, "Pfingstmontag"},
	{60, "Fronleichnam"},
}

// Holidays returns the NRW public holidays of a year, keyed by date.
func Holidays(year int) map[string]string {
	holidays := make(map[string]string, len(fixedHolidays)+len(easterHolidays))

	for _, h := range fixedHolidays {
		// Noon avoids timezone surprises when formatting to YYYY-MM-DD
		d := time.Date(year, h.Month, h.Day, 12, 0, 0, 0, time.UTC)
		holidays[d.Format(DateFormat)] = h.Name
	}

	easter := calculateEaster(year)
	for _, h := range easterHolidays {
		holidays[easter.AddDate(0, 0, h.Offset).Format(DateFormat)] = h.Name
	}

	return holidays
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}
