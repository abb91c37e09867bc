// Package calendar implements the month grid, the admin filter registry,
// and the event aggregation behind the calendar views. Everything here is a
// pure function over values the caller owns.
package calendar

import (
	"strconv"
	"time"
)

// DayNames are Monday-first weekday labels.
var DayNames = []string{"Man", "Tir", "Ons", "Tor", "Fre", "Lør", "Søn"}

// MonthNames are indexed by zero-based month.
var MonthNames = []string{
	"januar", "februar", "mars", "april", "mai", "juni",
	"juli", "august", "september", "oktober", "november", "desember",
}

// Week is one grid row of seven day cells. A cell holds the day number, or
// 0 for leading/trailing padding.
type Week [7]int

// Norm rolls an out-of-range zero-based month into the matching year, so
// (2024, 12) becomes (2025, 0) and (2024, -1) becomes (2023, 11).
func Norm(year, month int) (int, int) {
	t := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month()) - 1
}

// DaysIn returns the number of days in the given zero-based month.
func DaysIn(year, month int) int {
	year, month = Norm(year, month)
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// MonthGrid returns the weeks of a month with Monday-first padding: leading
// cells cover the weekdays before day 1, trailing cells complete the final
// week to seven.
func MonthGrid(year, month int) []Week {
	year, month = Norm(year, month)

	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	lead := mondayIndex(first.Weekday())
	total := lead + daysInMonth
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	weeks := make([]Week, 0, total/7)
	var week Week
	for cell := 0; cell < total; cell++ {
		day := cell - lead + 1
		if day < 1 || day > daysInMonth {
			day = 0
		}
		week[cell%7] = day
		if cell%7 == 6 {
			weeks = append(weeks, week)
			week = Week{}
		}
	}
	return weeks
}

// Title returns the month header, e.g. "mai 2024".
func Title(year, month int) string {
	year, month = Norm(year, month)
	return MonthNames[month] + " " + strconv.Itoa(year)
}

// mondayIndex remaps Go's Sunday=0 weekday convention to Monday=0..Sunday=6.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
