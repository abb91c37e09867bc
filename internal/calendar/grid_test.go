package calendar

import "testing"

func TestMonthGridMay2024(t *testing.T) {
	// May 1, 2024 is a Wednesday, so the first row has two padding cells.
	weeks := MonthGrid(2024, 4)
	if len(weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(weeks))
	}
	want := Week{0, 0, 1, 2, 3, 4, 5}
	if weeks[0] != want {
		t.Fatalf("first week = %v, want %v", weeks[0], want)
	}
	last := weeks[len(weeks)-1]
	if last[4] != 31 {
		t.Fatalf("expected day 31 in the Friday slot, got %v", last)
	}
	if last[5] != 0 || last[6] != 0 {
		t.Fatalf("expected trailing padding after day 31, got %v", last)
	}
}

func TestMonthGridLeapFebruary(t *testing.T) {
	// February 2024 starts on a Thursday and has 29 days.
	weeks := MonthGrid(2024, 1)
	if len(weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(weeks))
	}
	want := Week{0, 0, 0, 1, 2, 3, 4}
	if weeks[0] != want {
		t.Fatalf("first week = %v, want %v", weeks[0], want)
	}
	if weeks[4][3] != 29 {
		t.Fatalf("expected Feb 29 in the Thursday slot, got %v", weeks[4])
	}
}

func TestMonthGridSundayStart(t *testing.T) {
	// March 2026 starts on a Sunday, the worst case for Monday-first
	// padding: six leading cells.
	weeks := MonthGrid(2026, 2)
	if len(weeks) != 6 {
		t.Fatalf("expected 6 weeks, got %d", len(weeks))
	}
	want := Week{0, 0, 0, 0, 0, 0, 1}
	if weeks[0] != want {
		t.Fatalf("first week = %v, want %v", weeks[0], want)
	}
}

func TestMonthGridMondayStart(t *testing.T) {
	// September 2025 starts on a Monday: no leading padding at all.
	weeks := MonthGrid(2025, 8)
	if weeks[0][0] != 1 {
		t.Fatalf("expected day 1 in the Monday slot, got %v", weeks[0])
	}
}

func TestMonthGridRollover(t *testing.T) {
	decNext := MonthGrid(2024, 12)
	jan := MonthGrid(2025, 0)
	if len(decNext) != len(jan) {
		t.Fatalf("rollover grid length mismatch: %d vs %d", len(decNext), len(jan))
	}
	for i := range jan {
		if decNext[i] != jan[i] {
			t.Fatalf("week %d: rollover %v != direct %v", i, decNext[i], jan[i])
		}
	}

	if y, m := Norm(2024, -1); y != 2023 || m != 11 {
		t.Fatalf("Norm(2024, -1) = (%d, %d), want (2023, 11)", y, m)
	}
}

func TestMonthGridShape(t *testing.T) {
	for year := 2020; year <= 2030; year++ {
		for month := 0; month < 12; month++ {
			weeks := MonthGrid(year, month)
			days := DaysIn(year, month)

			next := 1
			for wi, week := range weeks {
				for ci, cell := range week {
					if cell == 0 {
						continue
					}
					if cell != next {
						t.Fatalf("%d-%02d week %d cell %d: got %d, want %d",
							year, month, wi, ci, cell, next)
					}
					next++
				}
			}
			if next != days+1 {
				t.Fatalf("%d-%02d: grid covers %d days, month has %d",
					year, month, next-1, days)
			}
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title(2024, 4); got != "mai 2024" {
		t.Fatalf("Title(2024, 4) = %q", got)
	}
	if got := Title(2024, 12); got != "januar 2025" {
		t.Fatalf("Title(2024, 12) = %q", got)
	}
}
