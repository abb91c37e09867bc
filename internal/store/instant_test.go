package store

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstantLayouts(t *testing.T) {
	want := time.Date(2024, time.May, 10, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		raw  string
	}{
		{"rfc3339", "2024-05-10T14:30:00Z"},
		{"rfc3339 offset", "2024-05-10T16:30:00+02:00"},
		{"datetime-local", "2024-05-10T14:30"},
		{"space separated", "2024-05-10 14:30"},
		{"with seconds", "2024-05-10T14:30:00"},
		{"padded", "  2024-05-10T14:30:00Z  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInstant(tc.raw)
			if err != nil {
				t.Fatalf("ParseInstant(%q): %v", tc.raw, err)
			}
			if !got.Equal(want) {
				t.Fatalf("ParseInstant(%q) = %v, want %v", tc.raw, got, want)
			}
		})
	}
}

func TestParseInstantDateOnly(t *testing.T) {
	got, err := ParseInstant("2024-05-10")
	if err != nil {
		t.Fatalf("ParseInstant: %v", err)
	}
	want := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseInstantEpochSeconds(t *testing.T) {
	got, err := ParseInstant("1715351400")
	if err != nil {
		t.Fatalf("ParseInstant: %v", err)
	}
	want := time.Date(2024, time.May, 10, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseInstantMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "neste fredag", "10/05/2024"} {
		if _, err := ParseInstant(raw); !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("ParseInstant(%q) err = %v, want ErrMalformedRecord", raw, err)
		}
	}
}

func TestFormatInstantRoundTrip(t *testing.T) {
	at := time.Date(2024, time.May, 10, 14, 30, 0, 0, time.UTC)
	got, err := ParseInstant(FormatInstant(at))
	if err != nil {
		t.Fatalf("ParseInstant: %v", err)
	}
	if !got.Equal(at) {
		t.Fatalf("round trip lost the instant: %v != %v", got, at)
	}
}
