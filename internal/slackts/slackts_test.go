package slackts_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edgard/slackchat/internal/slackts"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantSec  int64
		wantNsec int
	}{
		{name: "platform microseconds", input: "1512085950.000216", wantSec: 1512085950, wantNsec: 216000},
		{name: "no fraction", input: "1512085950", wantSec: 1512085950, wantNsec: 0},
		{name: "short fraction", input: "1512085950.5", wantSec: 1512085950, wantNsec: 500000000},
		{name: "nanoseconds", input: "1512085950.000000001", wantSec: 1512085950, wantNsec: 1},
		{name: "surrounding whitespace", input: " 1.000001 ", wantSec: 1, wantNsec: 1000},
		{name: "epoch", input: "0.000000", wantSec: 0, wantNsec: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts, err := slackts.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if ts.Unix() != tt.wantSec || ts.Nanosecond() != tt.wantNsec {
				t.Errorf("Parse(%q) = %d.%09d, want %d.%09d", tt.input, ts.Unix(), ts.Nanosecond(), tt.wantSec, tt.wantNsec)
			}
			if ts.Location() != time.UTC {
				t.Errorf("Parse(%q) location = %v, want UTC", tt.input, ts.Location())
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"abc",
		"-1.000000",
		"1512085950.",
		".000216",
		"1512085950.00021a",
		"1.0000000001",
		"1e9",
		"99999999999999999999.1",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			if _, err := slackts.Parse(input); !errors.Is(err, slackts.ErrInvalid) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalid", input, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, wire := range []string{"1512085950.000216", "1700000000.123456", "1.000000", "1512085950.000000001"} {
		ts := slackts.MustParse(wire)
		if got := ts.String(); got != wire {
			t.Errorf("String() = %q, want %q", got, wire)
		}
		again := slackts.MustParse(ts.String())
		if !again.Equal(ts.Time) {
			t.Errorf("re-parse of %q = %v, want %v", wire, again, ts)
		}
	}
}

func TestSameWireValueSameInstant(t *testing.T) {
	t.Parallel()

	a := slackts.MustParse("1512085950.000216")
	b := slackts.MustParse("1512085950.000216")
	if a != b {
		t.Errorf("identical wire values decoded to %v and %v", a, b)
	}

	// float64 cannot tell these apart; the codec must.
	c := slackts.MustParse("1512085950.000217")
	if a.Equal(c.Time) {
		t.Errorf("neighbouring microseconds decoded to the same instant %v", a)
	}
}

func TestValueScan(t *testing.T) {
	t.Parallel()

	ts := slackts.MustParse("1512085950.000216")
	v, err := ts.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var fromInt slackts.Timestamp
	if err := fromInt.Scan(v); err != nil {
		t.Fatalf("Scan(int64) error = %v", err)
	}
	if fromInt != ts {
		t.Errorf("Scan(int64) = %v, want %v", fromInt, ts)
	}

	var fromBytes slackts.Timestamp
	if err := fromBytes.Scan([]byte("1512085950000216000")); err != nil {
		t.Fatalf("Scan([]byte) error = %v", err)
	}
	if fromBytes != ts {
		t.Errorf("Scan([]byte) = %v, want %v", fromBytes, ts)
	}

	if _, err := (slackts.Timestamp{}).Value(); err == nil {
		t.Error("Value() on zero timestamp succeeded, want error")
	}

	var bad slackts.Timestamp
	if err := bad.Scan(1.5); err == nil {
		t.Error("Scan(float64) succeeded, want error")
	}
}
