// Package slackts decodes the platform's decimal "seconds.fraction" message
// timestamps into full precision instants and back.
//
// The decoded instant is the uniqueness key for stored messages, so decoding
// never goes through a float: the same wire value always yields the same
// instant, down to the nanosecond.
package slackts

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxSeconds keeps UnixNano representable in an int64.
const maxSeconds = 9_223_372_035

// ErrInvalid is returned for wire values that are not a decimal seconds string.
var ErrInvalid = errors.New("invalid timestamp")

// Timestamp is a platform message timestamp decoded to a UTC instant.
type Timestamp struct {
	time.Time
}

// Parse decodes a wire timestamp such as "1512085950.000216".
func Parse(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, fmt.Errorf("%w: empty value", ErrInvalid)
	}

	secPart, fracPart, hasFrac := strings.Cut(s, ".")
	if !isDigits(secPart) || (hasFrac && !isDigits(fracPart)) {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if len(fracPart) > 9 {
		return Timestamp{}, fmt.Errorf("%w: %q has more than nanosecond precision", ErrInvalid, s)
	}

	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil || sec > maxSeconds {
		return Timestamp{}, fmt.Errorf("%w: %q is out of range", ErrInvalid, s)
	}

	var nsec int64
	if fracPart != "" {
		nsec, err = strconv.ParseInt(fracPart+strings.Repeat("0", 9-len(fracPart)), 10, 64)
		if err != nil {
			return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
	}

	return Timestamp{time.Unix(sec, nsec).UTC()}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Timestamp {
	ts, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// FromUnixNano builds a Timestamp from nanoseconds since the epoch.
func FromUnixNano(n int64) Timestamp {
	return Timestamp{time.Unix(0, n).UTC()}
}

// String renders the wire form. Microsecond precision values use six
// fractional digits, as the platform does; finer values use nine.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	nsec := t.Nanosecond()
	if nsec%1000 == 0 {
		return fmt.Sprintf("%d.%06d", t.Unix(), nsec/1000)
	}
	return fmt.Sprintf("%d.%09d", t.Unix(), nsec)
}

// Value stores the instant as nanoseconds since the epoch.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, errors.New("cannot store zero timestamp")
	}
	return t.UnixNano(), nil
}

// Scan reads an instant stored by Value.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
	case int64:
		*t = FromUnixNano(v)
	case []byte:
		return t.scanText(string(v))
	case string:
		return t.scanText(v)
	default:
		return fmt.Errorf("cannot scan %T into slackts.Timestamp", src)
	}
	return nil
}

func (t *Timestamp) scanText(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("cannot scan %q into slackts.Timestamp: %w", s, err)
	}
	*t = FromUnixNano(n)
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
