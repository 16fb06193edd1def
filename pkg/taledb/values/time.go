package values

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/taledb/taledb-go/pkg/taledb/errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout string = "2006-01-02"

// Timestamp is an instant in time, carried on the wire as an ISO 8601
// string with an explicit UTC designator.
type Timestamp struct {
	value string
}

// TimestampFromTime converts t to its full precision UTC wire form.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{value: t.UTC().Format(time.RFC3339Nano)}
}

// TimestampFromString stores s verbatim. Only UTC instants are accepted:
// s must end with the Z designator, offset timezones are rejected.
func TimestampFromString(s string) (Timestamp, error) {
	if !strings.HasSuffix(s, "Z") {
		return Timestamp{}, errors.NewInvalidValueError(
			"timestamp " + s + " is not UTC (Z is the only allowed timezone designator)",
		)
	}

	return Timestamp{value: s}, nil
}

func (t Timestamp) Value() string {
	return t.value
}

// Time parses the timestamp back into a time.Time. The wire format may
// carry more fractional digits than time.Time can hold, in which case the
// precision beyond nanoseconds is lost; callers must not rely on a
// round trip through Time being lossless.
func (t Timestamp) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, t.value)
}

func (t Timestamp) Tag() string {
	return TagTime
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{TagTime: t.value})
}

// Date is a calendar date with no time of day or timezone component.
type Date struct {
	value string
}

// DateFromTime truncates t to its UTC calendar date.
func DateFromTime(t time.Time) Date {
	return Date{value: t.UTC().Format(DateLayout)}
}

// DateFromString stores s verbatim. The format is not validated; dates are
// trusted from the caller just like ref segments.
func DateFromString(s string) Date {
	return Date{value: s}
}

func (d Date) Value() string {
	return d.value
}

// Time returns midnight UTC of the calendar day.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, d.value)
}

func (d Date) Tag() string {
	return TagDate
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{TagDate: d.value})
}
