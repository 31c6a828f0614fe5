// Package dstype defines the logical value types of the column codec and
// one codec per type. A codec validates, encodes, decodes, hashes and
// compares values of its type; the set of types is closed and a codec is
// selected once, at writer/reader construction.
package dstype

import (
	"fmt"
	"time"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

// Date is a calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// TimeOfDay is a wall-clock time with microsecond precision. Fold
// disambiguates the two local times that map to the same wall-clock
// reading during a DST transition.
type TimeOfDay struct {
	Hour        int
	Minute      int
	Second      int
	Microsecond int
	Fold        uint8
}

// DateTime is a calendar date combined with a wall-clock time.
type DateTime struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	Microsecond int
	Fold        uint8
}

// Packed date layout (u32): day 5 bits, month 4 bits, year 14 bits.
const (
	dateDayBits   = 5
	dateMonthBits = 4
)

// Packed time layout (u64): microsecond 20 bits, second 6, minute 6,
// hour 5, fold 1. DateTime extends it with day 5, month 4, year 14.
const (
	timeUsecBits   = 20
	timeSecondBits = 6
	timeMinuteBits = 6
	timeHourBits   = 5
)

func (d Date) Validate() error {
	if d.Year < 1 || d.Year > 9999 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "year %d out of range 1..9999", d.Year)
	}
	if d.Month < 1 || d.Month > 12 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "month %d out of range 1..12", d.Month)
	}
	if d.Day < 1 || d.Day > 31 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "day %d out of range 1..31", d.Day)
	}
	// Reject non-existent calendar dates (e.g. Feb 30).
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return dserrors.Newf(dserrors.ErrorTypeValue, "no such date %04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return nil
}

// Packed returns the canonical packed form written to disk.
func (d Date) Packed() uint32 {
	return uint32(d.Year)<<(dateDayBits+dateMonthBits) |
		uint32(d.Month)<<dateDayBits |
		uint32(d.Day)
}

// DateFromPacked is the inverse of Packed.
func DateFromPacked(p uint32) Date {
	return Date{
		Year:  int(p >> (dateDayBits + dateMonthBits)),
		Month: int(p >> dateDayBits & (1<<dateMonthBits - 1)),
		Day:   int(p & (1<<dateDayBits - 1)),
	}
}

// Compare orders dates chronologically.
func (d Date) Compare(o Date) int {
	switch {
	case d.Packed() < o.Packed():
		return -1
	case d.Packed() > o.Packed():
		return 1
	default:
		return 0
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DateFromTime extracts the date part of a time.Time.
func DateFromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, dserrors.Wrap(err, dserrors.ErrorTypeParse, "unparseable date")
	}
	return DateFromTime(t), nil
}

func (v TimeOfDay) Validate() error {
	if v.Hour < 0 || v.Hour > 23 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "hour %d out of range", v.Hour)
	}
	if v.Minute < 0 || v.Minute > 59 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "minute %d out of range", v.Minute)
	}
	if v.Second < 0 || v.Second > 59 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "second %d out of range", v.Second)
	}
	if v.Microsecond < 0 || v.Microsecond > 999999 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "microsecond %d out of range", v.Microsecond)
	}
	if v.Fold > 1 {
		return dserrors.Newf(dserrors.ErrorTypeValue, "fold %d out of range 0..1", v.Fold)
	}
	return nil
}

// Packed returns the canonical packed form written to disk. The fold bit
// occupies the top of the used range and round-trips exactly.
func (v TimeOfDay) Packed() uint64 {
	return uint64(v.Fold)<<(timeUsecBits+timeSecondBits+timeMinuteBits+timeHourBits) |
		uint64(v.Hour)<<(timeUsecBits+timeSecondBits+timeMinuteBits) |
		uint64(v.Minute)<<(timeUsecBits+timeSecondBits) |
		uint64(v.Second)<<timeUsecBits |
		uint64(v.Microsecond)
}

// TimeOfDayFromPacked is the inverse of Packed.
func TimeOfDayFromPacked(p uint64) TimeOfDay {
	return TimeOfDay{
		Microsecond: int(p & (1<<timeUsecBits - 1)),
		Second:      int(p >> timeUsecBits & (1<<timeSecondBits - 1)),
		Minute:      int(p >> (timeUsecBits + timeSecondBits) & (1<<timeMinuteBits - 1)),
		Hour:        int(p >> (timeUsecBits + timeSecondBits + timeMinuteBits) & (1<<timeHourBits - 1)),
		Fold:        uint8(p >> (timeUsecBits + timeSecondBits + timeMinuteBits + timeHourBits) & 1),
	}
}

// Compare orders by wall-clock reading first, fold last, so the two
// instants of a DST transition sort adjacently.
func (v TimeOfDay) Compare(o TimeOfDay) int {
	a := v.Packed() &^ (uint64(1) << (timeUsecBits + timeSecondBits + timeMinuteBits + timeHourBits))
	b := o.Packed() &^ (uint64(1) << (timeUsecBits + timeSecondBits + timeMinuteBits + timeHourBits))
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case v.Fold < o.Fold:
		return -1
	case v.Fold > o.Fold:
		return 1
	default:
		return 0
	}
}

func (v TimeOfDay) String() string {
	if v.Microsecond != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", v.Hour, v.Minute, v.Second, v.Microsecond)
	}
	return fmt.Sprintf("%02d:%02d:%02d", v.Hour, v.Minute, v.Second)
}

// ParseTimeOfDay parses "HH:MM:SS" with an optional fractional second.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOfDay{}, dserrors.Wrap(err, dserrors.ErrorTypeParse, "unparseable time")
	}
	return TimeOfDay{
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Microsecond: t.Nanosecond() / 1000,
	}, nil
}

func (v DateTime) Validate() error {
	if err := (Date{Year: v.Year, Month: v.Month, Day: v.Day}).Validate(); err != nil {
		return err
	}
	return TimeOfDay{
		Hour: v.Hour, Minute: v.Minute, Second: v.Second,
		Microsecond: v.Microsecond, Fold: v.Fold,
	}.Validate()
}

// Packed returns the canonical packed form written to disk.
func (v DateTime) Packed() uint64 {
	const timeBits = timeUsecBits + timeSecondBits + timeMinuteBits + timeHourBits
	return uint64(v.Fold)<<(timeBits+dateDayBits+dateMonthBits+14) |
		uint64(v.Year)<<(timeBits+dateDayBits+dateMonthBits) |
		uint64(v.Month)<<(timeBits+dateDayBits) |
		uint64(v.Day)<<timeBits |
		uint64(v.Hour)<<(timeUsecBits+timeSecondBits+timeMinuteBits) |
		uint64(v.Minute)<<(timeUsecBits+timeSecondBits) |
		uint64(v.Second)<<timeUsecBits |
		uint64(v.Microsecond)
}

// DateTimeFromPacked is the inverse of Packed.
func DateTimeFromPacked(p uint64) DateTime {
	const timeBits = timeUsecBits + timeSecondBits + timeMinuteBits + timeHourBits
	return DateTime{
		Microsecond: int(p & (1<<timeUsecBits - 1)),
		Second:      int(p >> timeUsecBits & (1<<timeSecondBits - 1)),
		Minute:      int(p >> (timeUsecBits + timeSecondBits) & (1<<timeMinuteBits - 1)),
		Hour:        int(p >> (timeUsecBits + timeSecondBits + timeMinuteBits) & (1<<timeHourBits - 1)),
		Day:         int(p >> timeBits & (1<<dateDayBits - 1)),
		Month:       int(p >> (timeBits + dateDayBits) & (1<<dateMonthBits - 1)),
		Year:        int(p >> (timeBits + dateDayBits + dateMonthBits) & (1<<14 - 1)),
		Fold:        uint8(p >> (timeBits + dateDayBits + dateMonthBits + 14) & 1),
	}
}

// Compare orders chronologically by wall-clock reading, fold last.
func (v DateTime) Compare(o DateTime) int {
	const foldShift = timeUsecBits + timeSecondBits + timeMinuteBits + timeHourBits + dateDayBits + dateMonthBits + 14
	a := v.Packed() &^ (uint64(1) << foldShift)
	b := o.Packed() &^ (uint64(1) << foldShift)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case v.Fold < o.Fold:
		return -1
	case v.Fold > o.Fold:
		return 1
	default:
		return 0
	}
}

func (v DateTime) String() string {
	d := Date{Year: v.Year, Month: v.Month, Day: v.Day}
	t := TimeOfDay{Hour: v.Hour, Minute: v.Minute, Second: v.Second, Microsecond: v.Microsecond}
	return d.String() + " " + t.String()
}

// DateTimeFromTime converts a time.Time, dropping sub-microsecond
// precision. time.Time has no fold notion; Fold is 0.
func DateTimeFromTime(t time.Time) DateTime {
	return DateTime{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Microsecond: t.Nanosecond() / 1000,
	}
}

// ParseDateTime parses "YYYY-MM-DD HH:MM:SS" or the T-separated form,
// with an optional fractional second.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTimeFromTime(t), nil
		}
	}
	return DateTime{}, dserrors.Newf(dserrors.ErrorTypeParse, "unparseable datetime %q", s)
}
