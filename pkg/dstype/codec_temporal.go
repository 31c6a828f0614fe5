package dstype

import (
	"io"
	"time"

	"github.com/exaxorg/accelerator-sub001/pkg/hashvalue"
)

// date

type dateCodec struct{}

func (dateCodec) Name() Type { return TypeDate }

func (c dateCodec) Canon(v interface{}) (interface{}, error) {
	switch d := v.(type) {
	case Date:
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return d, nil
	case time.Time:
		return DateFromTime(d), nil
	default:
		return nil, wrongType(c.Name(), v)
	}
}

func (dateCodec) Encode(w io.Writer, v interface{}) error {
	return writeU32(w, v.(Date).Packed())
}

func (dateCodec) Decode(r io.Reader) (interface{}, error) {
	p, err := readU32(r)
	if err != nil {
		return nil, err
	}
	return DateFromPacked(p), nil
}

func (dateCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Date(v.(Date).Packed()), nil
}

func (dateCodec) Ordered() bool { return true }

func (dateCodec) Compare(a, b interface{}) int {
	return a.(Date).Compare(b.(Date))
}

// time

type timeCodec struct{}

func (timeCodec) Name() Type { return TypeTime }

func (c timeCodec) Canon(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case TimeOfDay:
		if err := t.Validate(); err != nil {
			return nil, err
		}
		return t, nil
	case time.Time:
		return TimeOfDay{
			Hour:        t.Hour(),
			Minute:      t.Minute(),
			Second:      t.Second(),
			Microsecond: t.Nanosecond() / 1000,
		}, nil
	default:
		return nil, wrongType(c.Name(), v)
	}
}

func (timeCodec) Encode(w io.Writer, v interface{}) error {
	return writeU64(w, v.(TimeOfDay).Packed())
}

func (timeCodec) Decode(r io.Reader) (interface{}, error) {
	p, err := readU64(r)
	if err != nil {
		return nil, err
	}
	return TimeOfDayFromPacked(p), nil
}

func (timeCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Time(v.(TimeOfDay).Packed()), nil
}

func (timeCodec) Ordered() bool { return true }

func (timeCodec) Compare(a, b interface{}) int {
	return a.(TimeOfDay).Compare(b.(TimeOfDay))
}

// datetime

type datetimeCodec struct{}

func (datetimeCodec) Name() Type { return TypeDateTime }

func (c datetimeCodec) Canon(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case DateTime:
		if err := t.Validate(); err != nil {
			return nil, err
		}
		return t, nil
	case time.Time:
		return DateTimeFromTime(t), nil
	default:
		return nil, wrongType(c.Name(), v)
	}
}

func (datetimeCodec) Encode(w io.Writer, v interface{}) error {
	return writeU64(w, v.(DateTime).Packed())
}

func (datetimeCodec) Decode(r io.Reader) (interface{}, error) {
	p, err := readU64(r)
	if err != nil {
		return nil, err
	}
	return DateTimeFromPacked(p), nil
}

func (datetimeCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.DateTime(v.(DateTime).Packed()), nil
}

func (datetimeCodec) Ordered() bool { return true }

func (datetimeCodec) Compare(a, b interface{}) int {
	return a.(DateTime).Compare(b.(DateTime))
}
