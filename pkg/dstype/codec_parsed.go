package dstype

import (
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

// parsedCodec wraps a base codec and additionally accepts textual input.
// A string is trimmed of surrounding whitespace and parsed; unparseable
// text is a rejected value (parse error), handled by the caller exactly
// like any other rejection. Non-string input goes to the base codec
// unchanged, so "parsed:int64" behaves as "int64" for integer input.
type parsedCodec struct {
	base Codec
}

func newParsedCodec(base Codec) (Codec, error) {
	if !parseable(base.Name()) {
		return nil, dserrors.Newf(dserrors.ErrorTypeArgument, "type %s has no parsed variant", base.Name())
	}
	return parsedCodec{base: base}, nil
}

func (c parsedCodec) Name() Type {
	return Type(ParsedPrefix + string(c.base.Name()))
}

func (c parsedCodec) Canon(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return c.base.Canon(v)
	}
	parsed, err := parseText(c.base.Name(), strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return c.base.Canon(parsed)
}

func (c parsedCodec) Encode(w io.Writer, v interface{}) error {
	return c.base.Encode(w, v)
}

func (c parsedCodec) Decode(r io.Reader) (interface{}, error) {
	return c.base.Decode(r)
}

func (c parsedCodec) Hash(v interface{}) (uint64, error) {
	return c.base.Hash(v)
}

func (c parsedCodec) Ordered() bool { return c.base.Ordered() }

func (c parsedCodec) Compare(a, b interface{}) int { return c.base.Compare(a, b) }

// parseText parses trimmed text into a value the base codec accepts.
func parseText(t Type, s string) (interface{}, error) {
	switch t {
	case TypeInt32, TypeInt64:
		// Parse through big.Int so out-of-range text still reaches the
		// base codec's clamping instead of failing as unparseable.
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, dserrors.Newf(dserrors.ErrorTypeParse, "unparseable integer %q", s)
		}
		return b, nil
	case TypeFloat32, TypeFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, dserrors.Newf(dserrors.ErrorTypeParse, "unparseable float %q", s)
		}
		return f, nil
	case TypeComplex64, TypeComplex128:
		n, err := strconv.ParseComplex(s, 128)
		if err != nil {
			return nil, dserrors.Newf(dserrors.ErrorTypeParse, "unparseable complex %q", s)
		}
		return n, nil
	case TypeNumber:
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, dserrors.Newf(dserrors.ErrorTypeParse, "unparseable number %q", s)
		}
		return f, nil
	case TypeDate:
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		return d, nil
	case TypeTime:
		v, err := ParseTimeOfDay(s)
		if err != nil {
			return nil, err
		}
		return v, nil
	case TypeDateTime:
		v, err := ParseDateTime(s)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, dserrors.Newf(dserrors.ErrorTypeInternal, "parseText for %s", t)
	}
}
