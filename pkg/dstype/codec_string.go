package dstype

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/hashvalue"
)

// String family wire format: u32 length + raw bytes. Text types store
// UTF-8.

func encodeBlob(w io.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}
	return writeFull(w, b)
}

func decodeBlob(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if err := readFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// bytes

type bytesCodec struct{}

func (bytesCodec) Name() Type { return TypeBytes }

func (c bytesCodec) Canon(v interface{}) (interface{}, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	// Copy so later caller mutation cannot leak into min/max state.
	return append([]byte(nil), b...), nil
}

func (bytesCodec) Encode(w io.Writer, v interface{}) error {
	return encodeBlob(w, v.([]byte))
}

func (bytesCodec) Decode(r io.Reader) (interface{}, error) {
	return decodeBlob(r)
}

func (bytesCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Bytes(v.([]byte)), nil
}

func (bytesCodec) Ordered() bool { return true }

func (bytesCodec) Compare(a, b interface{}) int {
	return bytes.Compare(a.([]byte), b.([]byte))
}

// ascii

type asciiCodec struct{}

func (asciiCodec) Name() Type { return TypeASCII }

func (c asciiCodec) Canon(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return nil, dserrors.Newf(dserrors.ErrorTypeValue, "non-ASCII byte 0x%02x at position %d", s[i], i)
		}
	}
	return s, nil
}

func (asciiCodec) Encode(w io.Writer, v interface{}) error {
	return encodeBlob(w, []byte(v.(string)))
}

func (asciiCodec) Decode(r io.Reader) (interface{}, error) {
	b, err := decodeBlob(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (asciiCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.ASCII(v.(string))
}

func (asciiCodec) Ordered() bool { return true }

func (asciiCodec) Compare(a, b interface{}) int {
	return strings.Compare(a.(string), b.(string))
}

// unicode

type unicodeCodec struct{}

func (unicodeCodec) Name() Type { return TypeUnicode }

func (c unicodeCodec) Canon(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	if !utf8.ValidString(s) {
		return nil, dserrors.New(dserrors.ErrorTypeValue, "invalid UTF-8 in text value")
	}
	return s, nil
}

func (unicodeCodec) Encode(w io.Writer, v interface{}) error {
	return encodeBlob(w, []byte(v.(string)))
}

func (unicodeCodec) Decode(r io.Reader) (interface{}, error) {
	b, err := decodeBlob(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (unicodeCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Text(v.(string)), nil
}

func (unicodeCodec) Ordered() bool { return true }

func (unicodeCodec) Compare(a, b interface{}) int {
	return strings.Compare(a.(string), b.(string))
}
