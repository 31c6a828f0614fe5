package dstype

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

// Type identifies a logical column type. The name is written into the
// column file header.
type Type string

const (
	TypeInt32      Type = "int32"
	TypeInt64      Type = "int64"
	TypeFloat32    Type = "float32"
	TypeFloat64    Type = "float64"
	TypeComplex64  Type = "complex64"
	TypeComplex128 Type = "complex128"
	TypeBool       Type = "bool"
	TypeNumber     Type = "number"
	TypeBytes      Type = "bytes"
	TypeASCII      Type = "ascii"
	TypeUnicode    Type = "unicode"
	TypeDate       Type = "date"
	TypeTime       Type = "time"
	TypeDateTime   Type = "datetime"
)

// ParsedPrefix marks the variants that additionally accept textual input.
const ParsedPrefix = "parsed:"

// Codec encodes, decodes, hashes and compares values of one logical type.
//
// Canon validates a caller-supplied value and normalizes it to the codec's
// canonical Go representation; a failed Canon is a recoverable value error
// (dserrors.IsValueError). Encode and Decode only ever see canonical
// values, so any Encode failure is an I/O failure of the destination.
// Compare is only meaningful when Ordered reports true.
type Codec interface {
	Name() Type
	Canon(v interface{}) (interface{}, error)
	Encode(w io.Writer, v interface{}) error
	Decode(r io.Reader) (interface{}, error)
	Hash(v interface{}) (uint64, error)
	Ordered() bool
	Compare(a, b interface{}) int
}

// Accepts reports whether the codec accepts the value.
func Accepts(c Codec, v interface{}) bool {
	_, err := c.Canon(v)
	return err == nil
}

// New returns the codec for a type name. The set of types is closed;
// unknown names are argument errors.
func New(t Type) (Codec, error) {
	if strings.HasPrefix(string(t), ParsedPrefix) {
		base, err := New(Type(strings.TrimPrefix(string(t), ParsedPrefix)))
		if err != nil {
			return nil, err
		}
		return newParsedCodec(base)
	}

	switch t {
	case TypeInt32:
		return int32Codec{}, nil
	case TypeInt64:
		return int64Codec{}, nil
	case TypeFloat32:
		return float32Codec{}, nil
	case TypeFloat64:
		return float64Codec{}, nil
	case TypeComplex64:
		return complex64Codec{}, nil
	case TypeComplex128:
		return complex128Codec{}, nil
	case TypeBool:
		return boolCodec{}, nil
	case TypeNumber:
		return numberCodec{}, nil
	case TypeBytes:
		return bytesCodec{}, nil
	case TypeASCII:
		return asciiCodec{}, nil
	case TypeUnicode:
		return unicodeCodec{}, nil
	case TypeDate:
		return dateCodec{}, nil
	case TypeTime:
		return timeCodec{}, nil
	case TypeDateTime:
		return datetimeCodec{}, nil
	default:
		return nil, dserrors.Newf(dserrors.ErrorTypeArgument, "unknown type %q", t)
	}
}

// Types lists every supported type name, parsed variants included.
func Types() []Type {
	base := []Type{
		TypeInt32, TypeInt64, TypeFloat32, TypeFloat64,
		TypeComplex64, TypeComplex128, TypeBool, TypeNumber,
		TypeBytes, TypeASCII, TypeUnicode,
		TypeDate, TypeTime, TypeDateTime,
	}
	all := make([]Type, 0, len(base)+10)
	all = append(all, base...)
	for _, t := range base {
		if parseable(t) {
			all = append(all, Type(ParsedPrefix+string(t)))
		}
	}
	return all
}

func parseable(t Type) bool {
	switch t {
	case TypeInt32, TypeInt64, TypeFloat32, TypeFloat64,
		TypeComplex64, TypeComplex128, TypeNumber,
		TypeDate, TypeTime, TypeDateTime:
		return true
	default:
		return false
	}
}

func wrongType(t Type, v interface{}) error {
	return dserrors.Newf(dserrors.ErrorTypeValue, "type %s does not accept %T", t, v)
}

func writeFull(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "write failed")
	}
	return nil
}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			return err
		}
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "read failed")
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return writeFull(w, buf[:])
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return writeFull(w, buf[:])
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
