package dstype

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/hashvalue"
)

var (
	bigMinInt32 = big.NewInt(math.MinInt32)
	bigMaxInt32 = big.NewInt(math.MaxInt32)
	bigMinInt64 = big.NewInt(math.MinInt64)
	bigMaxInt64 = big.NewInt(math.MaxInt64)
)

// asExactInt normalizes any integer kind. ok is false for non-integer
// input. When the value exceeds int64, b is non-nil and i is unused.
func asExactInt(v interface{}) (i int64, b *big.Int, ok bool) {
	switch n := v.(type) {
	case int:
		return int64(n), nil, true
	case int8:
		return int64(n), nil, true
	case int16:
		return int64(n), nil, true
	case int32:
		return int64(n), nil, true
	case int64:
		return n, nil, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, new(big.Int).SetUint64(uint64(n)), true
		}
		return int64(n), nil, true
	case uint8:
		return int64(n), nil, true
	case uint16:
		return int64(n), nil, true
	case uint32:
		return int64(n), nil, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, new(big.Int).SetUint64(n), true
		}
		return int64(n), nil, true
	case *big.Int:
		if n.IsInt64() {
			return n.Int64(), nil, true
		}
		return 0, n, true
	default:
		return 0, nil, false
	}
}

// asFloat normalizes any numeric kind to float64. Magnitudes beyond
// float64 become ±Inf, matching the overflow-clamps policy.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		if i, b, ok := asExactInt(v); ok {
			if b != nil {
				f, _ := new(big.Float).SetInt(b).Float64()
				return f, true
			}
			return float64(i), true
		}
		return 0, false
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareFloat64 is a total order: NaN sorts after everything, two NaNs
// compare equal.
func compareFloat64(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// int32

type int32Codec struct{}

func (int32Codec) Name() Type { return TypeInt32 }

func (c int32Codec) Canon(v interface{}) (interface{}, error) {
	i, b, ok := asExactInt(v)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	// Out-of-range integers clamp to the representable extreme.
	if b != nil {
		if b.Cmp(bigMaxInt32) > 0 {
			return int32(math.MaxInt32), nil
		}
		if b.Cmp(bigMinInt32) < 0 {
			return int32(math.MinInt32), nil
		}
		i = b.Int64()
	}
	if i > math.MaxInt32 {
		return int32(math.MaxInt32), nil
	}
	if i < math.MinInt32 {
		return int32(math.MinInt32), nil
	}
	return int32(i), nil
}

func (int32Codec) Encode(w io.Writer, v interface{}) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v.(int32)))
	return writeFull(w, buf[:])
}

func (int32Codec) Decode(r io.Reader) (interface{}, error) {
	u, err := readU32(r)
	if err != nil {
		return nil, err
	}
	return int32(u), nil
}

func (int32Codec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Int64(int64(v.(int32))), nil
}

func (int32Codec) Ordered() bool { return true }

func (int32Codec) Compare(a, b interface{}) int {
	return compareInt64(int64(a.(int32)), int64(b.(int32)))
}

// int64

type int64Codec struct{}

func (int64Codec) Name() Type { return TypeInt64 }

func (c int64Codec) Canon(v interface{}) (interface{}, error) {
	i, b, ok := asExactInt(v)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	if b != nil {
		if b.Cmp(bigMaxInt64) > 0 {
			return int64(math.MaxInt64), nil
		}
		if b.Cmp(bigMinInt64) < 0 {
			return int64(math.MinInt64), nil
		}
		return b.Int64(), nil
	}
	return i, nil
}

func (int64Codec) Encode(w io.Writer, v interface{}) error {
	return writeU64(w, uint64(v.(int64)))
}

func (int64Codec) Decode(r io.Reader) (interface{}, error) {
	u, err := readU64(r)
	if err != nil {
		return nil, err
	}
	return int64(u), nil
}

func (int64Codec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Int64(v.(int64)), nil
}

func (int64Codec) Ordered() bool { return true }

func (int64Codec) Compare(a, b interface{}) int {
	return compareInt64(a.(int64), b.(int64))
}

// float32

type float32Codec struct{}

func (float32Codec) Name() Type { return TypeFloat32 }

func (c float32Codec) Canon(v interface{}) (interface{}, error) {
	f, ok := asFloat(v)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	// The float64 -> float32 conversion clamps overflow to ±Inf.
	return float32(f), nil
}

func (float32Codec) Encode(w io.Writer, v interface{}) error {
	return writeU32(w, math.Float32bits(v.(float32)))
}

func (float32Codec) Decode(r io.Reader) (interface{}, error) {
	u, err := readU32(r)
	if err != nil {
		return nil, err
	}
	return math.Float32frombits(u), nil
}

func (float32Codec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Float64(float64(v.(float32))), nil
}

func (float32Codec) Ordered() bool { return true }

func (float32Codec) Compare(a, b interface{}) int {
	return compareFloat64(float64(a.(float32)), float64(b.(float32)))
}

// float64

type float64Codec struct{}

func (float64Codec) Name() Type { return TypeFloat64 }

func (c float64Codec) Canon(v interface{}) (interface{}, error) {
	f, ok := asFloat(v)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	return f, nil
}

func (float64Codec) Encode(w io.Writer, v interface{}) error {
	return writeU64(w, math.Float64bits(v.(float64)))
}

func (float64Codec) Decode(r io.Reader) (interface{}, error) {
	u, err := readU64(r)
	if err != nil {
		return nil, err
	}
	return math.Float64frombits(u), nil
}

func (float64Codec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Float64(v.(float64)), nil
}

func (float64Codec) Ordered() bool { return true }

func (float64Codec) Compare(a, b interface{}) int {
	return compareFloat64(a.(float64), b.(float64))
}

// complex64 (32-bit components)

type complex64Codec struct{}

func (complex64Codec) Name() Type { return TypeComplex64 }

func (c complex64Codec) Canon(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case complex64:
		return n, nil
	case complex128:
		return complex64(n), nil
	default:
		if f, ok := asFloat(v); ok {
			return complex64(complex(f, 0)), nil
		}
		return nil, wrongType(c.Name(), v)
	}
}

func (complex64Codec) Encode(w io.Writer, v interface{}) error {
	n := v.(complex64)
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(real(n)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(imag(n)))
	return writeFull(w, buf[:])
}

func (complex64Codec) Decode(r io.Reader) (interface{}, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return nil, err
	}
	re := math.Float32frombits(binary.LittleEndian.Uint32(buf[:4]))
	im := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:]))
	return complex(re, im), nil
}

func (complex64Codec) Hash(v interface{}) (uint64, error) {
	n := v.(complex64)
	return hashvalue.Complex(float64(real(n)), float64(imag(n))), nil
}

func (complex64Codec) Ordered() bool { return false }

func (complex64Codec) Compare(a, b interface{}) int { return 0 }

// complex128 (64-bit components)

type complex128Codec struct{}

func (complex128Codec) Name() Type { return TypeComplex128 }

func (c complex128Codec) Canon(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case complex128:
		return n, nil
	case complex64:
		return complex128(n), nil
	default:
		if f, ok := asFloat(v); ok {
			return complex(f, 0), nil
		}
		return nil, wrongType(c.Name(), v)
	}
}

func (complex128Codec) Encode(w io.Writer, v interface{}) error {
	n := v.(complex128)
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(real(n)))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(imag(n)))
	return writeFull(w, buf[:])
}

func (complex128Codec) Decode(r io.Reader) (interface{}, error) {
	var buf [16]byte
	if err := readFull(r, buf[:]); err != nil {
		return nil, err
	}
	re := math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))
	im := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))
	return complex(re, im), nil
}

func (complex128Codec) Hash(v interface{}) (uint64, error) {
	n := v.(complex128)
	return hashvalue.Complex(real(n), imag(n)), nil
}

func (complex128Codec) Ordered() bool { return false }

func (complex128Codec) Compare(a, b interface{}) int { return 0 }

// bool

type boolCodec struct{}

func (boolCodec) Name() Type { return TypeBool }

func (c boolCodec) Canon(v interface{}) (interface{}, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, wrongType(c.Name(), v)
}

func (boolCodec) Encode(w io.Writer, v interface{}) error {
	b := byte(0)
	if v.(bool) {
		b = 1
	}
	return writeFull(w, []byte{b})
}

func (boolCodec) Decode(r io.Reader) (interface{}, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return nil, err
	}
	switch buf[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return nil, dserrors.Newf(dserrors.ErrorTypeIO, "corrupt bool byte 0x%02x", buf[0])
	}
}

func (boolCodec) Hash(v interface{}) (uint64, error) {
	return hashvalue.Bool(v.(bool)), nil
}

func (boolCodec) Ordered() bool { return true }

func (boolCodec) Compare(a, b interface{}) int {
	av, bv := a.(bool), b.(bool)
	switch {
	case av == bv:
		return 0
	case !av:
		return -1
	default:
		return 1
	}
}
