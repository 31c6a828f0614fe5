// Package hashvalue provides the canonical 64-bit value hash used for slice
// partitioning. The same logical value always hashes to the same result, on
// the write path and the read path, across process runs.
//
// Rules:
//   - All falsy values (None, "", b"", 0, 0.0, False) hash to 0.
//   - Numerically equal values of different numeric types hash identically:
//     the integer 5, the float 5.0 and the arbitrary-precision number 5 all
//     produce the same hash.
//   - Byte strings and text strings are different families and hash
//     differently even when the text's UTF-8 encoding equals the byte
//     string.
//   - ASCII hashing rejects input containing non-ASCII bytes.
//
// Implementation: each family contributes a tag byte, the value is reduced
// to a canonical byte form, and the digest is xxhash over tag+form. Exact
// integers (fixed-width ints, integral floats, big integers) share one
// canonical form: sign byte plus minimal big-endian magnitude.
package hashvalue

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/cespare/xxhash/v2"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

// Family tags. Stable; the hash of every stored value depends on them.
const (
	tagNumeric  byte = 0x01
	tagBytes    byte = 0x02
	tagText     byte = 0x03
	tagComplex  byte = 0x04
	tagDate     byte = 0x05
	tagTime     byte = 0x06
	tagDateTime byte = 0x07
)

// Special numeric canonical forms.
var (
	canonNaN    = []byte{0x7f, 'n', 'a', 'n'}
	canonPosInf = []byte{0x7f, 'i', '+'}
	canonNegInf = []byte{0x7f, 'i', '-'}
)

func sum(tag byte, form []byte) uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.Write([]byte{tag})
	_, _ = d.Write(form)
	return d.Sum64()
}

// canonInt produces the shared canonical form of an exact integer:
// sign byte (0 positive, 1 negative) followed by the minimal big-endian
// magnitude. The caller guarantees the value is non-zero.
func canonInt(neg bool, mag []byte) []byte {
	form := make([]byte, 1+len(mag))
	if neg {
		form[0] = 1
	}
	copy(form[1:], mag)
	return form
}

// Int64 hashes a fixed-width integer.
func Int64(v int64) uint64 {
	if v == 0 {
		return 0
	}
	neg := v < 0
	var u uint64
	if neg {
		u = uint64(-(v + 1)) + 1 // avoids overflow on MinInt64
	} else {
		u = uint64(v)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	i := 0
	for buf[i] == 0 {
		i++
	}
	return sum(tagNumeric, canonInt(neg, buf[i:]))
}

// BigInt hashes an arbitrary-precision integer.
func BigInt(v *big.Int) uint64 {
	if v.Sign() == 0 {
		return 0
	}
	return sum(tagNumeric, canonInt(v.Sign() < 0, v.Bytes()))
}

// Float64 hashes a float. Integral floats reduce to the integer canonical
// form so that 5.0 and 5 hash identically.
func Float64(v float64) uint64 {
	if v == 0 { // covers -0.0
		return 0
	}
	if math.IsNaN(v) {
		return sum(tagNumeric, canonNaN)
	}
	if math.IsInf(v, 1) {
		return sum(tagNumeric, canonPosInf)
	}
	if math.IsInf(v, -1) {
		return sum(tagNumeric, canonNegInf)
	}
	if v == math.Trunc(v) {
		// Exact: every integral float64 is an exact integer.
		i, _ := big.NewFloat(v).Int(nil)
		return BigInt(i)
	}
	var buf [9]byte
	buf[0] = 0x02 // non-integral marker
	binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v))
	return sum(tagNumeric, buf[:])
}

// Bool hashes a boolean. False is falsy; True hashes like the integer 1.
func Bool(v bool) uint64 {
	if !v {
		return 0
	}
	return Int64(1)
}

// Bytes hashes a byte string.
func Bytes(v []byte) uint64 {
	if len(v) == 0 {
		return 0
	}
	return sum(tagBytes, v)
}

// Text hashes a text string. The hash is over the UTF-8 encoding but in the
// text family, so it never collides with the same bytes hashed as Bytes.
func Text(v string) uint64 {
	if len(v) == 0 {
		return 0
	}
	return sum(tagText, []byte(v))
}

// ASCII hashes a 7-bit clean string in the text family. Input containing
// non-ASCII bytes is rejected rather than silently hashed.
func ASCII(v string) (uint64, error) {
	for i := 0; i < len(v); i++ {
		if v[i] >= 0x80 {
			return 0, dserrors.Newf(dserrors.ErrorTypeValue, "non-ASCII byte 0x%02x at position %d", v[i], i)
		}
	}
	return Text(v), nil
}

// Complex hashes a complex number. A complex with zero imaginary part is
// numerically equal to its real part and hashes like it.
func Complex(re, im float64) uint64 {
	if im == 0 {
		return Float64(re)
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(re))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(im))
	return sum(tagComplex, buf[:])
}

// Date hashes a packed date value.
func Date(packed uint32) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], packed)
	return sum(tagDate, buf[:])
}

// Time hashes a packed time-of-day value.
func Time(packed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], packed)
	return sum(tagTime, buf[:])
}

// DateTime hashes a packed date-time value.
func DateTime(packed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], packed)
	return sum(tagDateTime, buf[:])
}
