package dstype

import (
	"io"
	"math"
	"math/big"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/hashvalue"
)

// The number type holds either an exact integer of unbounded magnitude or
// a float. Canonical representations: int64 for integers that fit, *big.Int
// for the rest, float64 for floats.
//
// Wire format: one kind byte, then
//
//	0x00 int64, 8 bytes LE
//	0x01 positive big integer, u32 length + big-endian magnitude
//	0x02 negative big integer, u32 length + big-endian magnitude
//	0x03 float64 bits, 8 bytes LE
//
// The magnitude length is unbounded; a single number may straddle any
// number of block boundaries.
const (
	numberKindInt64   = 0x00
	numberKindBigPos  = 0x01
	numberKindBigNeg  = 0x02
	numberKindFloat64 = 0x03
)

type numberCodec struct{}

func (numberCodec) Name() Type { return TypeNumber }

func (c numberCodec) Canon(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	i, b, ok := asExactInt(v)
	if !ok {
		return nil, wrongType(c.Name(), v)
	}
	if b != nil {
		return b, nil
	}
	return i, nil
}

func (numberCodec) Encode(w io.Writer, v interface{}) error {
	switch n := v.(type) {
	case int64:
		if err := writeFull(w, []byte{numberKindInt64}); err != nil {
			return err
		}
		return writeU64(w, uint64(n))
	case *big.Int:
		kind := byte(numberKindBigPos)
		if n.Sign() < 0 {
			kind = numberKindBigNeg
		}
		if err := writeFull(w, []byte{kind}); err != nil {
			return err
		}
		mag := n.Bytes()
		if err := writeU32(w, uint32(len(mag))); err != nil {
			return err
		}
		return writeFull(w, mag)
	case float64:
		if err := writeFull(w, []byte{numberKindFloat64}); err != nil {
			return err
		}
		return writeU64(w, math.Float64bits(n))
	default:
		return dserrors.Newf(dserrors.ErrorTypeInternal, "non-canonical number %T", v)
	}
}

func (numberCodec) Decode(r io.Reader) (interface{}, error) {
	var kind [1]byte
	if err := readFull(r, kind[:]); err != nil {
		return nil, err
	}
	switch kind[0] {
	case numberKindInt64:
		u, err := readU64(r)
		if err != nil {
			return nil, err
		}
		return int64(u), nil
	case numberKindBigPos, numberKindBigNeg:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		mag := make([]byte, n)
		if err := readFull(r, mag); err != nil {
			return nil, err
		}
		b := new(big.Int).SetBytes(mag)
		if kind[0] == numberKindBigNeg {
			b.Neg(b)
		}
		return b, nil
	case numberKindFloat64:
		u, err := readU64(r)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(u), nil
	default:
		return nil, dserrors.Newf(dserrors.ErrorTypeIO, "corrupt number kind 0x%02x", kind[0])
	}
}

func (numberCodec) Hash(v interface{}) (uint64, error) {
	switch n := v.(type) {
	case int64:
		return hashvalue.Int64(n), nil
	case *big.Int:
		return hashvalue.BigInt(n), nil
	case float64:
		return hashvalue.Float64(n), nil
	default:
		return 0, dserrors.Newf(dserrors.ErrorTypeInternal, "non-canonical number %T", v)
	}
}

func (numberCodec) Ordered() bool { return true }

// Compare orders numbers by numeric value across representations. NaN
// sorts after everything (see compareFloat64).
func (numberCodec) Compare(a, b interface{}) int {
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)

	if aIsFloat && math.IsNaN(af) {
		if bIsFloat && math.IsNaN(bf) {
			return 0
		}
		return 1
	}
	if bIsFloat && math.IsNaN(bf) {
		return -1
	}

	if aIsFloat && bIsFloat {
		return compareFloat64(af, bf)
	}

	// Mixed or integer comparison through big.Float is exact: integers
	// convert exactly and the non-NaN floats convert exactly too.
	return numberBig(a).Cmp(numberBig(b))
}

func numberBig(v interface{}) *big.Float {
	f := new(big.Float).SetPrec(256)
	switch n := v.(type) {
	case int64:
		return f.SetInt64(n)
	case *big.Int:
		return f.SetInt(n)
	case float64:
		return f.SetFloat64(n)
	default:
		return f
	}
}
