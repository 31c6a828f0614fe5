// Package column implements the per-(column, slice) file writer and reader.
// A column file is created by exactly one Writer, becomes immutable when
// the Writer finishes, and may then be opened by any number of Readers.
//
// File layout:
//
//	header  magic "AXC1", format version, flags, compression id,
//	        u16 type-name length + type name (uncompressed)
//	data    compressed blocks (see blockstream)
//	footer  u64 value count, min and max (presence byte + encoded value),
//	        written at Finish (uncompressed)
//	tail    u64 footer offset + magic "1CXA"
//
// The byte layout is internal: round-trip and partition behavior are the
// compatibility contract, not the exact bytes.
package column

import (
	"encoding/binary"
	"io"

	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
)

const (
	fileMagic   = "AXC1"
	tailMagic   = "1CXA"
	fileVersion = 1
	tailSize    = 8 + 4
	flagNoneBit = 1 << 0
	maxTypeName = 64
)

type fileHeader struct {
	Type        dstype.Type
	NoneSupport bool
	Compression compression.Algorithm
}

func writeHeader(w io.Writer, h fileHeader) error {
	name := string(h.Type)
	if len(name) > maxTypeName {
		return dserrors.Newf(dserrors.ErrorTypeArgument, "type name %q too long", name)
	}

	compID, err := h.Compression.ID()
	if err != nil {
		return err
	}

	var flags byte
	if h.NoneSupport {
		flags |= flagNoneBit
	}

	buf := make([]byte, 0, 4+3+2+len(name))
	buf = append(buf, fileMagic...)
	buf = append(buf, fileVersion, flags, compID)
	var nlen [2]byte
	binary.LittleEndian.PutUint16(nlen[:], uint16(len(name)))
	buf = append(buf, nlen[:]...)
	buf = append(buf, name...)

	if _, err := w.Write(buf); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "header write failed")
	}
	return nil
}

// readHeader parses the file header and returns it with the number of
// bytes consumed.
func readHeader(r io.Reader) (fileHeader, int64, error) {
	var fixed [9]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return fileHeader{}, 0, dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated header")
	}
	if string(fixed[:4]) != fileMagic {
		return fileHeader{}, 0, dserrors.New(dserrors.ErrorTypeIO, "not a column file")
	}
	if fixed[4] != fileVersion {
		return fileHeader{}, 0, dserrors.Newf(dserrors.ErrorTypeIO, "unsupported format version %d", fixed[4])
	}

	algo, err := compression.FromID(fixed[6])
	if err != nil {
		return fileHeader{}, 0, err
	}

	nameLen := binary.LittleEndian.Uint16(fixed[7:])
	if nameLen > maxTypeName {
		return fileHeader{}, 0, dserrors.Newf(dserrors.ErrorTypeIO, "corrupt type name length %d", nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return fileHeader{}, 0, dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated header")
	}

	h := fileHeader{
		Type:        dstype.Type(name),
		NoneSupport: fixed[5]&flagNoneBit != 0,
		Compression: algo,
	}
	return h, int64(9 + int(nameLen)), nil
}

// writeFooter emits count, min and max. Min/max use a presence byte: 0
// means absent (no non-None values, or unordered type).
func writeFooter(w io.Writer, codec dstype.Codec, count int64, min, max interface{}) error {
	var cnt [8]byte
	binary.LittleEndian.PutUint64(cnt[:], uint64(count))
	if _, err := w.Write(cnt[:]); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "footer write failed")
	}

	for _, v := range []interface{}{min, max} {
		if v == nil {
			if _, err := w.Write([]byte{0}); err != nil {
				return dserrors.Wrap(err, dserrors.ErrorTypeIO, "footer write failed")
			}
			continue
		}
		if _, err := w.Write([]byte{1}); err != nil {
			return dserrors.Wrap(err, dserrors.ErrorTypeIO, "footer write failed")
		}
		if err := codec.Encode(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readFooter(r io.Reader, codec dstype.Codec) (count int64, min, max interface{}, err error) {
	var cnt [8]byte
	if _, err = io.ReadFull(r, cnt[:]); err != nil {
		return 0, nil, nil, dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated footer")
	}
	count = int64(binary.LittleEndian.Uint64(cnt[:]))

	vals := [2]interface{}{}
	for i := range vals {
		var present [1]byte
		if _, err = io.ReadFull(r, present[:]); err != nil {
			return 0, nil, nil, dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated footer")
		}
		if present[0] == 0 {
			continue
		}
		if vals[i], err = codec.Decode(r); err != nil {
			return 0, nil, nil, err
		}
	}
	return count, vals[0], vals[1], nil
}

func writeTail(w io.Writer, footerOff int64) error {
	var buf [tailSize]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(footerOff))
	copy(buf[8:], tailMagic)
	if _, err := w.Write(buf[:]); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "tail write failed")
	}
	return nil
}

func readTail(r io.ReaderAt, size int64) (footerOff int64, err error) {
	if size < tailSize {
		return 0, dserrors.New(dserrors.ErrorTypeIO, "file too short for tail")
	}
	var buf [tailSize]byte
	if _, err := r.ReadAt(buf[:], size-tailSize); err != nil {
		return 0, dserrors.Wrap(err, dserrors.ErrorTypeIO, "tail read failed")
	}
	if string(buf[8:]) != tailMagic {
		return 0, dserrors.New(dserrors.ErrorTypeIO, "missing tail magic; file not finished?")
	}
	footerOff = int64(binary.LittleEndian.Uint64(buf[:8]))
	if footerOff < 0 || footerOff > size-tailSize {
		return 0, dserrors.Newf(dserrors.ErrorTypeIO, "corrupt footer offset %d", footerOff)
	}
	return footerOff, nil
}

// countingWriter tracks the absolute file offset of everything written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
