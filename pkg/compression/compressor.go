// Package compression provides the named compression schemes available to
// column files. Each scheme compresses and decompresses one block at a time;
// block framing is owned by the blockstream package and invisible here.
//
// Supported schemes: none, gzip, snappy, lz4, zstd, s2, deflate. Every
// scheme has a stable one-byte identifier that is written into the column
// file header, so the mapping must never be reordered.
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(compression.Gzip)
//	block, err := comp.Compress(raw)
//	raw2, err := comp.Decompress(block)
package compression

import (
	"bytes"
	"compress/flate"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

// Algorithm names a compression scheme.
type Algorithm string

const (
	// None disables compression
	None Algorithm = "none"
	// Gzip is the scheme every deployment is guaranteed to have
	Gzip Algorithm = "gzip"
	// Snappy favors speed over ratio
	Snappy Algorithm = "snappy"
	// LZ4 is the fastest scheme
	LZ4 Algorithm = "lz4"
	// Zstd favors ratio over speed
	Zstd Algorithm = "zstd"
	// S2 is snappy-compatible with better compression
	S2 Algorithm = "s2"
	// Deflate is raw DEFLATE without the gzip envelope
	Deflate Algorithm = "deflate"
)

// Stable on-disk identifiers. Append only.
var algorithmIDs = map[Algorithm]byte{
	None:    0,
	Gzip:    1,
	Snappy:  2,
	LZ4:     3,
	Zstd:    4,
	S2:      5,
	Deflate: 6,
}

// ID returns the stable one-byte identifier written into file headers.
func (a Algorithm) ID() (byte, error) {
	id, ok := algorithmIDs[a]
	if !ok {
		return 0, dserrors.Newf(dserrors.ErrorTypeArgument, "unknown compression scheme %q", a)
	}
	return id, nil
}

// FromID resolves a header identifier back to its scheme.
func FromID(id byte) (Algorithm, error) {
	for a, i := range algorithmIDs {
		if i == id {
			return a, nil
		}
	}
	return "", dserrors.Newf(dserrors.ErrorTypeArgument, "unknown compression id %d", id)
}

// Compressor compresses and decompresses single blocks.
// All implementations are safe for concurrent use.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data and returns the original bytes.
	Decompress(data []byte) ([]byte, error)

	// Algorithm returns the scheme implemented by this compressor.
	Algorithm() Algorithm
}

// NewCompressor creates a compressor for the named scheme.
func NewCompressor(algorithm Algorithm) (Compressor, error) {
	switch algorithm {
	case None:
		return &noneCompressor{}, nil
	case Gzip:
		return newGzipCompressor(), nil
	case Snappy:
		return &snappyCompressor{}, nil
	case LZ4:
		return &lz4Compressor{}, nil
	case Zstd:
		return newZstdCompressor(), nil
	case S2:
		return &s2Compressor{}, nil
	case Deflate:
		return &deflateCompressor{}, nil
	default:
		return nil, dserrors.Newf(dserrors.ErrorTypeArgument, "unsupported compression scheme %q", algorithm)
	}
}

// None compressor (no compression)
type noneCompressor struct{}

func (nc *noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) Algorithm() Algorithm { return None }

// Gzip compressor
type gzipCompressor struct {
	writerPool sync.Pool
	readerPool sync.Pool
}

func newGzipCompressor() *gzipCompressor {
	gc := &gzipCompressor{}
	gc.writerPool.New = func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	}
	gc.readerPool.New = func() interface{} {
		return new(gzip.Reader)
	}
	return gc
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := gc.writerPool.Get().(*gzip.Writer)
	defer gc.writerPool.Put(w)

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r := gc.readerPool.Get().(*gzip.Reader)
	defer gc.readerPool.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gc *gzipCompressor) Algorithm() Algorithm { return Gzip }

// Snappy compressor
type snappyCompressor struct{}

func (sc *snappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (sc *snappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (sc *snappyCompressor) Algorithm() Algorithm { return Snappy }

// LZ4 compressor
type lz4Compressor struct{}

func (lc *lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lc *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lc *lz4Compressor) Algorithm() Algorithm { return LZ4 }

// Zstd compressor
type zstdCompressor struct {
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCompressor() *zstdCompressor {
	zc := &zstdCompressor{}
	zc.encoderPool.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}
	zc.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	}
	return zc
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	return dec.DecodeAll(data, nil)
}

func (zc *zstdCompressor) Algorithm() Algorithm { return Zstd }

// S2 compressor (snappy-compatible but better compression)
type s2Compressor struct{}

func (sc *s2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (sc *s2Compressor) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

func (sc *s2Compressor) Algorithm() Algorithm { return S2 }

// Deflate compressor
type deflateCompressor struct{}

func (dc *deflateCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (dc *deflateCompressor) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (dc *deflateCompressor) Algorithm() Algorithm { return Deflate }
