// Package blockstream frames a byte stream into fixed-size blocks with
// per-block compression. The write side presents an append-only byte sink;
// the read side presents a contiguous byte source. A single encoded value
// may straddle any number of block boundaries without either side's caller
// noticing.
//
// Frame layout: u32 raw length, u32 compressed length, compressed payload.
// Every frame except the last carries exactly BlockSize raw bytes.
package blockstream

import (
	"encoding/binary"
	"io"

	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

// BlockSize is the raw byte count per block. Fixed at build time; changing
// it does not break old files since each frame records its own raw length.
const BlockSize = 128 * 1024

const frameHeaderSize = 8

// Writer buffers bytes and flushes them as compressed blocks.
type Writer struct {
	dst     io.Writer
	comp    compression.Compressor
	buf     []byte
	blocks  int64
	rawOut  int64
	compOut int64
}

// NewWriter creates a block writer on top of dst.
func NewWriter(dst io.Writer, comp compression.Compressor) *Writer {
	return &Writer{
		dst:  dst,
		comp: comp,
		buf:  make([]byte, 0, BlockSize+frameHeaderSize),
	}
}

// Write appends bytes, flushing full blocks as they fill. Implements
// io.Writer; the returned count is always len(p) on success.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for len(w.buf) >= BlockSize {
		if err := w.flushBlock(w.buf[:BlockSize]); err != nil {
			return 0, err
		}
		rest := len(w.buf) - BlockSize
		copy(w.buf, w.buf[BlockSize:])
		w.buf = w.buf[:rest]
	}
	return len(p), nil
}

// Flush writes any buffered partial block. Only call when no more bytes
// will be written; the resulting short block terminates clean framing.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.flushBlock(w.buf); err != nil {
		return err
	}
	w.buf = w.buf[:0]
	return nil
}

func (w *Writer) flushBlock(raw []byte) error {
	payload, err := w.comp.Compress(raw)
	if err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeInternal, "block compression failed")
	}

	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:4], uint32(len(raw)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	if _, err := w.dst.Write(hdr[:]); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "block header write failed")
	}
	if _, err := w.dst.Write(payload); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "block write failed")
	}

	w.blocks++
	w.rawOut += int64(len(raw))
	w.compOut += int64(len(payload) + frameHeaderSize)
	return nil
}

// Blocks returns the number of blocks flushed so far.
func (w *Writer) Blocks() int64 { return w.blocks }

// RawBytes returns the raw byte count flushed so far (excluding the
// partial block still buffered).
func (w *Writer) RawBytes() int64 { return w.rawOut }

// CompressedBytes returns the on-disk byte count produced so far,
// frame headers included.
func (w *Writer) CompressedBytes() int64 { return w.compOut }

// Reader reassembles the raw byte stream from compressed blocks.
// Implements io.Reader; returns io.EOF cleanly at a frame boundary when
// the source is exhausted, and ErrUnexpectedEOF inside a truncated frame.
type Reader struct {
	src  io.Reader
	comp compression.Compressor
	cur  []byte
	off  int
	err  error
}

// NewReader creates a block reader over src. src must be limited to the
// data region; the reader treats EOF at a frame boundary as end of stream.
func NewReader(src io.Reader, comp compression.Compressor) *Reader {
	return &Reader{src: src, comp: comp}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= len(r.cur) {
		if r.err != nil {
			return 0, r.err
		}
		if err := r.nextBlock(); err != nil {
			r.err = err
			return 0, err
		}
	}
	n := copy(p, r.cur[r.off:])
	r.off += n
	return n, nil
}

func (r *Reader) nextBlock() error {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r.src, hdr[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated block header")
	}
	rawLen := binary.LittleEndian.Uint32(hdr[:4])
	compLen := binary.LittleEndian.Uint32(hdr[4:])

	payload := make([]byte, compLen)
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated block")
	}

	raw, err := r.comp.Decompress(payload)
	if err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "block decompression failed")
	}
	if uint32(len(raw)) != rawLen {
		return dserrors.Newf(dserrors.ErrorTypeIO, "block length mismatch: header %d, payload %d", rawLen, len(raw))
	}

	r.cur = raw
	r.off = 0
	return nil
}
