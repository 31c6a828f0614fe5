package blockstream

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
)

func newPair(t *testing.T, algo compression.Algorithm) (compression.Compressor, *bytes.Buffer) {
	t.Helper()
	comp, err := compression.NewCompressor(algo)
	if err != nil {
		t.Fatalf("NewCompressor(%s): %v", algo, err)
	}
	return comp, &bytes.Buffer{}
}

func TestRoundTripAllSchemes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 3*BlockSize+12345)
	rng.Read(data)

	for _, algo := range []compression.Algorithm{
		compression.None, compression.Gzip, compression.Snappy,
		compression.LZ4, compression.Zstd, compression.S2, compression.Deflate,
	} {
		t.Run(string(algo), func(t *testing.T) {
			comp, buf := newPair(t, algo)

			w := NewWriter(buf, comp)
			if _, err := w.Write(data); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if w.Blocks() != 4 {
				t.Errorf("Blocks = %d, want 4", w.Blocks())
			}
			if w.RawBytes() != int64(len(data)) {
				t.Errorf("RawBytes = %d, want %d", w.RawBytes(), len(data))
			}

			r := NewReader(buf, comp)
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("round-trip mismatch")
			}
		})
	}
}

func TestValueStraddlingBlockBoundary(t *testing.T) {
	comp, buf := newPair(t, compression.Gzip)
	w := NewWriter(buf, comp)

	// Fill to just under the block size, then write a single chunk that
	// must be split across the boundary.
	pad := bytes.Repeat([]byte{'x'}, BlockSize-3)
	if _, err := w.Write(pad); err != nil {
		t.Fatalf("Write pad: %v", err)
	}
	straddler := []byte("0123456789abcdef")
	if _, err := w.Write(straddler); err != nil {
		t.Fatalf("Write straddler: %v", err)
	}
	if w.Blocks() != 1 {
		t.Fatalf("expected exactly one full block flushed, got %d", w.Blocks())
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(buf, comp)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := append(pad, straddler...)
	if !bytes.Equal(got, want) {
		t.Error("straddling value corrupted")
	}
}

func TestManySmallWrites(t *testing.T) {
	comp, buf := newPair(t, compression.Zstd)
	w := NewWriter(buf, comp)

	var want bytes.Buffer
	for i := 0; i < 50000; i++ {
		chunk := []byte{byte(i), byte(i >> 8), byte(i * 7)}
		want.Write(chunk)
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(buf, comp)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Error("round-trip mismatch")
	}
}

func TestEmptyStream(t *testing.T) {
	comp, buf := newPair(t, compression.Gzip)
	w := NewWriter(buf, comp)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty stream should produce no frames, got %d bytes", buf.Len())
	}

	r := NewReader(buf, comp)
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll on empty stream: %v", err)
	}
}

func TestTruncatedFrameIsAnIOError(t *testing.T) {
	comp, buf := newPair(t, compression.Gzip)
	w := NewWriter(buf, comp)
	if _, err := w.Write(bytes.Repeat([]byte{'y'}, 100)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	// Cut the frame short.
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-5])
	r := NewReader(truncated, comp)
	_, err := io.ReadAll(r)
	if err == nil {
		t.Fatal("expected error for truncated frame")
	}
	if !dserrors.IsFatal(err) {
		t.Errorf("truncation should be a fatal I/O error, got %v", err)
	}
}
