package compression

import (
	"bytes"
	"testing"
)

var allAlgorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}

func TestRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("column codec block payload payload payload "), 100)

	for _, algo := range allAlgorithms {
		t.Run(string(algo), func(t *testing.T) {
			comp, err := NewCompressor(algo)
			if err != nil {
				t.Fatalf("Failed to create compressor: %v", err)
			}

			compressed, err := comp.Compress(original)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}

			decompressed, err := comp.Decompress(compressed)
			if err != nil {
				t.Fatalf("Failed to decompress: %v", err)
			}

			if !bytes.Equal(original, decompressed) {
				t.Errorf("Decompressed data doesn't match original")
			}

			if comp.Algorithm() != algo {
				t.Errorf("Algorithm() = %q, want %q", comp.Algorithm(), algo)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	for _, algo := range allAlgorithms {
		comp, err := NewCompressor(algo)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}

		compressed, err := comp.Compress(nil)
		if err != nil {
			t.Fatalf("%s: compress empty: %v", algo, err)
		}
		decompressed, err := comp.Decompress(compressed)
		if err != nil {
			t.Fatalf("%s: decompress empty: %v", algo, err)
		}
		if len(decompressed) != 0 {
			t.Errorf("%s: expected empty output, got %d bytes", algo, len(decompressed))
		}
	}
}

func TestUnknownScheme(t *testing.T) {
	if _, err := NewCompressor("brotli"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}

func TestStableIDs(t *testing.T) {
	// On-disk identifiers must never change.
	want := map[Algorithm]byte{
		None: 0, Gzip: 1, Snappy: 2, LZ4: 3, Zstd: 4, S2: 5, Deflate: 6,
	}
	for algo, id := range want {
		got, err := algo.ID()
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if got != id {
			t.Errorf("%s: ID = %d, want %d", algo, got, id)
		}

		back, err := FromID(id)
		if err != nil {
			t.Fatalf("FromID(%d): %v", id, err)
		}
		if back != algo {
			t.Errorf("FromID(%d) = %q, want %q", id, back, algo)
		}
	}

	if _, err := FromID(200); err == nil {
		t.Error("expected error for unknown id")
	}
}
