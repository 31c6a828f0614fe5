// Package axcol implements typed column files: one file holds one
// column's values for one horizontal slice of a dataset, with a binary
// per-type encoding, block compression and hash-based partitioning.
//
// # Architecture
//
// Values pass through three layers on the way to disk:
//
// 1. Type codecs (pkg/dstype): each column type has a codec that
// canonicalizes accepted inputs, encodes and decodes values, and hashes
// them. Exact integers hash identically across int32, int64, float and
// number columns, so a row routes to the same slice regardless of the
// column type that carries its key.
//
// 2. Block streaming (pkg/blockstream): encoded values are buffered
// into fixed-size blocks, each compressed and length-prefixed
// independently. Values freely straddle block boundaries.
//
// 3. Column files (pkg/column): a writer and reader pair around a
// framed file format with a typed header, a footer carrying the value
// count and min/max, and hashfilter-based slicing on both sides.
//
// # Quick Start
//
// Write and read back a sliced column:
//
//	import (
//	    "github.com/exaxorg/accelerator-sub001/pkg/column"
//	    "github.com/exaxorg/accelerator-sub001/pkg/dstype"
//	)
//
//	w, _ := column.NewWriter("user_id", column.WriterConfig{
//	    Type:        dstype.TypeInt64,
//	    NoneSupport: true,
//	    Hashfilter:  &column.Hashfilter{Sliceno: 0, Slices: 8},
//	})
//	w.Write(int64(4711))
//	w.Write(nil) // None
//	stats, _ := w.Finish()
//
//	r, _ := column.NewReader("user_id", column.ReaderConfig{})
//	for r.Next() {
//	    v := r.Value() // nil means None
//	    _ = v
//	}
//	err := r.Err()
//
// # Key Packages
//
//	pkg/dstype      - Column types, codecs, parsing variants
//	pkg/hashvalue   - Cross-type canonical value hashing
//	pkg/blockstream - Fixed-size compressed block framing
//	pkg/column      - Column file writer, reader, hashfilter
//	pkg/compression - Pluggable block compression schemes
//	pkg/dserrors    - Structured error handling
//	pkg/logger      - Structured logging
//	pkg/metrics     - Prometheus counters
//
// # Command Line
//
// The axcol tool writes, dumps, inspects and partitions column files:
//
//	axcol write out.col --type int64 --none-support < values.jsonl
//	axcol dump out.col --slices 8 --sliceno 3
//	axcol inspect out.col
//	axcol partition out.col --slices 8 --out sliced/
package axcol
