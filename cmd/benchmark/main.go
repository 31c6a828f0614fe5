// Command benchmark measures column file write and read throughput
// across compression schemes.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/exaxorg/accelerator-sub001/pkg/column"
	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
)

var (
	typeName = flag.String("type", "int64", "Column type to benchmark")
	count    = flag.Int("count", 1_000_000, "Number of values per run")
	schemes  = flag.String("compression", "none,gzip,lz4,zstd,s2", "Comma-separated compression schemes")
	outDir   = flag.String("dir", "", "Working directory (default: a temp dir)")
	useMmap  = flag.Bool("mmap", false, "Read through a memory mapping")
	slices   = flag.Int("slices", 0, "Hash values into this many slices while writing (0 disables)")
)

func main() {
	flag.Parse()

	dir := *outDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "axcol-bench-")
		if err != nil {
			fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(dir)
	}

	values, err := makeValues(dstype.Type(*typeName), *count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("type=%s count=%d\n\n", *typeName, *count)
	fmt.Printf("%-10s %12s %12s %12s %10s\n", "scheme", "write val/s", "read val/s", "bytes", "ratio")

	for _, scheme := range strings.Split(*schemes, ",") {
		if err := runOne(dir, compression.Algorithm(strings.TrimSpace(scheme)), values); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", scheme, err)
			os.Exit(1)
		}
	}
}

func makeValues(t dstype.Type, n int) ([]interface{}, error) {
	values := make([]interface{}, n)
	switch t {
	case dstype.TypeInt32, dstype.TypeInt64:
		for i := range values {
			values[i] = int64(i * 31)
		}
	case dstype.TypeFloat32, dstype.TypeFloat64:
		for i := range values {
			values[i] = float64(i) * 0.25
		}
	case dstype.TypeNumber:
		base := new(big.Int).Lsh(big.NewInt(1), 80)
		for i := range values {
			values[i] = new(big.Int).Add(base, big.NewInt(int64(i)))
		}
	case dstype.TypeUnicode, dstype.TypeASCII, dstype.TypeBytes:
		for i := range values {
			s := fmt.Sprintf("value-%012d", i)
			if t == dstype.TypeBytes {
				values[i] = []byte(s)
			} else {
				values[i] = s
			}
		}
	default:
		return nil, fmt.Errorf("no value generator for type %s", t)
	}
	return values, nil
}

func runOne(dir string, scheme compression.Algorithm, values []interface{}) error {
	path := filepath.Join(dir, fmt.Sprintf("bench-%s", scheme))

	cfg := column.WriterConfig{Type: dstype.Type(*typeName), Compression: scheme}
	if *slices > 0 {
		cfg.Hashfilter = &column.Hashfilter{Sliceno: 0, Slices: *slices}
	}

	w, err := column.NewWriter(path, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	start := time.Now()
	for _, v := range values {
		if _, err := w.Write(v); err != nil {
			return err
		}
	}
	stats, err := w.Finish()
	if err != nil {
		return err
	}
	writeDur := time.Since(start)

	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	open := column.NewReader
	if *useMmap {
		open = column.NewMappedReader
	}
	r, err := open(path, column.ReaderConfig{})
	if err != nil {
		return err
	}
	defer r.Close()

	start = time.Now()
	read := int64(0)
	for r.Next() {
		read++
	}
	if err := r.Err(); err != nil {
		return err
	}
	readDur := time.Since(start)

	if read != stats.Count {
		return fmt.Errorf("read %d values, wrote %d", read, stats.Count)
	}

	rawSize := int64(len(values)) * 16 // rough, for the ratio only
	fmt.Printf("%-10s %12.0f %12.0f %12d %9.2fx\n",
		scheme,
		float64(len(values))/writeDur.Seconds(),
		float64(read)/readDur.Seconds(),
		fi.Size(),
		float64(rawSize)/float64(fi.Size()))

	return os.Remove(path)
}
