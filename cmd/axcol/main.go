package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/exaxorg/accelerator-sub001/pkg/column"
	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/config"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
	"github.com/exaxorg/accelerator-sub001/pkg/logger"
	"github.com/exaxorg/accelerator-sub001/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.SetEnvPrefix("AXCOL")
	viper.AutomaticEnv()
	viper.SetDefault("compression", string(compression.Gzip))
	viper.SetDefault("log_level", "error")

	var logLevel, configFile string
	var enableTracing bool

	root := &cobra.Command{
		Use:   "axcol",
		Short: "axcol - typed column file tool",
		Long: `axcol writes, reads and partitions typed column files.
A column file holds one column's values for one slice, with per-type
binary encoding, block compression and hash-based partitioning.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configFile != "" {
				var err error
				if cfg, err = config.Load(configFile); err != nil {
					return err
				}
				viper.SetDefault("compression", cfg.Write.Compression)
				viper.SetDefault("log_level", cfg.Logging.Level)
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = viper.GetString("log_level")
			}
			if err := logger.Init(logger.Config{Level: logLevel, Encoding: cfg.Logging.Encoding}); err != nil {
				return err
			}
			if enableTracing || cfg.Tracing {
				return observability.Init(observability.Config{ServiceName: "axcol"})
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
			_ = observability.Shutdown(context.Background())
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().BoolVar(&enableTracing, "trace", false, "Emit trace spans to stdout")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("axcol v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "List supported column types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range dstype.Types() {
				fmt.Println(t)
			}
		},
	})

	root.AddCommand(newWriteCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newPartitionCmd())
	root.AddCommand(newHashCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type sliceFlags struct {
	slices     int
	sliceno    int
	spreadNone bool
}

func (f *sliceFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.slices, "slices", 0, "Total number of slices (0 disables slicing)")
	cmd.Flags().IntVar(&f.sliceno, "sliceno", 0, "Slice to keep")
	cmd.Flags().BoolVar(&f.spreadNone, "spread-none", false, "Route None values to the last slice")
}

func (f *sliceFlags) filter() *column.Hashfilter {
	if f.slices == 0 {
		return nil
	}
	return &column.Hashfilter{Sliceno: f.sliceno, Slices: f.slices, SpreadNone: f.spreadNone}
}

func newWriteCmd() *cobra.Command {
	var typeName, input, defaultText, comp string
	var noneSupport, noneDefault bool
	var sf sliceFlags

	cmd := &cobra.Command{
		Use:   "write <column-file>",
		Short: "Write a column file from JSON lines",
		Long: `Read one JSON value per line from the input (stdin by default) and
write them to a column file. null means None; strings are parsed for
numeric and temporal types; bytes expect base64.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if comp == "" {
				comp = viper.GetString("compression")
			}
			return runWrite(cmd.Context(), args[0], writeOptions{
				typeName:    dstype.Type(typeName),
				input:       input,
				compression: compression.Algorithm(comp),
				noneSupport: noneSupport,
				defaultText: defaultText,
				noneDefault: noneDefault,
				hasDefault:  cmd.Flags().Changed("default") || noneDefault,
				hashfilter:  sf.filter(),
			})
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Column type (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON lines input file, - for stdin")
	cmd.Flags().StringVar(&comp, "compression", "", "Block compression (none, gzip, snappy, lz4, zstd, s2, deflate)")
	cmd.Flags().BoolVar(&noneSupport, "none-support", false, "Allow None values")
	cmd.Flags().StringVar(&defaultText, "default", "", "Replacement for rejected values")
	cmd.Flags().BoolVar(&noneDefault, "default-none", false, "Use None as the replacement for rejected values")
	sf.register(cmd)
	return cmd
}

type writeOptions struct {
	typeName    dstype.Type
	input       string
	compression compression.Algorithm
	noneSupport bool
	defaultText string
	noneDefault bool
	hasDefault  bool
	hashfilter  *column.Hashfilter
}

func runWrite(ctx context.Context, path string, opts writeOptions) error {
	return observability.Traced(ctx, "axcol.write", func(ctx context.Context) error {
		codec, err := inputCodec(opts.typeName)
		if err != nil {
			return err
		}

		cfg := column.WriterConfig{
			Type:        opts.typeName,
			Compression: opts.compression,
			NoneSupport: opts.noneSupport,
			Hashfilter:  opts.hashfilter,
		}
		if opts.hasDefault {
			cfg.HasDefault = true
			if !opts.noneDefault {
				d, err := codec.Canon(opts.defaultText)
				if err != nil {
					return fmt.Errorf("bad default: %w", err)
				}
				cfg.Default = d
			}
		}

		in := os.Stdin
		if opts.input != "-" {
			f, err := os.Open(opts.input)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		w, err := column.NewWriter(path, cfg)
		if err != nil {
			return err
		}
		defer w.Close()

		var written, dropped int64
		scan := bufio.NewScanner(in)
		scan.Buffer(make([]byte, 0, 1<<20), 1<<28)
		line := 0
		for scan.Scan() {
			line++
			if len(scan.Bytes()) == 0 {
				continue
			}
			v, err := decodeJSONValue(opts.typeName, scan.Bytes())
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			// pre-parse textual input; unparseable text goes to the
			// writer as-is so default substitution can catch it
			if v != nil {
				if parsed, err := codec.Canon(v); err == nil {
					v = parsed
				}
			}
			ok, err := w.Write(v)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if ok {
				written++
			} else {
				dropped++
			}
		}
		if err := scan.Err(); err != nil {
			return err
		}

		stats, err := w.Finish()
		if err != nil {
			return err
		}
		logger.Info("column written",
			zap.String("path", path),
			zap.Int64("count", stats.Count),
			zap.Int64("dropped", dropped))
		fmt.Printf("%s: %d values written, %d dropped\n", path, written, dropped)
		return nil
	})
}

// inputCodec returns the codec used to interpret textual input: the
// parsing variant where one exists, the plain codec otherwise.
func inputCodec(t dstype.Type) (dstype.Codec, error) {
	if c, err := dstype.New(parsedVariant(t)); err == nil {
		return c, nil
	}
	return dstype.New(t)
}

func parsedVariant(t dstype.Type) dstype.Type {
	return dstype.Type(dstype.ParsedPrefix + string(t))
}

// decodeJSONValue turns one JSON line into a value the writer accepts.
func decodeJSONValue(t dstype.Type, raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		return x.String(), nil
	case string:
		if t == dstype.TypeBytes {
			return base64.StdEncoding.DecodeString(x)
		}
		return x, nil
	default:
		return v, nil
	}
}

func newDumpCmd() *cobra.Command {
	var wantCount, progress int64
	var sf sliceFlags

	cmd := &cobra.Command{
		Use:   "dump <column-file>",
		Short: "Print a column file's values as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args[0], wantCount, progress, sf.filter())
		},
	}
	cmd.Flags().Int64Var(&wantCount, "want-count", 0, "Stop after this many values (0 means all)")
	cmd.Flags().Int64Var(&progress, "progress", 0, "Report progress to stderr every N values")
	sf.register(cmd)
	return cmd
}

func runDump(ctx context.Context, path string, wantCount, progress int64, hf *column.Hashfilter) error {
	return observability.Traced(ctx, "axcol.dump", func(ctx context.Context) error {
		cfg := column.ReaderConfig{WantCount: wantCount, Hashfilter: hf}
		if progress > 0 {
			cfg.CallbackInterval = progress
			cfg.Callback = func(n int64) (column.CallbackAction, error) {
				fmt.Fprintf(os.Stderr, "%d values\n", n)
				return column.Continue, nil
			}
		}

		r, err := column.NewReader(path, cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		out := bufio.NewWriter(os.Stdout)
		defer out.Flush()
		enc := json.NewEncoder(out)
		for r.Next() {
			if err := enc.Encode(jsonValue(r.Value())); err != nil {
				return err
			}
		}
		return r.Err()
	})
}

// jsonValue maps a decoded column value to its JSON representation.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case *big.Int:
		return json.Number(x.String())
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return x
	case float32:
		return jsonValue(float64(x))
	case complex64:
		return strconv.FormatComplex(complex128(x), 'g', -1, 64)
	case complex128:
		return strconv.FormatComplex(x, 'g', -1, 128)
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case dstype.Date:
		return x.String()
	case dstype.TimeOfDay:
		return x.String()
	case dstype.DateTime:
		return x.String()
	default:
		return v
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <column-file>",
		Short: "Print a column file's metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := column.Inspect(args[0])
			if err != nil {
				return err
			}
			out := map[string]interface{}{
				"type":         string(info.Type),
				"none_support": info.NoneSupport,
				"compression":  string(info.Compression),
				"count":        info.Count,
				"min":          jsonValue(info.Min),
				"max":          jsonValue(info.Max),
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func newPartitionCmd() *cobra.Command {
	var slices int
	var outDir string
	var spreadNone bool

	cmd := &cobra.Command{
		Use:   "partition <column-file>",
		Short: "Split a column file into hash-routed slices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartition(cmd.Context(), args[0], outDir, slices, spreadNone)
		},
	}
	cmd.Flags().IntVar(&slices, "slices", 0, "Number of slices (required)")
	_ = cmd.MarkFlagRequired("slices")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().BoolVar(&spreadNone, "spread-none", false, "Route None values to the last slice")
	return cmd
}

func runPartition(ctx context.Context, path, outDir string, slices int, spreadNone bool) error {
	return observability.Traced(ctx, "axcol.partition", func(ctx context.Context) error {
		ctx = context.WithValue(ctx, logger.ColumnKey, filepath.Base(path))
		info, err := column.Inspect(path)
		if err != nil {
			return err
		}

		r, err := column.NewReader(path, column.ReaderConfig{})
		if err != nil {
			return err
		}
		defer r.Close()

		writers := make([]*column.Writer, slices)
		for s := 0; s < slices; s++ {
			out := filepath.Join(outDir, fmt.Sprintf("%s.%d", filepath.Base(path), s))
			w, err := column.NewWriter(out, column.WriterConfig{
				Type:        info.Type,
				Compression: info.Compression,
				NoneSupport: info.NoneSupport,
				Hashfilter:  &column.Hashfilter{Sliceno: s, Slices: slices, SpreadNone: spreadNone},
			})
			if err != nil {
				return err
			}
			writers[s] = w
			defer w.Close()
		}

		for r.Next() {
			v := r.Value()
			kept := false
			for _, w := range writers {
				ok, err := w.Write(v)
				if err != nil {
					return err
				}
				if ok {
					kept = true
					break
				}
			}
			if !kept {
				logger.Error("value not routed to any slice")
			}
		}
		if err := r.Err(); err != nil {
			return err
		}

		for s, w := range writers {
			stats, err := w.Finish()
			if err != nil {
				return err
			}
			log := logger.WithContext(context.WithValue(ctx, logger.SlicenoKey, s))
			log.Debug("slice finished", zap.Int64("count", stats.Count))
			fmt.Printf("slice %d: %d values\n", s, stats.Count)
		}
		return nil
	})
}

func newHashCmd() *cobra.Command {
	var typeName string
	var slices int
	var spreadNone bool

	cmd := &cobra.Command{
		Use:   "hash <value>...",
		Short: "Show the hash and slice of values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := inputCodec(dstype.Type(typeName))
			if err != nil {
				return err
			}
			hf := &column.Hashfilter{Slices: slices, SpreadNone: spreadNone}
			for _, arg := range args {
				var v interface{}
				if arg != "null" {
					v = arg
				}
				var hash uint64
				if v != nil {
					canon, err := codec.Canon(v)
					if err != nil {
						return err
					}
					if hash, err = codec.Hash(canon); err != nil {
						return err
					}
				}
				slot, err := hf.Slot(codec, v)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t0x%016x\tslice %d\n", arg, hash, slot)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Column type (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().IntVar(&slices, "slices", 1, "Number of slices")
	cmd.Flags().BoolVar(&spreadNone, "spread-none", false, "Route None values to the last slice")
	return cmd
}
