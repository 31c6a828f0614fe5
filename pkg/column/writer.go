package column

import (
	"os"

	"go.uber.org/zap"

	"github.com/exaxorg/accelerator-sub001/pkg/blockstream"
	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
	"github.com/exaxorg/accelerator-sub001/pkg/logger"
	"github.com/exaxorg/accelerator-sub001/pkg/metrics"
)

// WriterConfig configures a Writer. Immutable for the writer's lifetime.
type WriterConfig struct {
	// Type selects the codec. Required.
	Type dstype.Type

	// Compression names the block compression scheme. Defaults to gzip.
	Compression compression.Algorithm

	// NoneSupport permits None values on this column.
	NoneSupport bool

	// Default, when HasDefault is set, replaces any value the codec
	// rejects (and None when NoneSupport is off). The default itself
	// must be acceptable.
	Default    interface{}
	HasDefault bool

	// Hashfilter restricts the writer to one slice.
	Hashfilter *Hashfilter
}

// Stats are the aggregate statistics of a finished column file. Min and
// Max are nil when no non-None value was written or the type is unordered.
type Stats struct {
	Count int64
	Min   interface{}
	Max   interface{}
}

// Writer appends logical values to one column file. Sequential and
// non-reentrant; a file has exactly one writer for its lifetime.
type Writer struct {
	cfg          WriterConfig
	codec        dstype.Codec
	typeName     string
	f            *os.File
	cw           *countingWriter
	bs           *blockstream.Writer
	canonDefault interface{}
	count        int64
	min          interface{}
	max          interface{}
	fatal        error
	finished     bool
}

// NewWriter creates the column file at path and writes its header.
// A target in a nonexistent directory is an I/O error; bad options are
// argument errors.
func NewWriter(path string, cfg WriterConfig) (*Writer, error) {
	if cfg.Compression == "" {
		cfg.Compression = compression.Gzip
	}

	codec, err := dstype.New(cfg.Type)
	if err != nil {
		return nil, err
	}
	if err := cfg.Hashfilter.validate(); err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:      cfg,
		codec:    codec,
		typeName: string(cfg.Type),
	}

	if cfg.HasDefault {
		if cfg.Default == nil {
			if !cfg.NoneSupport {
				return nil, dserrors.New(dserrors.ErrorTypeArgument, "default None requires none_support")
			}
		} else {
			canon, err := codec.Canon(cfg.Default)
			if err != nil {
				return nil, dserrors.Wrap(err, dserrors.ErrorTypeArgument, "unacceptable default value")
			}
			w.canonDefault = canon
		}
	}

	comp, err := compression.NewCompressor(cfg.Compression)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, dserrors.Wrap(err, dserrors.ErrorTypeIO, "cannot create column file")
	}
	w.f = f
	w.cw = &countingWriter{w: f}

	hdr := fileHeader{Type: cfg.Type, NoneSupport: cfg.NoneSupport, Compression: cfg.Compression}
	if err := writeHeader(w.cw, hdr); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}

	w.bs = blockstream.NewWriter(w.cw, comp)
	return w, nil
}

// canonicalize applies the default-substitution policy and returns the
// value that would actually be written (nil for None). defaulted reports
// whether the configured default replaced the input.
func (w *Writer) canonicalize(v interface{}) (canon interface{}, defaulted bool, err error) {
	if v == nil {
		if w.cfg.NoneSupport {
			return nil, false, nil
		}
		if w.cfg.HasDefault {
			return w.canonDefault, true, nil
		}
		return nil, false, dserrors.New(dserrors.ErrorTypeValue, "None on a column without none_support")
	}

	canon, err = w.codec.Canon(v)
	if err != nil {
		if w.cfg.HasDefault {
			return w.canonDefault, true, nil
		}
		return nil, false, err
	}
	return canon, false, nil
}

// route decides slice membership from the input value and only then
// applies default substitution. An input None is routed as None even
// when a default will replace it on disk, so SpreadNone always sends it
// to the last slice. A non-None rejected value has no hash of its own
// and is routed by its substitute.
func (w *Writer) route(v interface{}) (keep bool, canon interface{}, defaulted bool, err error) {
	if v == nil && w.cfg.Hashfilter != nil {
		keep, err = w.cfg.Hashfilter.keep(w.codec, nil)
		if err != nil || !keep {
			return false, nil, false, err
		}
		canon, defaulted, err = w.canonicalize(nil)
		if err != nil {
			return false, nil, false, err
		}
		return true, canon, defaulted, nil
	}

	canon, defaulted, err = w.canonicalize(v)
	if err != nil {
		return false, nil, false, err
	}
	if w.cfg.Hashfilter == nil {
		return true, canon, defaulted, nil
	}
	keep, err = w.cfg.Hashfilter.keep(w.codec, canon)
	if err != nil {
		return false, nil, false, err
	}
	return keep, canon, defaulted, nil
}

// Write appends one logical value. With a hashfilter, values belonging to
// another slice are dropped without side effects and written is false.
// A rejected value without a configured default is a value error for this
// call only; an I/O failure is fatal for the writer.
func (w *Writer) Write(v interface{}) (written bool, err error) {
	if w.fatal != nil {
		return false, w.fatal
	}
	if w.finished {
		return false, dserrors.New(dserrors.ErrorTypeArgument, "write after Finish")
	}

	keep, canon, defaulted, err := w.route(v)
	if err != nil {
		return false, err
	}
	if !keep {
		metrics.ValuesDropped.WithLabelValues(w.typeName).Inc()
		return false, nil
	}

	if err := w.encode(canon); err != nil {
		w.fatal = err
		return false, err
	}

	w.count++
	metrics.ValuesWritten.WithLabelValues(w.typeName).Inc()
	if defaulted {
		metrics.ValuesDefaulted.WithLabelValues(w.typeName).Inc()
	}

	if canon != nil && w.codec.Ordered() {
		if w.min == nil || w.codec.Compare(canon, w.min) < 0 {
			w.min = canon
		}
		if w.max == nil || w.codec.Compare(canon, w.max) > 0 {
			w.max = canon
		}
	}
	return true, nil
}

func (w *Writer) encode(canon interface{}) error {
	if w.cfg.NoneSupport {
		marker := []byte{1}
		if canon == nil {
			marker[0] = 0
		}
		if _, err := w.bs.Write(marker); err != nil {
			return err
		}
		if canon == nil {
			return nil
		}
	}
	return w.codec.Encode(w.bs, canon)
}

// Hashcheck reports whether Write would keep the value, without writing.
// It agrees with Write for every input, including the default-substitution
// and spread-None rules. Without a hashfilter every acceptable value is
// kept.
func (w *Writer) Hashcheck(v interface{}) (bool, error) {
	keep, _, _, err := w.route(v)
	if err != nil {
		return false, err
	}
	return keep, nil
}

// Finish flushes all buffered data, writes the footer and closes the
// file. Any failure to commit buffered data propagates; a partial write
// is never silently accepted.
func (w *Writer) Finish() (Stats, error) {
	if w.fatal != nil {
		return Stats{}, w.fatal
	}
	if w.finished {
		return Stats{}, dserrors.New(dserrors.ErrorTypeArgument, "Finish called twice")
	}

	if err := w.bs.Flush(); err != nil {
		w.fatal = err
		return Stats{}, err
	}
	footerOff := w.cw.n

	if err := writeFooter(w.cw, w.codec, w.count, w.min, w.max); err != nil {
		w.fatal = err
		return Stats{}, err
	}
	if err := writeTail(w.cw, footerOff); err != nil {
		w.fatal = err
		return Stats{}, err
	}

	if err := w.f.Sync(); err != nil {
		w.fatal = dserrors.Wrap(err, dserrors.ErrorTypeIO, "sync failed")
		return Stats{}, w.fatal
	}
	if err := w.f.Close(); err != nil {
		w.fatal = dserrors.Wrap(err, dserrors.ErrorTypeIO, "close failed")
		return Stats{}, w.fatal
	}
	w.f = nil
	w.finished = true

	metrics.BlocksFlushed.WithLabelValues(w.typeName).Add(float64(w.bs.Blocks()))
	metrics.BytesCompressed.WithLabelValues(w.typeName).Add(float64(w.bs.CompressedBytes()))
	logger.Debug("column file finished",
		zap.String("type", w.typeName),
		zap.Int64("count", w.count),
		zap.Int64("blocks", w.bs.Blocks()),
		zap.Int64("bytes", w.bs.CompressedBytes()),
	)

	return Stats{Count: w.count, Min: w.min, Max: w.max}, nil
}

// Close releases the file handle. After a successful Finish it is a
// no-op; otherwise it abandons the file without a footer, leaving it
// detectably unfinished. Safe to defer and call more than once.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	if err := f.Close(); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "close failed")
	}
	return nil
}
