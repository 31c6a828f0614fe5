package column

import (
	"io"
	"os"

	"github.com/exaxorg/accelerator-sub001/pkg/blockstream"
	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
	"github.com/exaxorg/accelerator-sub001/pkg/metrics"
	"github.com/exaxorg/accelerator-sub001/pkg/mmap"
)

// CallbackAction is a progress callback's verdict.
type CallbackAction int

const (
	// Continue keeps the iteration going.
	Continue CallbackAction = iota
	// Stop ends the iteration cleanly at the current position.
	Stop
)

// Callback receives the running value count (offset included). Returning
// Stop ends the read cleanly; returning an error aborts it and the error
// surfaces from the reader unchanged.
type Callback func(n int64) (CallbackAction, error)

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// Hashfilter restricts the reader to values of one slice, re-derived
	// by hashing each decoded value.
	Hashfilter *Hashfilter

	// WantCount caps the number of values yielded. Zero or negative
	// means all of them.
	WantCount int64

	// Callback, when set, is invoked every CallbackInterval yielded
	// values and once more at the end of the read. CallbackOffset is
	// added to the reported count, for continuing across files.
	Callback         Callback
	CallbackInterval int64
	CallbackOffset   int64
}

func (cfg *ReaderConfig) validate() error {
	if err := cfg.Hashfilter.validate(); err != nil {
		return err
	}
	if cfg.Callback != nil && cfg.CallbackInterval <= 0 {
		return dserrors.New(dserrors.ErrorTypeArgument, "callback requires a positive interval")
	}
	if cfg.CallbackOffset < 0 {
		return dserrors.New(dserrors.ErrorTypeArgument, "negative callback offset")
	}
	return nil
}

// Info describes a finished column file without reading its values.
type Info struct {
	Type        dstype.Type
	NoneSupport bool
	Compression compression.Algorithm
	Count       int64
	Min         interface{}
	Max         interface{}
}

// Reader iterates one column file's values in write order. Usage follows
// the scanner pattern:
//
//	for r.Next() {
//	    v := r.Value()
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	cfg    ReaderConfig
	codec  dstype.Codec
	hdr    fileHeader
	closer io.Closer
	bs     *blockstream.Reader

	count   int64 // footer count
	min     interface{}
	max     interface{}
	yielded int64
	cur     interface{}
	err     error
	done    bool

	lastFired int64
}

// NewReader opens the column file at path. A missing or truncated file is
// an I/O error; a file of another type than expected is detected by the
// caller comparing Info.
func NewReader(path string, cfg ReaderConfig) (*Reader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dserrors.Wrap(err, dserrors.ErrorTypeIO, "cannot open column file")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dserrors.Wrap(err, dserrors.ErrorTypeIO, "stat failed")
	}

	r, err := newReader(f, fi.Size(), f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewMappedReader opens the column file through a memory mapping,
// trading address space for fewer read syscalls on large files.
func NewMappedReader(path string, cfg ReaderConfig) (*Reader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, dserrors.Wrap(err, dserrors.ErrorTypeIO, "cannot map column file")
	}

	r, err := newReader(m, m.Size(), m, cfg)
	if err != nil {
		m.Close()
		return nil, err
	}
	return r, nil
}

func newReader(src io.ReaderAt, size int64, closer io.Closer, cfg ReaderConfig) (*Reader, error) {
	footerOff, err := readTail(src, size)
	if err != nil {
		return nil, err
	}

	head := io.NewSectionReader(src, 0, footerOff)
	hdr, headerEnd, err := readHeader(head)
	if err != nil {
		return nil, err
	}

	codec, err := dstype.New(hdr.Type)
	if err != nil {
		return nil, err
	}
	comp, err := compression.NewCompressor(hdr.Compression)
	if err != nil {
		return nil, err
	}

	footer := io.NewSectionReader(src, footerOff, size-tailSize-footerOff)
	count, min, max, err := readFooter(footer, codec)
	if err != nil {
		return nil, err
	}

	data := io.NewSectionReader(src, headerEnd, footerOff-headerEnd)
	r := &Reader{
		cfg:    cfg,
		codec:  codec,
		hdr:    hdr,
		closer: closer,
		bs:     blockstream.NewReader(data, comp),
		count:  count,
		min:    min,
		max:    max,
	}
	return r, nil
}

// Inspect reads a column file's header and footer without touching its
// values.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, dserrors.Wrap(err, dserrors.ErrorTypeIO, "cannot open column file")
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Info{}, dserrors.Wrap(err, dserrors.ErrorTypeIO, "stat failed")
	}
	footerOff, err := readTail(f, fi.Size())
	if err != nil {
		return Info{}, err
	}
	hdr, _, err := readHeader(io.NewSectionReader(f, 0, footerOff))
	if err != nil {
		return Info{}, err
	}
	codec, err := dstype.New(hdr.Type)
	if err != nil {
		return Info{}, err
	}
	count, min, max, err := readFooter(io.NewSectionReader(f, footerOff, fi.Size()-tailSize-footerOff), codec)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Type:        hdr.Type,
		NoneSupport: hdr.NoneSupport,
		Compression: hdr.Compression,
		Count:       count,
		Min:         min,
		Max:         max,
	}, nil
}

// Info returns the open file's metadata.
func (r *Reader) Info() Info {
	return Info{
		Type:        r.hdr.Type,
		NoneSupport: r.hdr.NoneSupport,
		Compression: r.hdr.Compression,
		Count:       r.count,
		Min:         r.min,
		Max:         r.max,
	}
}

// Next advances to the next value belonging to this reader's slice.
// It returns false at the end of the file, when WantCount is reached,
// when a callback says Stop, or on error; Err distinguishes the cases.
func (r *Reader) Next() bool {
	if r.done || r.err != nil {
		return false
	}

	if r.cfg.WantCount > 0 && r.yielded >= r.cfg.WantCount {
		r.finish()
		return false
	}
	if !r.fireDue() {
		return false
	}

	for {
		v, ok := r.decodeOne()
		if !ok {
			return false
		}
		if r.cfg.Hashfilter != nil {
			keep, err := r.cfg.Hashfilter.keep(r.codec, v)
			if err != nil {
				r.fail(err)
				return false
			}
			if !keep {
				continue
			}
		}
		r.cur = v
		r.yielded++
		metrics.ValuesRead.WithLabelValues(string(r.hdr.Type)).Inc()
		return true
	}
}

// decodeOne reads one stored value, nil meaning None. ok is false at
// clean exhaustion or on error (recorded via fail).
func (r *Reader) decodeOne() (v interface{}, ok bool) {
	if r.hdr.NoneSupport {
		var marker [1]byte
		if _, err := io.ReadFull(r.bs, marker[:]); err != nil {
			if err == io.EOF {
				r.finish()
				return nil, false
			}
			r.fail(dserrors.Wrap(err, dserrors.ErrorTypeIO, "truncated value"))
			return nil, false
		}
		switch marker[0] {
		case 0:
			return nil, true
		case 1:
		default:
			r.fail(dserrors.Newf(dserrors.ErrorTypeIO, "corrupt None marker 0x%02x", marker[0]))
			return nil, false
		}
	}

	v, err := r.codec.Decode(r.bs)
	if err != nil {
		if err == io.EOF && !r.hdr.NoneSupport {
			r.finish()
			return nil, false
		}
		r.fail(dserrors.Wrap(err, dserrors.ErrorTypeIO, "cannot decode value"))
		return nil, false
	}
	return v, true
}

// fireDue invokes the callback if the running count just crossed an
// interval boundary. It returns false when iteration must not continue.
func (r *Reader) fireDue() bool {
	if r.cfg.Callback == nil || r.yielded == 0 {
		return true
	}
	n := r.cfg.CallbackOffset + r.yielded
	if n%r.cfg.CallbackInterval != 0 || n == r.lastFired {
		return true
	}
	return r.fire(n)
}

func (r *Reader) fire(n int64) bool {
	r.lastFired = n
	action, err := r.cfg.Callback(n)
	if err != nil {
		r.fail(err)
		return false
	}
	if action == Stop {
		r.done = true
		return false
	}
	return true
}

// finish marks clean exhaustion and fires the final callback.
func (r *Reader) finish() {
	r.done = true
	if r.cfg.Callback == nil {
		return
	}
	n := r.cfg.CallbackOffset + r.yielded
	if n != r.lastFired {
		r.fire(n)
	}
}

func (r *Reader) fail(err error) {
	r.err = err
	r.done = true
}

// Value returns the value Next advanced to; nil means None.
func (r *Reader) Value() interface{} { return r.cur }

// Yielded returns the number of values yielded so far.
func (r *Reader) Yielded() int64 { return r.yielded }

// Err returns the error that ended the iteration, nil for a clean end
// (exhaustion, WantCount, or a Stop callback).
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file or mapping. Safe to call more
// than once.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	if err := c.Close(); err != nil {
		return dserrors.Wrap(err, dserrors.ErrorTypeIO, "close failed")
	}
	return nil
}
