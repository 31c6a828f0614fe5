package column

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exaxorg/accelerator-sub001/pkg/compression"
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
)

func writeAll(t *testing.T, path string, cfg WriterConfig, values []interface{}) Stats {
	t.Helper()
	w, err := NewWriter(path, cfg)
	require.NoError(t, err)
	defer w.Close()
	for i, v := range values {
		_, err := w.Write(v)
		require.NoError(t, err, "value %d", i)
	}
	stats, err := w.Finish()
	require.NoError(t, err)
	return stats
}

func readAll(t *testing.T, path string, cfg ReaderConfig) []interface{} {
	t.Helper()
	r, err := NewReader(path, cfg)
	require.NoError(t, err)
	defer r.Close()
	var out []interface{}
	for r.Next() {
		out = append(out, r.Value())
	}
	require.NoError(t, r.Err())
	return out
}

func TestRoundTripWithNone(t *testing.T) {
	cases := []struct {
		typ    dstype.Type
		values []interface{}
	}{
		{dstype.TypeInt64, []interface{}{int64(1), nil, int64(-7), int64(0), nil}},
		{dstype.TypeFloat64, []interface{}{1.5, nil, -0.25, 0.0}},
		{dstype.TypeUnicode, []interface{}{"hello", "", nil, "värld"}},
		{dstype.TypeBytes, []interface{}{[]byte{0, 1, 2}, nil, []byte{}}},
		{dstype.TypeNumber, []interface{}{int64(42), nil, new(big.Int).Lsh(big.NewInt(1), 200), 2.5}},
		{dstype.TypeBool, []interface{}{true, nil, false}},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "col")
			codec, err := dstype.New(tc.typ)
			require.NoError(t, err)

			want := make([]interface{}, len(tc.values))
			for i, v := range tc.values {
				if v == nil {
					continue
				}
				want[i], err = codec.Canon(v)
				require.NoError(t, err)
			}

			stats := writeAll(t, path, WriterConfig{Type: tc.typ, NoneSupport: true}, tc.values)
			assert.Equal(t, int64(len(tc.values)), stats.Count)

			got := readAll(t, path, ReaderConfig{})
			require.Len(t, got, len(tc.values))
			for i := range want {
				if want[i] == nil {
					assert.Nil(t, got[i], "value %d", i)
					continue
				}
				assert.Zero(t, codec.Compare(got[i], want[i]), "value %d: got %v want %v", i, got[i], want[i])
			}
		})
	}
}

func TestRoundTripDateTimeFold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	early := dstype.DateTime{Year: 2024, Month: 10, Day: 27, Hour: 2, Minute: 30}
	late := early
	late.Fold = 1

	writeAll(t, path, WriterConfig{Type: dstype.TypeDateTime}, []interface{}{early, late})

	got := readAll(t, path, ReaderConfig{})
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0])
	assert.Equal(t, late, got[1])
}

func TestFinishStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	stats := writeAll(t, path, WriterConfig{Type: dstype.TypeInt64, NoneSupport: true},
		[]interface{}{int64(5), nil, int64(-3), int64(17), nil})

	assert.Equal(t, int64(5), stats.Count)
	assert.Equal(t, int64(-3), stats.Min)
	assert.Equal(t, int64(17), stats.Max)

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, dstype.TypeInt64, info.Type)
	assert.True(t, info.NoneSupport)
	assert.Equal(t, compression.Gzip, info.Compression)
	assert.Equal(t, int64(5), info.Count)
	assert.Equal(t, int64(-3), info.Min)
	assert.Equal(t, int64(17), info.Max)
}

func TestUnorderedTypeHasNoStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	stats := writeAll(t, path, WriterConfig{Type: dstype.TypeComplex128},
		[]interface{}{complex(1, 2), complex(-3, 0)})
	assert.Equal(t, int64(2), stats.Count)
	assert.Nil(t, stats.Min)
	assert.Nil(t, stats.Max)
}

func TestWriterPartitionDisjointAndComplete(t *testing.T) {
	const slices = 3
	values := make([]interface{}, 1000)
	for i := range values {
		values[i] = int64(i * 7)
	}

	dir := t.TempDir()
	total := 0
	seen := map[int64]bool{}
	for s := 0; s < slices; s++ {
		path := filepath.Join(dir, "col")
		w, err := NewWriter(path, WriterConfig{
			Type:       dstype.TypeInt64,
			Hashfilter: &Hashfilter{Sliceno: s, Slices: slices},
		})
		require.NoError(t, err)
		kept := 0
		for _, v := range values {
			written, err := w.Write(v)
			require.NoError(t, err)
			if written {
				kept++
			}
		}
		stats, err := w.Finish()
		require.NoError(t, err)
		assert.Equal(t, int64(kept), stats.Count)
		total += kept

		for _, v := range readAll(t, path, ReaderConfig{}) {
			n := v.(int64)
			assert.False(t, seen[n], "value %d in two slices", n)
			seen[n] = true
		}
	}
	assert.Equal(t, len(values), total)
	assert.Len(t, seen, len(values))
}

func TestReaderMaskMatchesWriterFilter(t *testing.T) {
	const slices = 4
	values := make([]interface{}, 500)
	for i := range values {
		values[i] = "row-" + string(rune('a'+i%26)) + "-" + string(rune('0'+i%10))
	}

	dir := t.TempDir()
	full := filepath.Join(dir, "full")
	writeAll(t, full, WriterConfig{Type: dstype.TypeUnicode}, values)

	for s := 0; s < slices; s++ {
		sliced := filepath.Join(dir, "sliced")
		hf := &Hashfilter{Sliceno: s, Slices: slices}
		writeAll(t, sliced, WriterConfig{Type: dstype.TypeUnicode, Hashfilter: hf}, values)

		fromWriter := readAll(t, sliced, ReaderConfig{})
		fromMask := readAll(t, full, ReaderConfig{Hashfilter: hf})
		assert.Equal(t, fromWriter, fromMask, "slice %d", s)
	}
}

func TestSpreadNone(t *testing.T) {
	const slices = 3
	values := []interface{}{nil, int64(1), nil, int64(2), nil}

	dir := t.TempDir()
	noneCount := 0
	for s := 0; s < slices; s++ {
		path := filepath.Join(dir, "col")
		writeAll(t, path, WriterConfig{
			Type:        dstype.TypeInt64,
			NoneSupport: true,
			Hashfilter:  &Hashfilter{Sliceno: s, Slices: slices, SpreadNone: true},
		}, values)
		for _, v := range readAll(t, path, ReaderConfig{}) {
			if v == nil {
				noneCount++
				assert.Equal(t, slices-1, s, "None outside the last slice")
			}
		}
	}
	assert.Equal(t, 3, noneCount)
}

func TestNoneRoutingWithDefault(t *testing.T) {
	const slices = 4
	codec, err := dstype.New(dstype.TypeInt64)
	require.NoError(t, err)

	// Pick a default that hashes into a middle slice, so routing the
	// substitute instead of the None would land it somewhere else.
	var def int64
	for def = 1; ; def++ {
		slot, err := (&Hashfilter{Sliceno: 0, Slices: slices}).Slot(codec, def)
		require.NoError(t, err)
		if slot != 0 && slot != slices-1 {
			break
		}
	}

	dir := t.TempDir()
	for _, spread := range []bool{false, true} {
		want := 0
		if spread {
			want = slices - 1
		}
		for s := 0; s < slices; s++ {
			path := filepath.Join(dir, "col")
			w, err := NewWriter(path, WriterConfig{
				Type:       dstype.TypeInt64,
				Default:    def,
				HasDefault: true,
				Hashfilter: &Hashfilter{Sliceno: s, Slices: slices, SpreadNone: spread},
			})
			require.NoError(t, err)

			keep, err := w.Hashcheck(nil)
			require.NoError(t, err)
			assert.Equal(t, s == want, keep)

			written, err := w.Write(nil)
			require.NoError(t, err)
			assert.Equal(t, s == want, written, "spread=%v slice %d", spread, s)

			_, err = w.Finish()
			require.NoError(t, err)

			if s == want {
				assert.Equal(t, []interface{}{def}, readAll(t, path, ReaderConfig{}))
			} else {
				assert.Empty(t, readAll(t, path, ReaderConfig{}))
			}
		}
	}
}

func TestDefaultSubstitution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	w, err := NewWriter(path, WriterConfig{
		Type:       dstype.TypeInt64,
		Default:    int64(-1),
		HasDefault: true,
	})
	require.NoError(t, err)
	defer w.Close()

	written, err := w.Write(int64(10))
	require.NoError(t, err)
	assert.True(t, written)

	// rejected value and None both take the default
	for _, v := range []interface{}{"not a number", nil} {
		written, err = w.Write(v)
		require.NoError(t, err)
		assert.True(t, written)
	}

	stats, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)

	assert.Equal(t, []interface{}{int64(10), int64(-1), int64(-1)}, readAll(t, path, ReaderConfig{}))
}

func TestRejectedValueWithoutDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	w, err := NewWriter(path, WriterConfig{Type: dstype.TypeInt64})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write("nope")
	require.Error(t, err)
	assert.True(t, dserrors.IsValueError(err))

	_, err = w.Write(nil)
	require.Error(t, err)
	assert.True(t, dserrors.IsValueError(err))

	// a value error does not poison the writer
	written, err := w.Write(int64(1))
	require.NoError(t, err)
	assert.True(t, written)

	stats, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Count)
}

func TestFatalLatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	w, err := NewWriter(path, WriterConfig{Type: dstype.TypeInt64})
	require.NoError(t, err)

	_, err = w.Write(int64(1))
	require.NoError(t, err)

	// sabotage the file handle so the final flush fails
	require.NoError(t, w.Close())

	_, err = w.Finish()
	require.Error(t, err)
	assert.True(t, dserrors.IsFatal(err))

	// every later call returns the latched error
	_, werr := w.Write(int64(2))
	assert.Same(t, err, werr)
	_, ferr := w.Finish()
	assert.Same(t, err, ferr)
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWriter(filepath.Join(dir, "col"), WriterConfig{Type: "no-such-type"})
	assert.True(t, dserrors.IsType(err, dserrors.ErrorTypeArgument))

	_, err = NewWriter(filepath.Join(dir, "col"), WriterConfig{
		Type:       dstype.TypeInt64,
		Hashfilter: &Hashfilter{Sliceno: 3, Slices: 3},
	})
	assert.True(t, dserrors.IsType(err, dserrors.ErrorTypeArgument))

	_, err = NewWriter(filepath.Join(dir, "col"), WriterConfig{
		Type:       dstype.TypeInt64,
		HasDefault: true,
		Default:    "bad",
	})
	assert.True(t, dserrors.IsType(err, dserrors.ErrorTypeArgument))

	_, err = NewWriter(filepath.Join(dir, "col"), WriterConfig{
		Type:       dstype.TypeInt64,
		HasDefault: true, // default None without none_support
	})
	assert.True(t, dserrors.IsType(err, dserrors.ErrorTypeArgument))
}

func TestIOErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWriter(filepath.Join(dir, "missing", "col"), WriterConfig{Type: dstype.TypeInt64})
	require.Error(t, err)
	assert.True(t, dserrors.IsFatal(err))

	_, err = NewReader(filepath.Join(dir, "absent"), ReaderConfig{})
	require.Error(t, err)
	assert.True(t, dserrors.IsFatal(err))

	_, err = Inspect(filepath.Join(dir, "absent"))
	require.Error(t, err)
	assert.True(t, dserrors.IsFatal(err))
}

func TestHashcheckAgreesWithWrite(t *testing.T) {
	dir := t.TempDir()
	values := []interface{}{int64(0), int64(1), int64(99), nil, int64(-5), float64(5)}

	for s := 0; s < 2; s++ {
		w, err := NewWriter(filepath.Join(dir, "col"), WriterConfig{
			Type:        dstype.TypeInt64,
			NoneSupport: true,
			Hashfilter:  &Hashfilter{Sliceno: s, Slices: 2, SpreadNone: true},
		})
		require.NoError(t, err)

		for _, v := range values {
			want, err := w.Hashcheck(v)
			require.NoError(t, err)
			got, err := w.Write(v)
			require.NoError(t, err)
			assert.Equal(t, want, got, "slice %d value %v", s, v)
		}
		_, err = w.Finish()
		require.NoError(t, err)
	}
}

func TestWantCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	values := make([]interface{}, 100)
	for i := range values {
		values[i] = int64(i)
	}
	writeAll(t, path, WriterConfig{Type: dstype.TypeInt64}, values)

	got := readAll(t, path, ReaderConfig{WantCount: 7})
	require.Len(t, got, 7)
	assert.Equal(t, int64(6), got[6])

	// larger than the file is not an error
	got = readAll(t, path, ReaderConfig{WantCount: 1000})
	assert.Len(t, got, 100)
}

func TestCallbackFiring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	values := make([]interface{}, 1000)
	for i := range values {
		values[i] = int64(i)
	}
	writeAll(t, path, WriterConfig{Type: dstype.TypeInt64}, values)

	var fired []int64
	cb := func(n int64) (CallbackAction, error) {
		fired = append(fired, n)
		return Continue, nil
	}

	got := readAll(t, path, ReaderConfig{Callback: cb, CallbackInterval: 250})
	assert.Len(t, got, 1000)
	assert.Equal(t, []int64{250, 500, 750, 1000}, fired)

	// an offset shifts the reported counts and the firing points
	fired = nil
	got = readAll(t, path, ReaderConfig{Callback: cb, CallbackInterval: 250, CallbackOffset: 100})
	assert.Len(t, got, 1000)
	assert.Equal(t, []int64{250, 500, 750, 1000, 1100}, fired)
}

func TestCallbackStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	values := make([]interface{}, 100)
	for i := range values {
		values[i] = int64(i)
	}
	writeAll(t, path, WriterConfig{Type: dstype.TypeInt64}, values)

	var fired []int64
	cb := func(n int64) (CallbackAction, error) {
		fired = append(fired, n)
		return Stop, nil
	}

	got := readAll(t, path, ReaderConfig{Callback: cb, CallbackInterval: 10})
	assert.Len(t, got, 10)
	assert.Equal(t, []int64{10}, fired)
}

func TestCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	values := make([]interface{}, 50)
	for i := range values {
		values[i] = int64(i)
	}
	writeAll(t, path, WriterConfig{Type: dstype.TypeInt64}, values)

	boom := dserrors.New(dserrors.ErrorTypeInternal, "boom")
	cb := func(n int64) (CallbackAction, error) {
		return Continue, boom
	}

	r, err := NewReader(path, ReaderConfig{Callback: cb, CallbackInterval: 10})
	require.NoError(t, err)
	defer r.Close()
	n := 0
	for r.Next() {
		n++
	}
	assert.Equal(t, 10, n)
	assert.Same(t, boom, r.Err())
}

func TestCallbackBadInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	writeAll(t, path, WriterConfig{Type: dstype.TypeInt64}, []interface{}{int64(1)})

	cb := func(n int64) (CallbackAction, error) { return Continue, nil }
	_, err := NewReader(path, ReaderConfig{Callback: cb})
	assert.True(t, dserrors.IsType(err, dserrors.ErrorTypeArgument))
}

func TestValuesSpanBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")

	// one magnitude bigger than a block plus enough small values to
	// push every block boundary through the middle of something
	huge := new(big.Int).Lsh(big.NewInt(1), 8*200_000)
	values := []interface{}{huge}
	for i := 0; i < 5000; i++ {
		values = append(values, int64(i))
	}
	values = append(values, new(big.Int).Neg(huge))

	writeAll(t, path, WriterConfig{Type: dstype.TypeNumber, Compression: compression.Zstd}, values)

	got := readAll(t, path, ReaderConfig{})
	require.Len(t, got, len(values))
	assert.Zero(t, huge.Cmp(got[0].(*big.Int)))
	assert.Equal(t, int64(0), got[1])
	assert.Zero(t, new(big.Int).Neg(huge).Cmp(got[len(got)-1].(*big.Int)))
}

func TestMappedReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	values := make([]interface{}, 300)
	for i := range values {
		values[i] = int64(i * 3)
	}
	writeAll(t, path, WriterConfig{Type: dstype.TypeInt64}, values)

	r, err := NewMappedReader(path, ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	var got []interface{}
	for r.Next() {
		got = append(got, r.Value())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, values, got)
	assert.Equal(t, int64(300), r.Info().Count)
}

func TestEmptyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "col")
	stats := writeAll(t, path, WriterConfig{Type: dstype.TypeUnicode, NoneSupport: true}, nil)
	assert.Equal(t, int64(0), stats.Count)
	assert.Nil(t, stats.Min)

	assert.Empty(t, readAll(t, path, ReaderConfig{}))
}
