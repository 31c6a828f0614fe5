package main

import (
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exaxorg/accelerator-sub001/pkg/column"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
	"github.com/exaxorg/accelerator-sub001/pkg/testutil"
)

func TestDecodeJSONValue(t *testing.T) {
	cases := []struct {
		typ  dstype.Type
		line string
		want interface{}
	}{
		{dstype.TypeInt64, `42`, "42"},
		{dstype.TypeInt64, `null`, nil},
		{dstype.TypeFloat64, `2.5`, "2.5"},
		{dstype.TypeUnicode, `"hello"`, "hello"},
		{dstype.TypeBool, `true`, true},
		{dstype.TypeBytes, `"AAEC"`, []byte{0, 1, 2}},
	}
	for _, tc := range cases {
		got, err := decodeJSONValue(tc.typ, []byte(tc.line))
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestJSONValue(t *testing.T) {
	assert.Nil(t, jsonValue(nil))
	assert.Equal(t, int64(7), jsonValue(int64(7)))
	assert.Equal(t, json.Number("123"), jsonValue(big.NewInt(123)))
	assert.Equal(t, "NaN", jsonValue(math.NaN()))
	assert.Equal(t, "+Inf", jsonValue(math.Inf(1)))
	assert.Equal(t, "AAEC", jsonValue([]byte{0, 1, 2}))
	assert.Equal(t, "(1+2i)", jsonValue(complex(1, 2)))
	assert.Equal(t, "2024-06-01", jsonValue(dstype.Date{Year: 2024, Month: 6, Day: 1}))
}

func TestRunWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(input, []byte("1\n\"20\"\nnull\n-3\n"), 0o644))

	out := filepath.Join(dir, "col")
	ctx, cancel := testutil.TestContext(t)
	defer cancel()
	err := runWrite(ctx, out, writeOptions{
		typeName:    dstype.TypeInt64,
		input:       input,
		compression: "zstd",
		noneSupport: true,
	})
	require.NoError(t, err)

	info, err := column.Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, dstype.TypeInt64, info.Type)
	assert.Equal(t, int64(4), info.Count)
	assert.Equal(t, int64(-3), info.Min)
	assert.Equal(t, int64(20), info.Max)

	assert.Equal(t,
		[]interface{}{int64(1), int64(20), nil, int64(-3)},
		testutil.ReadColumn(t, out))
}

func TestRunWriteDefault(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(input, []byte("\"5\"\n\"junk\"\n"), 0o644))

	out := filepath.Join(dir, "col")
	ctx, cancel := testutil.TestContext(t)
	defer cancel()
	err := runWrite(ctx, out, writeOptions{
		typeName:    dstype.TypeInt64,
		input:       input,
		compression: "gzip",
		defaultText: "-1",
		hasDefault:  true,
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]interface{}{int64(5), int64(-1)},
		testutil.ReadColumn(t, out))
}

func TestRunPartition(t *testing.T) {
	values := make([]interface{}, 200)
	for i := range values {
		values[i] = int64(i)
	}
	src := testutil.WriteColumn(t, dstype.TypeInt64, values)

	outDir := t.TempDir()
	ctx, cancel := testutil.TestContext(t)
	defer cancel()
	require.NoError(t, runPartition(ctx, src, outDir, 3, false))

	total := int64(0)
	for s := 0; s < 3; s++ {
		info, err := column.Inspect(filepath.Join(outDir, fmt.Sprintf("%s.%d", filepath.Base(src), s)))
		require.NoError(t, err)
		total += info.Count
	}
	assert.Equal(t, int64(200), total)
}
