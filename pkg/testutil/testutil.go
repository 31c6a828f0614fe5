// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/exaxorg/accelerator-sub001/pkg/column"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
)

// TestLogger creates a logger that writes to the test output and is
// cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a context with a 30-second timeout. The caller
// must call the returned cancel function.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// WriteColumn writes values (nil meaning None) to a fresh column file
// under the test's temp dir and returns its path.
func WriteColumn(t *testing.T, typ dstype.Type, values []interface{}) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "column")
	w, err := column.NewWriter(path, column.WriterConfig{Type: typ, NoneSupport: true})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()
	for i, v := range values {
		if _, err := w.Write(v); err != nil {
			t.Fatalf("Write value %d: %v", i, err)
		}
	}
	if _, err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return path
}

// ReadColumn reads every value (nil meaning None) from a column file.
func ReadColumn(t *testing.T, path string) []interface{} {
	t.Helper()

	r, err := column.NewReader(path, column.ReaderConfig{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	var out []interface{}
	for r.Next() {
		out = append(out, r.Value())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}
