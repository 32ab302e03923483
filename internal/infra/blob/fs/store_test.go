package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"placementhub/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStorePutGetHeadListDelete(t *testing.T) { //nolint:cyclop
	ctx := context.Background()
	store := newTempStore(t)
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	info, err := store.Put(ctx, "reports/students.csv", bytes.NewReader([]byte("hello")), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"rows": "5"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "reports/students.csv" || info.Size != 5 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	h, err := store.Head(ctx, "reports/students.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	g, rc, err := store.Get(ctx, "reports/students.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" || g.ETag != h.ETag || g.Metadata["rows"] != "5" {
		t.Fatalf("unexpected get artifacts %+v", g)
	}
	list, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "reports/students.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "reports/students.csv")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "reports/students.csv")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "reports", "students.csv.meta")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("sidecar left behind: %v", err)
	}
}

func TestStorePutCreateOnlyAndOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "latest.json", bytes.NewReader([]byte("v1")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "latest.json", bytes.NewReader([]byte("v2")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	info, err := store.Put(ctx, "latest.json", bytes.NewReader([]byte("v22")), core.PutOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if info.Size != 3 {
		t.Fatalf("overwrite size %d", info.Size)
	}
	raw, err := os.ReadFile(filepath.Join(store.Root(), "latest.json"))
	if err != nil || string(raw) != "v22" {
		t.Fatalf("overwrite content %q %v", raw, err)
	}
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "../escape.txt", "/abs.txt", "a/../b", "x.meta"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: %v", err)
	}
	if _, _, err := store.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestStorePutReadErrorLeavesNoFile(t *testing.T) {
	store := newTempStore(t)
	if _, err := store.Put(context.Background(), "bad.bin", errorReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected copy error")
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty root, got %d entries", len(entries))
	}
}

func TestStorePutCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTempStore(t).Put(ctx, "k", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStoreListOrderAndPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for i := 2; i >= 0; i-- {
		k := "folder/f" + strconv.Itoa(i) + ".txt"
		if _, err := store.Put(ctx, k, bytes.NewReader([]byte("data")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	if _, err := store.Put(ctx, "other/x.txt", bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := store.List(ctx, "folder/")
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	for i, info := range list {
		if want := "folder/f" + strconv.Itoa(i) + ".txt"; info.Key != want {
			t.Fatalf("list[%d] = %s, want %s", i, info.Key, want)
		}
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 4 {
		t.Fatalf("list all: %v len=%d", err, len(all))
	}
}

func TestStoreCorruptSidecar(t *testing.T) {
	store := newTempStore(t)
	data := filepath.Join(store.Root(), "bad.txt")
	if err := os.WriteFile(data, []byte("data"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := os.WriteFile(data+metaSuffix, []byte("{"), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
	if _, err := store.List(context.Background(), ""); err == nil {
		t.Fatalf("expected list error on corrupt sidecar")
	}
	if _, err := store.Head(context.Background(), "bad.txt"); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewRejectsFileRoot(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "afile")
	if err := os.WriteFile(filePath, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := New(filePath); err == nil {
		t.Fatalf("expected error when root is a file")
	}
}

func TestStoreTimestampsUTC(t *testing.T) {
	info, err := newTempStore(t).Put(context.Background(), "time/test", bytes.NewReader([]byte("abc")), core.PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.LastModified.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %s", info.LastModified.Location())
	}
}
