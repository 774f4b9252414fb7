package staging

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func openMem(t *testing.T) *blob.Bucket {
	t.Helper()

	b, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func writeSegment(t *testing.T, a *Area, index int, data string) {
	t.Helper()

	w, err := a.Writer(context.Background(), index)
	if err != nil {
		t.Fatalf("Writer(%d): %v", index, err)
	}
	if _, err := w.WriteString(data); err != nil {
		t.Fatalf("Write(%d): %v", index, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(%d): %v", index, err)
	}
}

func readSegment(t *testing.T, a *Area, index int) string {
	t.Helper()

	r, err := a.Open(context.Background(), index)
	if err != nil {
		t.Fatalf("Open(%d): %v", index, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(%d): %v", index, err)
	}
	return string(b)
}

func TestBucketAreaRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := openMem(t)

	// A key outside the prefix must survive Prepare and Remove.
	if err := b.WriteAll(ctx, "other/keep", []byte("x"), nil); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteAll(ctx, "run/7", []byte("stale"), nil); err != nil {
		t.Fatal(err)
	}

	a := FromBucket(b, "run/")
	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if ok, _ := a.Exists(ctx, 7); ok {
		t.Fatalf("Prepare left a stale segment behind")
	}

	writeSegment(t, a, 2, "two")
	writeSegment(t, a, 0, "zero")
	writeSegment(t, a, 10, "ten")

	got, err := a.Segments(ctx)
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 2, 10}) {
		t.Fatalf("Segments = %v", got)
	}

	if s := readSegment(t, a, 2); s != "two" {
		t.Fatalf("segment 2 = %q", s)
	}

	if err := a.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := b.Exists(ctx, "run/0"); ok {
		t.Fatalf("Remove left segments behind")
	}
	if ok, _ := b.Exists(ctx, "other/keep"); !ok {
		t.Fatalf("Remove deleted a key outside the prefix")
	}
}

func TestOpenMissingSegment(t *testing.T) {
	a := FromBucket(openMem(t), "")
	if err := a.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	_, err := a.Open(context.Background(), 3)
	if !errors.Is(err, ErrSegmentMissing) {
		t.Fatalf("expected ErrSegmentMissing, got %v", err)
	}
}

func TestAbortDiscardsSegment(t *testing.T) {
	ctx := context.Background()
	a := FromBucket(openMem(t), "")
	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	w, err := a.Writer(ctx, 1)
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	_, _ = w.WriteString("half a chapter")
	w.Abort()
	w.Abort()

	if ok, _ := a.Exists(ctx, 1); ok {
		t.Fatalf("aborted segment was committed")
	}
	if _, err := w.WriteString("more"); err == nil {
		t.Fatalf("write after abort succeeded")
	}
}

func TestEmptySegmentIsCommitted(t *testing.T) {
	ctx := context.Background()
	a := FromBucket(openMem(t), "")
	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	writeSegment(t, a, 0, "")

	if s := readSegment(t, a, 0); s != "" {
		t.Fatalf("segment 0 = %q", s)
	}
}

func TestUnpreparedArea(t *testing.T) {
	a := New(t.TempDir())

	if _, err := a.Writer(context.Background(), 0); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("expected ErrNotPrepared, got %v", err)
	}
}

func TestLocalArea(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "novel")

	// Leftovers from a failed run.
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "0"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	a := New(dir)
	if a.Dir() != dir {
		t.Fatalf("Dir = %q", a.Dir())
	}
	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if ok, _ := a.Exists(ctx, 0); ok {
		t.Fatalf("Prepare kept the old segment")
	}

	writeSegment(t, a, 0, "SEG0")
	writeSegment(t, a, 1, "SEG1")

	if b, err := os.ReadFile(filepath.Join(dir, "1")); err != nil || string(b) != "SEG1" {
		t.Fatalf("segment file 1 = %q, %v", b, err)
	}

	// Preparing twice is harmless.
	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if got, _ := a.Segments(ctx); len(got) != 0 {
		t.Fatalf("second Prepare left %v", got)
	}

	writeSegment(t, a, 0, "again")
	if err := a.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("staging dir still exists: %v", err)
	}
}

func TestURLArea(t *testing.T) {
	ctx := context.Background()
	a := New("mem://")
	if a.Dir() != "" {
		t.Fatalf("URL area reported a local dir")
	}

	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	defer a.Close()

	writeSegment(t, a, 0, "x")
	if s := readSegment(t, a, 0); s != "x" {
		t.Fatalf("segment 0 = %q", s)
	}
}

func TestLocalAreaLeavesForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	other := filepath.Join(dir, "other-novel.txt")
	if err := os.WriteFile(other, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "7"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	a := New(dir)
	if err := a.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got, _ := a.Segments(ctx); len(got) != 0 {
		t.Fatalf("Prepare left segments %v", got)
	}

	writeSegment(t, a, 0, "SEG0")
	if err := a.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if b, err := os.ReadFile(other); err != nil || string(b) != "keep me" {
		t.Fatalf("foreign file = %q, %v", b, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "0")); !os.IsNotExist(err) {
		t.Fatalf("segment 0 survived Remove: %v", err)
	}
}

func TestCovers(t *testing.T) {
	root := t.TempDir()
	a := New(filepath.Join(root, "out"))

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "out"), true},
		{filepath.Join(root, "out", "novel.txt"), true},
		{filepath.Join(root, "out", "sub", "novel.txt"), true},
		{filepath.Join(root, "novel.txt"), false},
		{filepath.Join(root, "outside", "novel.txt"), false},
		{filepath.Join(root, "out", "..hidden", "novel.txt"), true},
		{filepath.Join(root, "out2", "novel.txt"), false},
	}
	for _, c := range cases {
		if got := a.Covers(c.path); got != c.want {
			t.Errorf("Covers(%q) = %v, want %v", c.path, got, c.want)
		}
	}

	if New("mem://").Covers(filepath.Join(root, "novel.txt")) {
		t.Errorf("URL area covers a local path")
	}
}
