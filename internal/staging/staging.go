package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"

	"github.com/brogergvhs/noveld/internal/util"
)

var ErrNotPrepared = errors.New("staging: area not prepared")

// ErrSegmentMissing is returned by Open when no committed segment exists
// for the requested index.
var ErrSegmentMissing = errors.New("staging: segment missing")

const segmentContentType = "text/plain; charset=utf-8"

// Area is the staging area for one run.
type Area struct {
	target string
	dir    string
	prefix string

	bucket *blob.Bucket
	owned  bool
}

// New returns an area for target, which is either a local directory or a
// gocloud.dev bucket URL. Nothing is touched until Prepare.
func New(target string) *Area {
	if strings.Contains(target, "://") {
		return &Area{target: target}
	}

	return &Area{target: target, dir: target}
}

// FromBucket uses an already opened bucket; keys are placed under prefix.
// The caller keeps ownership of the bucket.
func FromBucket(b *blob.Bucket, prefix string) *Area {
	return &Area{target: "bucket:" + prefix, prefix: prefix, bucket: b}
}

func (a *Area) String() string {
	return a.target
}

// Dir is the local directory backing the area, or "" for remote buckets.
func (a *Area) Dir() string {
	return a.dir
}

// Prepare gives the area a clean slate by deleting every segment key left
// under the prefix. Other files in a local directory are left alone. Calling
// it again is safe.
func (a *Area) Prepare(ctx context.Context) error {
	if a.dir != "" {
		if err := a.closeBucket(); err != nil {
			return err
		}
		if err := os.MkdirAll(a.dir, 0755); err != nil {
			return fmt.Errorf("staging: create %s: %w", a.dir, err)
		}

		abs, err := filepath.Abs(a.dir)
		if err != nil {
			return err
		}

		// Temp files stay next to the segments so the final rename never
		// crosses filesystems.
		b, err := fileblob.OpenBucket(abs, &fileblob.Options{NoTempDir: true})
		if err != nil {
			return fmt.Errorf("staging: open %s: %w", abs, err)
		}
		a.bucket, a.owned = b, true
	}

	if a.bucket == nil {
		b, err := blob.OpenBucket(ctx, a.target)
		if err != nil {
			return fmt.Errorf("staging: open %s: %w", a.target, err)
		}
		a.bucket, a.owned = b, true
	}

	return a.clear(ctx)
}

// Covers reports whether path lies inside the local staging directory.
// Remote areas cover nothing.
func (a *Area) Covers(path string) bool {
	if a.dir == "" {
		return false
	}

	dir, err := filepath.Abs(a.dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func Key(index int) string {
	return strconv.Itoa(index)
}

func (a *Area) key(index int) string {
	return a.prefix + Key(index)
}

// Writer opens the segment for partition index. The returned writer must be
// either closed (commit) or aborted.
func (a *Area) Writer(ctx context.Context, index int) (*Writer, error) {
	if a.bucket == nil {
		return nil, ErrNotPrepared
	}

	wctx, cancel := context.WithCancel(ctx)
	w, err := a.bucket.NewWriter(wctx, a.key(index), &blob.WriterOptions{
		ContentType: segmentContentType,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("staging: create segment %d: %w", index, err)
	}

	return &Writer{index: index, w: w, cancel: cancel}, nil
}

// Open returns a reader over a committed segment.
func (a *Area) Open(ctx context.Context, index int) (io.ReadCloser, error) {
	if a.bucket == nil {
		return nil, ErrNotPrepared
	}

	r, err := a.bucket.NewReader(ctx, a.key(index), nil)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %d", ErrSegmentMissing, index)
		}
		return nil, fmt.Errorf("staging: open segment %d: %w", index, err)
	}

	return r, nil
}

func (a *Area) Exists(ctx context.Context, index int) (bool, error) {
	if a.bucket == nil {
		return false, ErrNotPrepared
	}
	return a.bucket.Exists(ctx, a.key(index))
}

// Segments lists the committed segment indices in ascending order.
func (a *Area) Segments(ctx context.Context) ([]int, error) {
	if a.bucket == nil {
		return nil, ErrNotPrepared
	}

	var out []int
	it := a.bucket.List(&blob.ListOptions{Prefix: a.prefix})
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("staging: list: %w", err)
		}

		if n, ok := a.segmentIndex(obj.Key); ok {
			out = append(out, n)
		}
	}

	slices.Sort(out)
	return out, nil
}

// Remove deletes every segment and, for a local area, the directory once
// nothing else is left in it.
func (a *Area) Remove(ctx context.Context) error {
	if a.bucket != nil {
		if err := a.clear(ctx); err != nil {
			return err
		}
	}

	if err := a.closeBucket(); err != nil {
		return err
	}

	if a.dir != "" {
		util.RemoveIfEmpty(a.dir)
	}

	return nil
}

// Close releases the bucket without deleting anything.
func (a *Area) Close() error {
	return a.closeBucket()
}

func (a *Area) clear(ctx context.Context) error {
	it := a.bucket.List(&blob.ListOptions{Prefix: a.prefix})
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("staging: list: %w", err)
		}
		if obj.IsDir {
			continue
		}
		if _, ok := a.segmentIndex(obj.Key); !ok {
			continue
		}

		if err := a.bucket.Delete(ctx, obj.Key); err != nil && !isNotExist(err) {
			return fmt.Errorf("staging: delete %s: %w", obj.Key, err)
		}
	}
}

// segmentIndex parses a key written by Writer. Anything else under the
// prefix is not ours.
func (a *Area) segmentIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, a.prefix)
	if !ok || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (a *Area) closeBucket() error {
	if a.bucket == nil || !a.owned {
		return nil
	}

	err := a.bucket.Close()
	a.bucket, a.owned = nil, false
	return err
}

// Writer appends to one segment.
type Writer struct {
	index  int
	w      *blob.Writer
	cancel context.CancelFunc
	n      int64
	done   bool
}

// Size is the number of bytes written so far.
func (w *Writer) Size() int64 {
	return w.n
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, errors.New("staging: segment writer is finished")
	}

	n, err := w.w.Write(p)
	w.n += int64(n)
	return n, err
}

func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Close commits the segment.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.cancel()

	if err := w.w.Close(); err != nil {
		return fmt.Errorf("staging: commit segment %d: %w", w.index, err)
	}
	return nil
}

// Abort discards the segment. Safe to call after Close.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true

	// Cancelling before Close makes the bucket drop the pending write.
	w.cancel()
	_ = w.w.Close()
}

func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
