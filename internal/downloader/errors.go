package downloader

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
)

var (
	ErrInvalidArgument = chapters.ErrInvalidArgument
	ErrNotFound        = providers.ErrNotFound
)

// FetchError reports a chapter whose page could not be loaded or had no
// content region.
type FetchError struct {
	Chapter providers.Chapter
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Chapter.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WorkerError carries the partition, and when known the chapter, that
// stopped a worker.
type WorkerError struct {
	Partition int
	Chapter   providers.Chapter
	Err       error
}

func (e *WorkerError) Error() string {
	if e.Chapter.URL != "" {
		return fmt.Sprintf("partition %d, chapter %q: %v", e.Partition, e.Chapter.Title, e.Err)
	}
	return fmt.Sprintf("partition %d: %v", e.Partition, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// MergeError reports a segment that could not be read back.
type MergeError struct {
	Index int
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge segment %d: %v", e.Index, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
