package downloader

import (
	"context"
	"os"
	"slices"

	"github.com/brogergvhs/noveld/internal/staging"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"
)

// Merger concatenates committed segments in ascending index order.
type Merger struct {
	area        *staging.Area
	keepStaging bool
	log         *ui.Logger
	progress    *ui.ProgressHandle
}

func NewMerger(area *staging.Area, keepStaging bool, log *ui.Logger) *Merger {
	return &Merger{area: area, keepStaging: keepStaging, log: log}
}

// Merge writes segments 0..count-1 to outPath and returns the artifact size.
// Every segment is checked before the artifact is touched, so a missing one
// leaves both the output and the staged segments as they were. The staging
// area is removed once the artifact is in place unless it is to be kept.
func (m *Merger) Merge(ctx context.Context, count int, outPath string) (total int64, err error) {
	m.progress.SetTotal(count)
	defer func() {
		m.progress.MarkDone(err == nil)
		if err != nil {
			if cerr := m.area.Close(); cerr != nil {
				m.logf("closing staging: %v", cerr)
			}
		}
	}()

	present, err := m.area.Segments(ctx)
	if err != nil {
		return 0, &MergeError{Index: -1, Err: err}
	}
	for i := 0; i < count; i++ {
		if _, ok := slices.BinarySearch(present, i); !ok {
			return 0, &MergeError{Index: i, Err: staging.ErrSegmentMissing}
		}
	}

	err = util.WriteFileAtomic(outPath, func(f *os.File) error {
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := m.area.Open(ctx, i)
			if err != nil {
				return &MergeError{Index: i, Err: err}
			}

			n, err := copySegment(f, r, m.progress.AddBytes)
			_ = r.Close()
			if err != nil {
				return &MergeError{Index: i, Err: err}
			}
			total += n
			m.progress.Advance(0)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if m.keepStaging {
		if err := m.area.Close(); err != nil {
			m.logf("closing staging: %v", err)
		}
		return total, nil
	}

	if err := m.area.Remove(ctx); err != nil {
		m.logf("removing staging %s: %v", m.area, err)
	}
	return total, nil
}

func (m *Merger) logf(format string, args ...any) {
	if m.log != nil {
		m.log.Warnf(format, args...)
	}
}
