package downloader

import (
	"context"
	"fmt"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/session"
	"github.com/brogergvhs/noveld/internal/staging"
	"github.com/brogergvhs/noveld/internal/ui"
)

type State int

const (
	StateCreated State = iota
	StateSessionAcquired
	StateFetching
	StateSessionReleased
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSessionAcquired:
		return "session-acquired"
	case StateFetching:
		return "fetching"
	case StateSessionReleased:
		return "session-released"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Worker downloads one partition into its staging segment, strictly in
// partition order, over a single session it owns.
type Worker struct {
	sessions session.Factory
	fetcher  Fetcher
	area     *staging.Area
	log      *ui.Logger
	progress *ui.ProgressHandle
	stats    *ui.Stats

	skipBroken bool
	state      State
}

func (w *Worker) State() State {
	return w.state
}

func (w *Worker) Run(ctx context.Context, p chapters.Partition) (err error) {
	w.progress.SetTotal(len(p.Items))
	defer func() { w.progress.MarkDone(err == nil) }()

	seg, err := w.area.Writer(ctx, p.Index)
	if err != nil {
		w.state = StateFailed
		return &WorkerError{Partition: p.Index, Err: err}
	}

	// An empty partition still commits an empty segment so the merge sees
	// every index, but never opens a session.
	if len(p.Items) > 0 {
		err = w.fetchPartition(ctx, p, seg)
	}

	if err != nil {
		seg.Abort()
		w.state = StateFailed
		return err
	}

	if err := seg.Close(); err != nil {
		w.state = StateFailed
		return &WorkerError{Partition: p.Index, Err: err}
	}

	w.log.Debugf("segment %d committed (%d chapters, %d bytes)", p.Index, len(p.Items), seg.Size())
	w.state = StateDone
	return nil
}

func (w *Worker) fetchPartition(ctx context.Context, p chapters.Partition, seg *staging.Writer) error {
	sess, err := w.sessions.NewSession(ctx)
	if err != nil {
		return &WorkerError{Partition: p.Index, Err: fmt.Errorf("open session: %w", err)}
	}
	w.state = StateSessionAcquired

	defer func() {
		if cerr := sess.Close(); cerr != nil {
			w.log.Warnf("closing session: %v", cerr)
		}
		w.state = StateSessionReleased
	}()

	for _, ch := range p.Items {
		if err := ctx.Err(); err != nil {
			return &WorkerError{Partition: p.Index, Chapter: ch, Err: err}
		}

		w.state = StateFetching
		text, err := w.fetcher.Fetch(ctx, sess, ch)
		if err != nil {
			if w.skipBroken && ctx.Err() == nil {
				w.log.Warnf("skipping %q: %v", ch.Title, err)
				w.stats.ChaptersSkipped.Add(1)
				w.progress.Advance(0)
				continue
			}
			return &WorkerError{Partition: p.Index, Chapter: ch, Err: err}
		}

		n, err := seg.WriteString(FormatChapter(ch, text))
		if err != nil {
			return &WorkerError{Partition: p.Index, Chapter: ch, Err: err}
		}

		w.stats.ChaptersFetched.Add(1)
		w.stats.TotalBytes.Add(int64(n))
		w.progress.Advance(n)
		w.log.Debugf("fetched %q (%d bytes)", ch.Title, n)
	}

	return nil
}
