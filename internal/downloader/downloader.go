package downloader

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/session"
	"github.com/brogergvhs/noveld/internal/staging"
	"github.com/brogergvhs/noveld/internal/ui"
)

type Options struct {
	Workers     int
	SkipBroken  bool
	KeepStaging bool
}

// Artifact is the merged output of a successful run.
type Artifact struct {
	Path     string
	Bytes    int64
	Chapters int
	Skipped  int
}

type Downloader struct {
	sessions session.Factory
	fetcher  Fetcher
	area     *staging.Area
	log      *ui.Logger
	progress *ui.MPBProgressManager
	stats    *ui.Stats
	opts     Options
}

func New(sessions session.Factory, fetcher Fetcher, area *staging.Area, log *ui.Logger, opts Options) *Downloader {
	if fetcher == nil {
		fetcher = NewContentFetcher(DefaultSelector, DefaultDelay)
	}
	if log == nil {
		log = ui.NewLoggerTo(io.Discard, false)
	}

	return &Downloader{
		sessions: sessions,
		fetcher:  fetcher,
		area:     area,
		log:      log,
		stats:    &ui.Stats{},
		opts:     opts,
	}
}

// WithProgress renders one bar per worker on pm.
func (d *Downloader) WithProgress(pm *ui.MPBProgressManager) *Downloader {
	d.progress = pm
	return d
}

// Run splits items across the configured number of workers, downloads every
// partition concurrently into the staging area and merges the segments into
// outPath. Any worker failure aborts the run before the merge; the staging
// area is then left in place for inspection.
func (d *Downloader) Run(ctx context.Context, items []providers.Chapter, outPath string) (*Artifact, error) {
	parts, err := chapters.Split(items, d.opts.Workers)
	if err != nil {
		return nil, err
	}
	if d.area.Covers(outPath) {
		return nil, fmt.Errorf("%w: staging %s contains the output %s", ErrInvalidArgument, d.area, outPath)
	}

	d.stats = &ui.Stats{}

	if err := d.area.Prepare(ctx); err != nil {
		return nil, err
	}
	d.log.Debugf("staging prepared at %s: %d chapters over %d workers", d.area, len(items), len(parts))

	if err := d.dispatch(ctx, parts); err != nil {
		d.log.Warnf("run failed, staged segments kept in %s", d.area)
		if cerr := d.area.Close(); cerr != nil {
			d.log.Warnf("closing staging: %v", cerr)
		}
		return nil, err
	}

	m := &Merger{
		area:        d.area,
		keepStaging: d.opts.KeepStaging,
		log:         d.log,
		progress:    d.progress.Register("merge"),
	}
	n, err := m.Merge(ctx, len(parts), outPath)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Path:     outPath,
		Bytes:    n,
		Chapters: int(d.stats.ChaptersFetched.Load()),
		Skipped:  int(d.stats.ChaptersSkipped.Load()),
	}, nil
}

// dispatch runs one worker per partition. A failing worker does not cancel
// its siblings; they finish and commit their segments, and the first error
// is reported once all have returned.
func (d *Downloader) dispatch(ctx context.Context, parts []chapters.Partition) error {
	var g errgroup.Group
	g.SetLimit(len(parts))

	for _, p := range parts {
		p := p
		w := d.newWorker(p.Index)
		g.Go(func() error {
			return w.Run(ctx, p)
		})
	}

	return g.Wait()
}

func (d *Downloader) newWorker(index int) *Worker {
	return &Worker{
		sessions:   d.sessions,
		fetcher:    d.fetcher,
		area:       d.area,
		log:        d.log.With("worker", index),
		progress:   d.progress.Register(fmt.Sprintf("worker %d", index)),
		stats:      d.stats,
		skipBroken: d.opts.SkipBroken,
	}
}
