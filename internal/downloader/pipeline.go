package downloader

import (
	"context"
	"fmt"

	"github.com/brogergvhs/noveld/internal/providers"
)

// Resolve finds the record matching title and author exactly and returns
// its chapter list in reading order.
func Resolve(ctx context.Context, cat providers.Catalog, title, author string) (providers.Record, []providers.Chapter, error) {
	records, err := cat.Search(ctx, title)
	if err != nil {
		return providers.Record{}, nil, fmt.Errorf("search %q: %w", title, err)
	}

	rec, err := providers.Select(records, title, author)
	if err != nil {
		return providers.Record{}, nil, err
	}

	chs, err := cat.Chapters(ctx, rec)
	if err != nil {
		return rec, nil, fmt.Errorf("chapters of %q: %w", rec.Title, err)
	}

	return rec, chs, nil
}

// Pipeline ties catalog resolution to a download run.
type Pipeline struct {
	Catalog    providers.Catalog
	Downloader *Downloader

	// Select narrows the resolved chapter list, e.g. to a range.
	Select func([]providers.Chapter) ([]providers.Chapter, error)
}

// Plan resolves the novel and applies Select without downloading anything.
func (p *Pipeline) Plan(ctx context.Context, title, author string) ([]providers.Chapter, error) {
	_, chs, err := Resolve(ctx, p.Catalog, title, author)
	if err != nil {
		return nil, err
	}

	if p.Select != nil {
		if chs, err = p.Select(chs); err != nil {
			return nil, err
		}
	}

	return chs, nil
}

// Run resolves the novel and downloads it to outPath. Nothing is staged
// when the novel cannot be resolved.
func (p *Pipeline) Run(ctx context.Context, title, author, outPath string) (*Artifact, error) {
	chs, err := p.Plan(ctx, title, author)
	if err != nil {
		return nil, err
	}

	return p.Downloader.Run(ctx, chs, outPath)
}
