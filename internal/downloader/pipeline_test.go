package downloader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
)

func TestPipelineNotFound(t *testing.T) {
	cat := &stubCatalog{records: []providers.Record{
		{Title: "Other Novel", Author: "Someone", URL: "/x"},
	}}
	f := &stubFactory{}
	d, stage, out := newTestDownloader(t, f, 2)

	p := &Pipeline{Catalog: cat, Downloader: d}
	_, err := p.Run(context.Background(), "Missing", "Nobody", out)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if exists(stage) || exists(out) {
		t.Fatal("nothing should be staged for an unknown novel")
	}
	if f.opened.Load() != 0 {
		t.Fatal("no session should be opened")
	}
}

func TestPipelineRunWithSelection(t *testing.T) {
	cat := &stubCatalog{
		records: []providers.Record{
			{Title: "Novel", Author: "A", URL: "/other"},
			{Title: "Novel", Author: "B", URL: "/book"},
		},
		chapters: makeChapters(5),
	}
	f := &stubFactory{}
	d, _, out := newTestDownloader(t, f, 2)

	p := &Pipeline{
		Catalog:    cat,
		Downloader: d,
		Select: func(all []providers.Chapter) ([]providers.Chapter, error) {
			return chapters.Filter(all, "2-3", "")
		},
	}
	art, err := p.Run(context.Background(), " Novel ", "B", out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := readFile(t, out); got != "###C2\nu1 body\n###C3\nu2 body\n" {
		t.Fatalf("artifact = %q", got)
	}
	if art.Path != filepath.Clean(out) {
		t.Fatalf("path = %s", art.Path)
	}
	if len(cat.searched) != 1 || cat.searched[0] != " Novel " {
		t.Fatalf("searched %v", cat.searched)
	}
}

func TestPipelinePlan(t *testing.T) {
	cat := &stubCatalog{
		records:  []providers.Record{{Title: "Novel", Author: "B", URL: "/book"}},
		chapters: makeChapters(6),
	}
	d, stage, _ := newTestDownloader(t, &stubFactory{}, 2)

	p := &Pipeline{
		Catalog:    cat,
		Downloader: d,
		Select: func(all []providers.Chapter) ([]providers.Chapter, error) {
			return chapters.Filter(all, "", "6,1")
		},
	}
	got, err := p.Plan(context.Background(), "Novel", "B")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "C1" || got[1].Title != "C6" {
		t.Fatalf("Plan = %+v", got)
	}
	if exists(stage) {
		t.Fatal("Plan must not stage anything")
	}

	p.Select = func([]providers.Chapter) ([]providers.Chapter, error) {
		return chapters.Filter(makeChapters(2), "5-9", "")
	}
	if _, err := p.Plan(context.Background(), "Novel", "B"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
