package downloader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/session"
)

func TestContentFetcher(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	f := &stubFactory{fail: map[string]error{"bad": boom}}
	s, _ := f.NewSession(ctx)
	defer s.Close()

	fc := NewContentFetcher("", 0)
	if fc.Selector != DefaultSelector {
		t.Fatalf("selector = %q", fc.Selector)
	}

	text, err := fc.Fetch(ctx, s, providers.Chapter{URL: "u9", Title: "T"})
	if err != nil || text != "u9 body" {
		t.Fatalf("Fetch = %q, %v", text, err)
	}

	_, err = fc.Fetch(ctx, s, providers.Chapter{URL: "bad", Title: "B"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Chapter.URL != "bad" || !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	_, err = NewContentFetcher("#missing", 0).Fetch(ctx, s, providers.Chapter{URL: "u1"})
	if !errors.Is(err, session.ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestContentFetcherDelay(t *testing.T) {
	ctx := context.Background()
	f := &stubFactory{}
	s, _ := f.NewSession(ctx)
	defer s.Close()

	fc := NewContentFetcher("", 30*time.Millisecond)
	start := time.Now()
	if _, err := fc.Fetch(ctx, s, providers.Chapter{URL: "u0"}); err != nil {
		t.Fatal(err)
	}
	if el := time.Since(start); el < 30*time.Millisecond {
		t.Fatalf("returned after %s, want the pause", el)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	start = time.Now()
	long := NewContentFetcher("", time.Minute)
	if _, err := long.Fetch(cctx, s, providers.Chapter{URL: "u1"}); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("pause ignored cancellation")
	}
}

func TestFormatChapter(t *testing.T) {
	got := FormatChapter(providers.Chapter{Title: "第一章"}, "line1\nline2")
	if got != "###第一章\nline1\nline2\n" {
		t.Fatalf("got %q", got)
	}
}
