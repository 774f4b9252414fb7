package downloader

import (
	"context"
	"time"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/session"
)

const (
	DefaultSelector = "#content"
	DefaultDelay    = 500 * time.Millisecond
)

type Fetcher interface {
	Fetch(ctx context.Context, s session.Session, ch providers.Chapter) (string, error)
}

// ContentFetcher loads a chapter page and returns the visible text of the
// content region, then pauses for Delay to bound the request rate.
type ContentFetcher struct {
	Selector string
	Delay    time.Duration
}

func NewContentFetcher(selector string, delay time.Duration) *ContentFetcher {
	if selector == "" {
		selector = DefaultSelector
	}
	if delay < 0 {
		delay = 0
	}

	return &ContentFetcher{Selector: selector, Delay: delay}
}

func (f *ContentFetcher) Fetch(ctx context.Context, s session.Session, ch providers.Chapter) (string, error) {
	if err := s.Navigate(ctx, ch.URL); err != nil {
		return "", &FetchError{Chapter: ch, Err: err}
	}

	text, err := s.Text(ctx, f.Selector)
	if err != nil {
		return "", &FetchError{Chapter: ch, Err: err}
	}

	if f.Delay > 0 {
		t := time.NewTimer(f.Delay)
		defer t.Stop()

		// Cancellation only cuts the pause short; the caller notices the
		// context before its next fetch.
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}

	return text, nil
}

// FormatChapter renders one chapter record of a segment.
func FormatChapter(ch providers.Chapter, content string) string {
	return "###" + ch.Title + "\n" + content + "\n"
}
