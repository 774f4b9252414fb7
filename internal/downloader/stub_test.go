package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/session"
)

// stubFactory hands out sessions whose pages are "<url> body" unless the
// url is listed in fail.
type stubFactory struct {
	fail       map[string]error
	openErr    error
	onNavigate func(ctx context.Context, url string) error

	opened atomic.Int32
	closed atomic.Int32

	mu      sync.Mutex
	visited [][]string
}

func (f *stubFactory) NewSession(context.Context) (session.Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened.Add(1)

	f.mu.Lock()
	f.visited = append(f.visited, nil)
	id := len(f.visited) - 1
	f.mu.Unlock()

	return &stubSession{f: f, id: id}, nil
}

type stubSession struct {
	f        *stubFactory
	id       int
	url      string
	inflight atomic.Int32
	overlap  atomic.Bool
	closed   bool
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	if s.inflight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.inflight.Add(-1)

	if s.closed {
		return session.ErrClosed
	}

	s.f.mu.Lock()
	s.f.visited[s.id] = append(s.f.visited[s.id], url)
	s.f.mu.Unlock()

	if s.f.onNavigate != nil {
		if err := s.f.onNavigate(ctx, url); err != nil {
			return err
		}
	}
	if err, ok := s.f.fail[url]; ok {
		return err
	}

	s.url = url
	return nil
}

func (s *stubSession) Text(_ context.Context, selector string) (string, error) {
	if s.url == "" {
		return "", session.ErrNotNavigated
	}
	if selector != DefaultSelector {
		return "", session.ErrNoContent
	}
	return s.url + " body", nil
}

func (s *stubSession) Close() error {
	if s.closed {
		return errors.New("closed twice")
	}
	s.closed = true
	s.f.closed.Add(1)
	return nil
}

func makeChapters(n int) []providers.Chapter {
	out := make([]providers.Chapter, n)
	for i := range out {
		out[i] = providers.Chapter{
			URL:   fmt.Sprintf("u%d", i),
			Title: fmt.Sprintf("C%d", i+1),
		}
	}
	return out
}

type stubCatalog struct {
	records  []providers.Record
	chapters []providers.Chapter
	searched []string
}

func (c *stubCatalog) Search(_ context.Context, query string) ([]providers.Record, error) {
	c.searched = append(c.searched, query)
	return c.records, nil
}

func (c *stubCatalog) Chapters(_ context.Context, rec providers.Record) ([]providers.Chapter, error) {
	if rec.URL == "" {
		return nil, errors.New("no url")
	}
	return c.chapters, nil
}
