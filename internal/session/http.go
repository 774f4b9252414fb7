package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/brogergvhs/noveld/internal/util"
)

type HTTPFactory struct {
	opts Options
}

func NewHTTPFactory(opts Options) *HTTPFactory {
	return &HTTPFactory{opts: opts}
}

func (f *HTTPFactory) NewSession(_ context.Context) (Session, error) {
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     f.opts.timeout(),
		UserAgent:   util.PickUserAgent(f.opts.UserAgent),
		Cookie:      f.opts.Cookie,
		CookieFile:  f.opts.CookieFile,
		Headers:     f.opts.Headers,
		Transport:   f.opts.Transport,
		DebugLogger: f.opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create http session: %w", err)
	}

	return &httpSession{client: client}, nil
}

type httpSession struct {
	client  *http.Client
	doc     *goquery.Document
	current string
	closed  bool
}

func (s *httpSession) Navigate(ctx context.Context, target string) error {
	if s.closed {
		return ErrClosed
	}

	doc, err := FetchDocument(ctx, s.client, target, s.current)
	if err != nil {
		return err
	}

	s.doc = doc
	s.current = target
	return nil
}

func (s *httpSession) Text(_ context.Context, selector string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if s.doc == nil {
		return "", ErrNotNavigated
	}

	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s on %s", ErrNoContent, selector, s.current)
	}

	return VisibleText(sel), nil
}

func (s *httpSession) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.doc = nil
	s.client.CloseIdleConnections()
	return nil
}

// FetchDocument GETs target and parses it, decoding legacy charsets such as
// GBK according to the response headers and meta tags.
func FetchDocument(ctx context.Context, c *http.Client, target, referer string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	return ParseResponse(resp)
}

// ParseResponse consumes and closes resp.
func ParseResponse(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, resp.Request.URL)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resp.Request.URL, err)
	}

	// DetermineEncoding only sniffs the first KB; trust valid UTF-8 unless a
	// header or meta tag said otherwise.
	enc, _, certain := charset.DetermineEncoding(raw, resp.Header.Get("Content-Type"))
	if !certain && utf8.Valid(raw) {
		return goquery.NewDocumentFromReader(bytes.NewReader(raw))
	}

	return goquery.NewDocumentFromReader(enc.NewDecoder().Reader(bytes.NewReader(raw)))
}
