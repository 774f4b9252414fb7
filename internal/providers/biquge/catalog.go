package biquge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/session"
)

const (
	DefaultSearchURL = "https://www.xbiquge.la/modules/article/waps.php"
	DefaultBaseURL   = "https://www.xbiquge.la"
)

type Catalog struct {
	client    *http.Client
	searchURL string
	base      *url.URL
	debugf    func(string, ...any)
}

var _ providers.Catalog = (*Catalog)(nil)

func New(c *http.Client, searchURL, baseURL string) (*Catalog, error) {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("base url %q: %w", baseURL, err)
	}
	if _, err := url.Parse(searchURL); err != nil {
		return nil, fmt.Errorf("search url %q: %w", searchURL, err)
	}

	return &Catalog{
		client:    c,
		searchURL: searchURL,
		base:      base,
		debugf:    func(string, ...any) {},
	}, nil
}

// WithDebug routes parsing diagnostics to debugf.
func (c *Catalog) WithDebug(debugf func(string, ...any)) *Catalog {
	if debugf != nil {
		c.debugf = debugf
	}
	return c
}

// Search posts query to the search form and returns one record per result
// row. A page without result rows yields an empty slice.
func (c *Catalog) Search(ctx context.Context, query string) ([]providers.Record, error) {
	form := url.Values{"searchkey": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	doc, err := session.ParseResponse(resp)
	if err != nil {
		return nil, err
	}

	return c.parseResults(doc), nil
}

func (c *Catalog) parseResults(doc *goquery.Document) []providers.Record {
	out := []providers.Record{}

	// The first row is the table header.
	rows := doc.Find("tr")
	if rows.Length() < 2 {
		return out
	}

	rows.Slice(1, goquery.ToEnd).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			c.debugf("search row %d has %d cells, skipping", i+1, cells.Length())
			return
		}

		first := cells.Eq(0)
		href, ok := first.Find("a").Attr("href")
		if !ok {
			c.debugf("search row %d has no link, skipping", i+1)
			return
		}

		out = append(out, providers.Record{
			Title:         strings.TrimSpace(first.Text()),
			URL:           c.resolve(href),
			LatestChapter: strings.TrimSpace(cells.Eq(1).Text()),
			Author:        strings.TrimSpace(cells.Eq(2).Text()),
			LastUpdated:   strings.TrimSpace(cells.Eq(3).Text()),
		})
	})

	return out
}

// Chapters lists the book's chapters in page order.
func (c *Catalog) Chapters(ctx context.Context, rec providers.Record) ([]providers.Chapter, error) {
	if rec.URL == "" {
		return nil, fmt.Errorf("record %q has no url", rec.Title)
	}

	doc, err := session.FetchDocument(ctx, c.client, rec.URL, c.searchURL)
	if err != nil {
		return nil, err
	}

	list := doc.Find("div#list")
	if list.Length() == 0 {
		return nil, fmt.Errorf("no chapter list on %s", rec.URL)
	}

	out := []providers.Chapter{}
	list.Find("dd").Each(func(_ int, dd *goquery.Selection) {
		href, ok := dd.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		out = append(out, providers.Chapter{
			URL:   c.resolve(href),
			Title: strings.TrimSpace(dd.Text()),
		})
	})

	c.debugf("found %d chapters on %s", len(out), rec.URL)
	return out, nil
}

func (c *Catalog) resolve(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return c.base.ResolveReference(u).String()
}
