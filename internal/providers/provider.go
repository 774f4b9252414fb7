package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no search result matches the requested
// title and author.
var ErrNotFound = errors.New("novel not found")

type Chapter struct {
	URL   string
	Title string
}

// Record is one row of a catalog search.
type Record struct {
	Title         string
	URL           string
	LatestChapter string
	Author        string
	LastUpdated   string
}

type Catalog interface {
	Search(ctx context.Context, query string) ([]Record, error)
	Chapters(ctx context.Context, rec Record) ([]Chapter, error)
}

// Select picks the record whose title and author both match exactly.
func Select(records []Record, title, author string) (Record, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	for _, r := range records {
		if r.Title == title && r.Author == author {
			return r, nil
		}
	}

	return Record{}, fmt.Errorf("%w: %q by %q", ErrNotFound, title, author)
}
