// Package export turns a merged text artifact into other document formats.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/util"
)

const (
	FormatDOCX = "docx"
	FormatHTML = "html"
)

var ErrUnknownFormat = errors.New("unknown export format")

const headingMarker = "###"

// Chapter is one "###"-headed record of an artifact. Text before the first
// heading lands in a chapter with an empty title.
type Chapter struct {
	Title string
	Lines []string
}

// Book is a parsed artifact.
type Book struct {
	Title    string
	Chapters []Chapter
}

func Parse(r io.Reader, title string) (*Book, error) {
	b := &Book{Title: title}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var cur *Chapter
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")

		if t, ok := strings.CutPrefix(line, headingMarker); ok {
			b.Chapters = append(b.Chapters, Chapter{Title: strings.TrimSpace(t)})
			cur = &b.Chapters[len(b.Chapters)-1]
			continue
		}

		if cur == nil {
			b.Chapters = append(b.Chapters, Chapter{})
			cur = &b.Chapters[len(b.Chapters)-1]
		}
		cur.Lines = append(cur.Lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return b, nil
}

// Paragraphs drops blank lines from the chapter body.
func (c Chapter) Paragraphs() []string {
	out := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// OutputPath is src with its extension replaced by format.
func OutputPath(src, format string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "." + strings.ToLower(format)
}

// File converts the artifact at src and writes it atomically to dst.
func File(src, dst, format string) error {
	write, err := writerFor(format)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	title := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	book, err := Parse(f, title)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	return util.WriteFileAtomic(dst, func(out *os.File) error {
		return write(out, book)
	})
}

func writerFor(format string) (func(io.Writer, *Book) error, error) {
	switch strings.ToLower(format) {
	case FormatDOCX:
		return WriteDOCX, nil
	case FormatHTML:
		return WriteHTML, nil
	}
	return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownFormat, format, FormatDOCX, FormatHTML)
}
