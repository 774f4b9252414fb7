package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
)

// Markdown renders the book with one level-3 heading per chapter. Every
// ASCII punctuation character of the source text is escaped so novel text
// never turns into markup.
func Markdown(b *Book) []byte {
	var buf bytes.Buffer

	for _, ch := range b.Chapters {
		if ch.Title != "" {
			buf.WriteString("### ")
			buf.WriteString(escapeMarkdown(ch.Title))
			buf.WriteString("\n\n")
		}
		for _, p := range ch.Paragraphs() {
			buf.WriteString(escapeMarkdown(p))
			buf.WriteString("\n\n")
		}
	}

	return buf.Bytes()
}

func WriteHTML(w io.Writer, b *Book) error {
	var body bytes.Buffer
	if err := goldmark.Convert(Markdown(b), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	title := html.EscapeString(b.Title)
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n<h1>%s</h1>\n%s</body>\n</html>\n",
		title, title, body.String())
	return err
}

func escapeMarkdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
