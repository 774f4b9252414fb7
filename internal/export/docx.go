package export

import (
	"io"

	"github.com/fumiama/go-docx"
)

func WriteDOCX(w io.Writer, b *Book) error {
	doc := docx.New().WithDefaultTheme().WithA4Page()

	if b.Title != "" {
		doc.AddParagraph().Justification("center").AddText(b.Title).Bold().Size("44")
	}

	for _, ch := range b.Chapters {
		if ch.Title != "" {
			doc.AddParagraph().AddText(ch.Title).Bold().Size("32")
		}
		for _, p := range ch.Paragraphs() {
			doc.AddParagraph().AddText(p)
		}
	}

	_, err := doc.WriteTo(w)
	return err
}
