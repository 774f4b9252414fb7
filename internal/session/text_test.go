package session

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestVisibleText(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "br separated paragraphs",
			html: `<div id="content">&nbsp;&nbsp;&nbsp;&nbsp;First line<br/><br/>&nbsp;&nbsp;&nbsp;&nbsp;Second   line</div>`,
			want: "First line\n\nSecond line",
		},
		{
			name: "scripts are dropped",
			html: `<div id="content">before<script>var x = 1;</script><style>p{}</style> after</div>`,
			want: "before after",
		},
		{
			name: "block elements break lines",
			html: `<div id="content"><p>one</p><p>two <b>bold</b></p>tail</div>`,
			want: "one\ntwo bold\ntail",
		},
		{
			name: "source newlines collapse",
			html: "<div id=\"content\">\n  alpha\n  beta\n</div>",
			want: "alpha beta",
		},
		{
			name: "cjk text",
			html: `<div id="content">　　第一章<br>　　正文</div>`,
			want: "第一章\n正文",
		},
		{
			name: "empty region",
			html: `<div id="content">   </div>`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.html))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			got := VisibleText(doc.Find("#content"))
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
