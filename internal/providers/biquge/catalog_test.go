package biquge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brogergvhs/noveld/internal/providers"
)

const searchPage = `<html><body><table>
<tr><th>文章名称</th><th>最新章节</th><th>作者</th><th>更新</th></tr>
<tr><td class="even"><a href="/10/10489/">三体</a></td><td class="odd"><a href="/10/10489/1.html">第三十章</a></td><td class="even">刘慈欣</td><td class="odd">24-01-02</td></tr>
<tr><td class="even"><a href="https://mirror.example/7/">三体</a></td><td>后记</td><td>同人</td><td>23-05-06</td></tr>
<tr><td colspan="4">broken</td></tr>
</table></body></html>`

const bookPage = `<html><body>
<div id="list"><dl>
<dt>《三体》正文</dt>
<dd><a href="/10/10489/1.html">第一章 科学边界</a></dd>
<dd><a href="/10/10489/2.html"> 第二章 射手和农场主 </a></dd>
<dd>no link</dd>
<dd><a href="3.html">第三章</a></dd>
</dl></div>
</body></html>`

type fixture struct {
	srv        *httptest.Server
	searchKeys []string
	referers   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{}
	r := chi.NewRouter()

	r.Post("/modules/article/waps.php", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.searchKeys = append(f.searchKeys, r.PostForm.Get("searchkey"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.PostForm.Get("searchkey") == "无" {
			_, _ = w.Write([]byte(`<table><tr><th>文章名称</th></tr></table>`))
			return
		}
		_, _ = w.Write([]byte(searchPage))
	})

	r.Get("/10/10489/", func(w http.ResponseWriter, r *http.Request) {
		f.referers = append(f.referers, r.Header.Get("Referer"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(bookPage))
	})

	r.Get("/empty/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>gone</body></html>`))
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) catalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := New(f.srv.Client(), f.srv.URL+"/modules/article/waps.php", f.srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	c := f.catalog(t)

	got, err := c.Search(context.Background(), "三体")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []providers.Record{
		{Title: "三体", URL: f.srv.URL + "/10/10489/", LatestChapter: "第三十章", Author: "刘慈欣", LastUpdated: "24-01-02"},
		{Title: "三体", URL: "https://mirror.example/7/", LatestChapter: "后记", Author: "同人", LastUpdated: "23-05-06"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Search =\n%+v\nwant\n%+v", got, want)
	}
	if len(f.searchKeys) != 1 || f.searchKeys[0] != "三体" {
		t.Fatalf("search keys = %v", f.searchKeys)
	}

	rec, err := providers.Select(got, "三体", "刘慈欣")
	if err != nil || rec.URL != want[0].URL {
		t.Fatalf("Select = %+v, %v", rec, err)
	}
}

func TestSearchNoResults(t *testing.T) {
	c := newFixture(t).catalog(t)

	got, err := c.Search(context.Background(), "无")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d records", len(got))
	}
}

func TestChapters(t *testing.T) {
	f := newFixture(t)
	c := f.catalog(t)

	got, err := c.Chapters(context.Background(), providers.Record{Title: "三体", URL: f.srv.URL + "/10/10489/"})
	if err != nil {
		t.Fatalf("Chapters: %v", err)
	}

	want := []providers.Chapter{
		{URL: f.srv.URL + "/10/10489/1.html", Title: "第一章 科学边界"},
		{URL: f.srv.URL + "/10/10489/2.html", Title: "第二章 射手和农场主"},
		{URL: f.srv.URL + "/3.html", Title: "第三章"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Chapters =\n%+v\nwant\n%+v", got, want)
	}
	if len(f.referers) != 1 || f.referers[0] != f.srv.URL+"/modules/article/waps.php" {
		t.Fatalf("referers = %v", f.referers)
	}
}

func TestChaptersErrors(t *testing.T) {
	f := newFixture(t)
	c := f.catalog(t)
	ctx := context.Background()

	if _, err := c.Chapters(ctx, providers.Record{Title: "x"}); err == nil {
		t.Fatal("expected error for record without url")
	}
	if _, err := c.Chapters(ctx, providers.Record{URL: f.srv.URL + "/empty/"}); err == nil {
		t.Fatal("expected error for page without chapter list")
	}
	if _, err := c.Chapters(ctx, providers.Record{URL: f.srv.URL + "/missing/"}); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(http.DefaultClient, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if c.searchURL != DefaultSearchURL || c.base.String() != DefaultBaseURL {
		t.Fatalf("defaults = %s %s", c.searchURL, c.base)
	}
}
