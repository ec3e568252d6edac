package dokuwiki

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

const samplePage = `<h1 class="sectionedit1">Start</h1>
<div class="level1">
<p>
</p>
<p>See <a href="/doku.php?id=wiki:Foo_Bar" class="wikilink1">Foo</a>,
<a href="https://www.dokuwiki.org" class="urlextern">external</a>,
<a href="ns:foo_bar" class="wikilink1">again</a>,
<a href="baz" class="wikilink2">baz</a> and <a name="anchor">an anchor</a>.</p>
<p><a href="later">second paragraph</a></p>
</div>`

func TestSubPageLinks(t *testing.T) {
	wiki := newFakeWiki()
	wiki.reply("wiki.getPageHTML", stringResponse(samplePage))
	client := newTestClient(t, wiki)

	got := client.SubPageLinks(context.Background(), "start")
	if got.ResolvedID != "start" {
		t.Errorf("ResolvedID = %q, want start", got.ResolvedID)
	}
	want := []string{"Foo Bar", "baz"}
	if strings.Join(got.Links, "|") != strings.Join(want, "|") {
		t.Errorf("Links = %q, want %q", got.Links, want)
	}
}

func TestSubPageLinks_Degrades(t *testing.T) {
	tests := []struct {
		name     string
		response string
		status   int
	}{
		{"server error", "fail", http.StatusInternalServerError},
		{"malformed response", "<methodResponse><params><param>", http.StatusOK},
		{"no paragraph", stringResponse("<h1>Title</h1><div>text</div>"), http.StatusOK},
		{"only blank paragraphs", stringResponse("<p> </p><p>\n\t</p>"), http.StatusOK},
		{"paragraph without links", stringResponse("<p>plain text</p>"), http.StatusOK},
		{"no value", emptyResponse(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wiki := newFakeWiki()
			wiki.on("wiki.getPageHTML", func([]string) (string, int) { return tt.response, tt.status })
			client := newTestClient(t, wiki)

			got := client.SubPageLinks(context.Background(), "wiki:missing")
			if got.ResolvedID != "wiki:missing" {
				t.Errorf("ResolvedID = %q, want wiki:missing", got.ResolvedID)
			}
			if got.Links == nil || len(got.Links) != 0 {
				t.Errorf("Links = %#v, want empty slice", got.Links)
			}
		})
	}
}

func TestGetPageDocument(t *testing.T) {
	wiki := newFakeWiki()
	wiki.reply("wiki.getPageHTML", stringResponse("<p>Hello <b>world</b></p>"))
	client := newTestClient(t, wiki)

	doc, ok := client.GetPageDocument(context.Background(), "start")
	if !ok {
		t.Fatal("GetPageDocument() failed")
	}
	if doc.ResolvedID != "start" {
		t.Errorf("ResolvedID = %q", doc.ResolvedID)
	}
	if doc.HTML != "<p>Hello <b>world</b></p>" {
		t.Errorf("HTML = %q", doc.HTML)
	}
	p := firstParagraph(doc.Document)
	if p == nil || textContent(p) != "Hello world" {
		t.Errorf("parsed document has no expected paragraph")
	}

	if calls := wiki.callsTo("wiki.getPageHTML"); len(calls) != 1 || calls[0].Params[0] != "start" {
		t.Errorf("getPageHTML calls = %+v", calls)
	}
}

func TestGetPageDocument_EmptyAndFailure(t *testing.T) {
	wiki := newFakeWiki()
	wiki.reply("wiki.getPageHTML", emptyResponse())
	client := newTestClient(t, wiki)

	doc, ok := client.GetPageDocument(context.Background(), "nothing")
	if !ok {
		t.Fatal("a response without value should still yield a document")
	}
	if doc.HTML != "" || doc.Document == nil {
		t.Errorf("doc = %+v, want empty parsed document", doc)
	}

	failing := newFakeWiki()
	failing.fail("wiki.getPageHTML")
	client = newTestClient(t, failing)
	if doc, ok := client.GetPageDocument(context.Background(), "x"); ok || doc != nil {
		t.Errorf("GetPageDocument() = (%v, %v), want (nil, false)", doc, ok)
	}
}

func TestFetchPageTitle(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		status    int
		wantTitle string
		wantOK    bool
	}{
		{"existing page", stringResponse("====== Syntax ======\nbody"), http.StatusOK, "wiki:syntax", true},
		{"empty page text", stringResponse(""), http.StatusOK, "", false},
		{"no value", emptyResponse(), http.StatusOK, "", false},
		{"zero", intResponse(0), http.StatusOK, "", false},
		{"failure", "x", http.StatusBadGateway, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wiki := newFakeWiki()
			wiki.on("wiki.getPage", func([]string) (string, int) { return tt.response, tt.status })
			client := newTestClient(t, wiki)

			title, ok := client.FetchPageTitle(context.Background(), "wiki:syntax")
			if title != tt.wantTitle || ok != tt.wantOK {
				t.Errorf("FetchPageTitle() = (%q, %v), want (%q, %v)", title, ok, tt.wantTitle, tt.wantOK)
			}
		})
	}
}
