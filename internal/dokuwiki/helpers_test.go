package dokuwiki

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/olgasafonova/dokuwiki-mcp-server/internal/transport"
)

var (
	methodNameRe  = regexp.MustCompile(`<methodName>(.*?)</methodName>`)
	stringParamRe = regexp.MustCompile(`<string>(.*?)</string>`)
)

// rpcCall is one request seen by fakeWiki
type rpcCall struct {
	Method string
	Params []string
	Body   string
}

// fakeWiki is an XML-RPC endpoint answering by method name. A handler
// returns the response body and HTTP status; unknown methods get a 404.
type fakeWiki struct {
	mu       sync.Mutex
	calls    []rpcCall
	handlers map[string]func(params []string) (string, int)
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{handlers: make(map[string]func([]string) (string, int))}
}

func (f *fakeWiki) on(method string, fn func(params []string) (string, int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = fn
}

// reply registers a fixed successful response
func (f *fakeWiki) reply(method, body string) {
	f.on(method, func([]string) (string, int) { return body, http.StatusOK })
}

func (f *fakeWiki) fail(method string) {
	f.on(method, func([]string) (string, int) { return "internal error", http.StatusInternalServerError })
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	body := string(raw)

	call := rpcCall{Body: body}
	if m := methodNameRe.FindStringSubmatch(body); m != nil {
		call.Method = m[1]
	}
	for _, m := range stringParamRe.FindAllStringSubmatch(body, -1) {
		call.Params = append(call.Params, html.UnescapeString(m[1]))
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn, ok := f.handlers[call.Method]
	if !ok {
		f.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, "no handler for %s", call.Method)
		return
	}
	// Handlers run under the lock so they may keep unguarded state
	resp, status := fn(call.Params)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp))
}

// callsTo returns the requests made for method, in order
func (f *fakeWiki) callsTo(method string) []rpcCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rpcCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient starts wiki as an HTTP server and returns a client for it
func newTestClient(t *testing.T, wiki *fakeWiki, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(wiki)
	t.Cleanup(server.Close)

	tr := transport.NewHTTP(server.URL,
		transport.WithHTTPClient(server.Client()),
		transport.WithLogger(quietLogger()),
	)
	return NewClient(tr, append([]ClientOption{WithLogger(quietLogger())}, opts...)...)
}

// scriptedPicker returns indexes from seq in turn, wrapping around
type scriptedPicker struct {
	mu  sync.Mutex
	seq []int
	pos int
}

func (p *scriptedPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.seq[p.pos%len(p.seq)] % n
	p.pos++
	return i
}

func response(value string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value>` + value + `</value></param></params></methodResponse>`
}

func stringResponse(s string) string {
	return response("<string>" + html.EscapeString(s) + "</string>")
}

func intResponse(n int) string {
	return response(fmt.Sprintf("<int>%d</int>", n))
}

func boolResponse(b bool) string {
	if b {
		return response("<boolean>1</boolean>")
	}
	return response("<boolean>0</boolean>")
}

func emptyResponse() string {
	return `<?xml version="1.0"?><methodResponse><params></params></methodResponse>`
}

// pageListResponse mimics dokuwiki.getPagelist: one struct per page
func pageListResponse(ids ...string) string {
	var sb strings.Builder
	sb.WriteString("<array><data>")
	for _, id := range ids {
		sb.WriteString("<value><struct><member><name>id</name><value><string>")
		sb.WriteString(id)
		sb.WriteString("</string></value></member><member><name>size</name><value><int>42</int></value></member></struct></value>")
	}
	sb.WriteString("</data></array>")
	return response(sb.String())
}

// searchResponse mimics dokuwiki.search: structs with id and score
func searchResponse(ids ...string) string {
	var sb strings.Builder
	sb.WriteString("<array><data>")
	for i, id := range ids {
		fmt.Fprintf(&sb, "<value><struct><member><name>id</name><value><string>%s</string></value></member>"+
			"<member><name>score</name><value><int>%d</int></value></member></struct></value>", id, len(ids)-i)
	}
	sb.WriteString("</data></array>")
	return response(sb.String())
}
