package util

import (
	"bufio"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Novel sites serve simplified Chinese; without this the bypass transport
// fills in en-US and some mirrors redirect to a translated landing page.
const defaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.6"

type debugLogger interface {
	Debugf(string, ...any)
}

type HTTPClientOptions struct {
	Timeout    time.Duration
	UserAgent  string
	Cookie     string
	CookieFile string
	Headers    map[string]string
	// Transport replaces the hardened default transport, mainly for tests.
	Transport   http.RoundTripper
	DebugLogger debugLogger
}

// NewHTTPClient builds a client with its own cookie jar, so clients built by
// separate calls never share session state.
func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	base := opts.Transport
	if base == nil {
		base = newBypassTransport()
	}

	id := &identityTransport{
		next:    base,
		ua:      opts.UserAgent,
		cookie:  joinCookies(opts.Cookie, opts.CookieFile),
		headers: withDefaultHeaders(opts.Headers),
		log:     opts.DebugLogger,
	}

	if id.log != nil {
		id.log.Debugf("http client: timeout=%s ua=%q cookie_file=%q", opts.Timeout, opts.UserAgent, opts.CookieFile)
	}

	return &http.Client{Timeout: opts.Timeout, Transport: id, Jar: jar}, nil
}

func newBypassTransport() http.RoundTripper {
	return cloudflarebp.AddCloudFlareByPass(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	})
}

func withDefaultHeaders(extra map[string]string) http.Header {
	h := http.Header{}
	h.Set("Accept-Language", defaultAcceptLanguage)
	for k, v := range extra {
		h.Set(k, v)
	}
	return h
}

// identityTransport stamps every outgoing request with the session's browser
// identity. Headers already present on the request win, except User-Agent.
type identityTransport struct {
	next    http.RoundTripper
	ua      string
	cookie  string
	headers http.Header
	log     debugLogger
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	for k, vs := range t.headers {
		if out.Header.Get(k) == "" && len(vs) > 0 {
			out.Header.Set(k, vs[0])
		}
	}
	if t.ua != "" {
		out.Header.Set("User-Agent", t.ua)
	}
	if t.cookie != "" && out.Header.Get("Cookie") == "" {
		out.Header.Set("Cookie", t.cookie)
	}

	if t.log != nil {
		t.log.Debugf("%s %s", out.Method, out.URL)
	}

	return t.next.RoundTrip(out)
}

// joinCookies appends the first non-empty line of file to the inline cookie
// string. An unreadable file is ignored.
func joinCookies(inline, file string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(inline); s != "" {
		parts = append(parts, s)
	}
	if line := firstCookieLine(file); line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, "; ")
}

func firstCookieLine(path string) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}
	return DefaultUserAgent
}
