package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNoContent     = errors.New("content region not found")
	ErrNotNavigated  = errors.New("session has not navigated yet")
	ErrClosed        = errors.New("session is closed")
	ErrUnknownEngine = errors.New("unknown session engine")
)

const (
	EngineHTTP   = "http"
	EngineChrome = "chrome"

	DefaultTimeout = 30 * time.Second
)

type Session interface {
	// Navigate loads url, replacing the current page.
	Navigate(ctx context.Context, url string) error
	// Text returns the visible text of the first element matching selector
	// on the current page.
	Text(ctx context.Context, selector string) (string, error)
	Close() error
}

type Factory interface {
	NewSession(ctx context.Context) (Session, error)
}

type Options struct {
	UserAgent  string
	Cookie     string
	CookieFile string
	Timeout    time.Duration
	Headers    map[string]string

	// Transport overrides the HTTP engine's transport.
	Transport http.RoundTripper
	Logger    interface {
		Debugf(string, ...any)
	}
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// New returns the factory for the named engine.
func New(engine string, opts Options) (Factory, error) {
	switch engine {
	case "", EngineHTTP:
		return NewHTTPFactory(opts), nil
	case EngineChrome:
		return NewChromeFactory(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownEngine, engine, EngineHTTP, EngineChrome)
	}
}
