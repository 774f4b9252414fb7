package session

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/brogergvhs/noveld/internal/util"
)

// ChromeFactory starts one headless browser per session so cookies and
// storage are never shared between workers.
type ChromeFactory struct {
	opts Options
}

func NewChromeFactory(opts Options) *ChromeFactory {
	return &ChromeFactory{opts: opts}
}

func (f *ChromeFactory) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(util.PickUserAgent(f.opts.UserAgent)),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
}

func (f *ChromeFactory) NewSession(ctx context.Context) (Session, error) {
	// The browser must outlive the caller's per-call contexts; only the
	// session's Close tears it down.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), f.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	if f.opts.Logger != nil {
		f.opts.Logger.Debugf("chrome session started (ua=%q)", util.PickUserAgent(f.opts.UserAgent))
	}

	return &chromeSession{
		opts:        f.opts,
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
	}, nil
}

type chromeSession struct {
	opts        Options
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	current string
	closed  bool
}

// bound derives a context from the tab that also ends when the caller's
// context does or the navigation timeout expires.
func (s *chromeSession) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(s.ctx, s.opts.timeout())
	stop := context.AfterFunc(ctx, cancel)

	return tctx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, target string) error {
	if s.closed {
		return ErrClosed
	}

	tctx, cancel := s.bound(ctx)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("navigate %s: %w", target, err)
	}

	s.current = target
	return nil
}

func (s *chromeSession) Text(ctx context.Context, selector string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if s.current == "" {
		return "", ErrNotNavigated
	}

	tctx, cancel := s.bound(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(tctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return "", fmt.Errorf("query %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: %s on %s", ErrNoContent, selector, s.current)
	}

	var text string
	if err := chromedp.Run(tctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read %s: %w", selector, err)
	}

	return normalizeLines(text), nil
}

func (s *chromeSession) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.cancel()
	s.allocCancel()
	return nil
}
