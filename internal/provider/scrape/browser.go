package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tierlist/internal/constants"
	"tierlist/internal/domain"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"
)

// SearchPage describes a name query submitted through a page's search box.
type SearchPage struct {
	URL   string
	Input string
	Query string
	// Ready matches once results (or an empty-results marker) are rendered.
	Ready string
}

// Browser renders pages that need a real browser and returns their HTML.
type Browser interface {
	Search(ctx context.Context, page SearchPage) (string, error)
	Render(ctx context.Context, url, ready string) (string, error)
}

// ChromeBrowser drives headless Chrome through chromedp. Each call gets its
// own browser so a hung page never outlives its request.
type ChromeBrowser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   zerolog.Logger
}

func NewChromeBrowser(execPath string, logger zerolog.Logger) *ChromeBrowser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1280, 900),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeBrowser{allocCtx: allocCtx, cancel: cancel, logger: logger}
}

func (b *ChromeBrowser) Close() {
	b.cancel()
}

func (b *ChromeBrowser) Search(ctx context.Context, page SearchPage) (string, error) {
	tabCtx, done, err := b.open(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if err := b.run(ctx, tabCtx, "page load", constants.ScrapePageLoadTimeout,
		chromedp.Navigate(page.URL),
		chromedp.WaitVisible(page.Input, chromedp.ByQuery),
	); err != nil {
		return "", err
	}

	var html string
	if err := b.run(ctx, tabCtx, "search results", constants.ScrapeResultTimeout,
		chromedp.SendKeys(page.Input, page.Query+kb.Enter, chromedp.ByQuery),
		chromedp.WaitReady(page.Ready, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", err
	}
	return html, nil
}

func (b *ChromeBrowser) Render(ctx context.Context, url, ready string) (string, error) {
	tabCtx, done, err := b.open(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if err := b.run(ctx, tabCtx, "page load", constants.ScrapePageLoadTimeout,
		chromedp.Navigate(url),
	); err != nil {
		return "", err
	}

	var html string
	if err := b.run(ctx, tabCtx, "profile render", constants.ScrapeResultTimeout,
		chromedp.WaitReady(ready, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", err
	}
	return html, nil
}

// open starts a browser for one call. The first Run allocates it without a
// deadline; the request context is tied to the tab so an aborted request
// tears the browser down.
func (b *ChromeBrowser) open(ctx context.Context) (context.Context, func(), error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	stop := context.AfterFunc(ctx, cancel)
	done := func() {
		stop()
		cancel()
	}

	start := time.Now()
	if err := chromedp.Run(tabCtx); err != nil {
		done()
		if ctx.Err() != nil {
			return nil, nil, contextError(ctx, "browser start")
		}
		return nil, nil, fmt.Errorf("failed to start browser: %w: %v", domain.ErrUpstream, err)
	}
	b.logger.Debug().Dur("startup", time.Since(start)).Msg("browser started")
	return tabCtx, done, nil
}

func (b *ChromeBrowser) run(reqCtx, tabCtx context.Context, step string, timeout time.Duration, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	err := chromedp.Run(stepCtx, actions...)
	switch {
	case err == nil:
		return nil
	case reqCtx.Err() != nil:
		return contextError(reqCtx, step)
	case errors.Is(err, context.DeadlineExceeded) || stepCtx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("%s exceeded %s: %w", step, timeout, domain.ErrTimeout)
	default:
		return fmt.Errorf("%s: %w: %v", step, domain.ErrUpstream, err)
	}
}

// contextError reports an expired caller deadline as a timeout; a cancelled
// caller gets its own error back.
func contextError(ctx context.Context, step string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", step, domain.ErrTimeout, ctx.Err())
	}
	return ctx.Err()
}
