package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/skills-dossier/internal/logger"
)

// RenderOptions controls headless rendering of client-side CV pages.
type RenderOptions struct {
	Timeout time.Duration
	// Settle is how long to wait after the page is ready for scripts to
	// populate it.
	Settle time.Duration
	// WaitFor is the CSS selector that must be visible before capture.
	WaitFor string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Settle < 0 {
		o.Settle = 0
	} else if o.Settle == 0 {
		o.Settle = 2 * time.Second
	}
	if o.WaitFor == "" {
		o.WaitFor = "body"
	}
	return o
}

// Render loads urlStr in headless Chrome and returns the rendered document.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, urlStr string, opts RenderOptions) (string, error) {
	if !IsURL(urlStr) {
		return "", &Error{URL: urlStr, Message: "invalid URL"}
	}
	opts = opts.withDefaults()
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(DefaultUserAgent),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, opts.Timeout)
	defer cancelTimeout()

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitVisible(opts.WaitFor, chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}

	logger.Ctx(ctx).Debug().
		Str("url", urlStr).
		Int("bytes", len(html)).
		Dur("elapsed", time.Since(start)).
		Msg("page rendered")
	return html, nil
}
