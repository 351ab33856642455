package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	cdbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// defaultPageSettle is how long Navigate waits after the page loads before
// reading its markup. The catalog listing assembles its areas with scripts,
// so reading immediately returns an empty shell.
const defaultPageSettle = 2 * time.Second

// settings holds the tunable parameters for a browser session.
type settings struct {
	headless    bool
	userAgent   string
	downloadDir string
	pageSettle  time.Duration
	logger      *slog.Logger
}

// defaultSettings returns the settings used when no options are given.
func defaultSettings() settings {
	return settings{
		headless:   true,
		pageSettle: defaultPageSettle,
		logger:     slog.Default(),
	}
}

// Option configures a Browser.
type Option func(*settings)

// WithHeadless controls whether Chrome runs without a visible window.
// Headless is the default; disable it only when debugging extraction
// against the live listing.
func WithHeadless(headless bool) Option {
	return func(s *settings) {
		s.headless = headless
	}
}

// WithUserAgent overrides the browser User-Agent header.
// An empty value keeps the default behavior of drawing a random
// desktop User-Agent per session.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithDownloadDir enables file downloads and directs them into dir.
// The directory is created if it does not exist. Without this option,
// Chrome's default download handling applies and TriggerDownload is
// not useful.
func WithDownloadDir(dir string) Option {
	return func(s *settings) {
		s.downloadDir = dir
	}
}

// WithPageSettle sets how long Navigate waits after the page loads before
// reading the rendered markup.
func WithPageSettle(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.pageSettle = d
		}
	}
}

// WithLogger sets the logger for browser lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Browser owns a headless Chrome session used to render catalog pages and
// trigger archive downloads. One Browser serves a whole harvest run; the
// catalog walk and the download stage share its session state.
//
// Design decision: We drive a real browser rather than plain HTTP because
// the listing builds its markup with scripts and gates downloads behind
// them. A fixed User-Agent and an ordinary fetch get an empty shell.
type Browser struct {
	// ctx is the browser tab context all actions run against.
	ctx context.Context

	// cancel tears down the tab; allocCancel tears down the Chrome process.
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	pageSettle time.Duration
	userAgent  string
	logger     *slog.Logger
}

// New launches a Chrome session with the given options.
// The browser process starts eagerly so a missing Chrome binary fails here
// rather than on the first navigation. Callers must Close the returned
// Browser to release the process.
func New(ctx context.Context, opts ...Option) (*Browser, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	ua := s.userAgent
	if ua == "" {
		ua = RandomUserAgent()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(ua),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	b := &Browser{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		pageSettle:  s.pageSettle,
		userAgent:   ua,
		logger:      s.logger,
	}

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if s.downloadDir != "" {
		if err := b.allowDownloads(s.downloadDir); err != nil {
			b.Close()
			return nil, err
		}
	}

	b.logger.Debug("browser started",
		"headless", s.headless,
		"user_agent", ua,
		"download_dir", s.downloadDir)

	return b, nil
}

// allowDownloads configures Chrome to accept downloads into dir.
func (b *Browser) allowDownloads(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	// Chrome resolves the download path itself, so a relative path would
	// land wherever the Chrome process happens to run
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve download directory: %w", err)
	}

	err = chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return cdbrowser.
			SetDownloadBehavior(cdbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(abs).
			WithEventsEnabled(true).
			Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to configure downloads: %w", err)
	}
	return nil
}

// Navigate loads url, waits for the page to settle, and returns the
// rendered markup. It returns ErrEmptyPage when the browser produced no
// usable markup, which usually means the settle time was too short.
func (b *Browser) Navigate(ctx context.Context, url string) (string, error) {
	var html string
	err := b.run(ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.pageSettle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyPage, url)
	}
	return html, nil
}

// TriggerDownload navigates to url to start a file download.
// Chrome aborts the navigation when the response turns out to be a file,
// while the download itself continues in the background; that abort is
// treated as success. A nil return only means the request was handed to
// the browser. Whether a file actually lands is for the caller to observe
// in the download directory.
func (b *Browser) TriggerDownload(ctx context.Context, url string) error {
	err := b.run(ctx, chromedp.Navigate(url))
	if err != nil && !isDownloadAbort(err) {
		return fmt.Errorf("failed to request download from %s: %w", url, err)
	}
	return nil
}

// run executes chromedp actions against the browser tab while honoring the
// caller's context.
//
// Design decision: chromedp actions run against the tab's own context, so
// we wrap them in a goroutine and select on the caller's context. If the
// caller cancels, the action may continue briefly in the background before
// the tab notices. This is a known limitation of the approach.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(b.ctx, actions...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UserAgent returns the User-Agent header the session presents.
func (b *Browser) UserAgent() string {
	return b.userAgent
}

// Close shuts down the browser tab and the Chrome process.
// It is safe to call after a failed New.
func (b *Browser) Close() error {
	// Graceful shutdown first so Chrome flushes in-flight downloads
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
