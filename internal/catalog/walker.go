package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/nao1215/isoharvest/internal/model"
	"github.com/nao1215/isoharvest/internal/retry"
)

// Navigator renders a catalog page and returns its markup.
// The browser package provides the production implementation; tests
// substitute a canned one.
type Navigator interface {
	// Navigate loads url and returns the rendered markup.
	Navigate(ctx context.Context, url string) (string, error)
}

// Walker pages through the catalog listing and accumulates download
// batches. It owns the pagination loop; area extraction is the Parser's
// job and merge/orphan routing is the Catalog accumulator's.
type Walker struct {
	// navigator fetches rendered listing pages.
	navigator Navigator

	// parser extracts areas from fetched markup.
	parser *Parser

	// baseURL is the catalog URL the page query parameter is appended to.
	baseURL *url.URL

	// maxPages bounds the pagination loop. The listing ends itself with an
	// empty page; the bound only catches a layout change that makes every
	// page look populated.
	maxPages int

	// strict aborts on field validation failures instead of skipping.
	strict bool

	// policy retries page navigations. Exhausting it is fatal: without a
	// complete walk the batch accumulator is not trustworthy.
	policy retry.Policy

	// logger receives walk progress and skip warnings.
	logger *slog.Logger

	// pagesWalked counts fetched pages, including the empty page that
	// ended the walk.
	pagesWalked int
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaxPages sets the maximum number of listing pages to fetch.
func WithMaxPages(maxPages int) WalkerOption {
	return func(w *Walker) {
		if maxPages > 0 {
			w.maxPages = maxPages
		}
	}
}

// WithStrictValidation makes field validation failures abort the walk
// instead of skipping the single malformed message entry.
func WithStrictValidation(strict bool) WalkerOption {
	return func(w *Walker) {
		w.strict = strict
	}
}

// WithRetryPolicy sets the retry policy for page navigations.
func WithRetryPolicy(policy retry.Policy) WalkerOption {
	return func(w *Walker) {
		w.policy = policy
	}
}

// WithWalkerLogger sets the logger for walk progress and warnings.
func WithWalkerLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// defaultMaxPages bounds the pagination loop when no option overrides it.
const defaultMaxPages = 100

// NewWalker creates a Walker for the given catalog URL.
//
// Design decision: We require an external Navigator because:
//  1. Browser session lifecycle is handled by the browser package
//  2. The download stage shares the same session
//  3. Tests can walk canned pages without a browser
func NewWalker(navigator Navigator, catalogURL string, opts ...WalkerOption) (*Walker, error) {
	u, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL %q: %w", catalogURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("catalog URL %q is not absolute", catalogURL)
	}

	w := &Walker{
		navigator: navigator,
		baseURL:   u,
		maxPages:  defaultMaxPages,
		policy: retry.Policy{
			MaxAttempts: 5,
			Backoff:     retry.Uniform(1*time.Second, 5*time.Second),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.parser, err = NewParser(catalogURL, w.strict, w.logger)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Walk pages through the catalog from page 0 until a page past the first
// yields no areas, accumulating every area into a Catalog. An empty first
// page, an exhausted navigation retry, or a structural parse failure
// aborts the walk with an error; nothing partial is returned.
func (w *Walker) Walk(ctx context.Context) (*model.Catalog, error) {
	cat := model.NewCatalog()

	page := 0
	for ; page < w.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := w.pageURL(page)
		w.logger.Debug("fetching catalog page", "page", page, "url", pageURL)

		var markup string
		err := w.policy.Do(ctx, func(ctx context.Context) error {
			var navErr error
			markup, navErr = w.navigator.Navigate(ctx, pageURL)
			return navErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
		}
		w.pagesWalked++

		areas, err := w.parser.ParsePage(markup)
		if err != nil {
			return nil, fmt.Errorf("catalog page %d: %w", page, err)
		}

		if len(areas) == 0 {
			if page == 0 {
				return nil, ErrNoCatalogAreas
			}
			// Natural end of pagination.
			break
		}

		for _, area := range areas {
			cat.AbsorbArea(area)
		}
		w.logger.Debug("absorbed catalog page",
			"page", page,
			"areas", len(areas),
			"batches", cat.BatchCount(),
			"messages", cat.MessageCount())
	}
	if page == w.maxPages {
		w.logger.Warn("stopping walk at the page limit", "max_pages", w.maxPages)
	}

	for _, set := range cat.OrphanSets() {
		w.logger.Warn("records reference a message set the catalog never published",
			"message_set", set.String())
	}

	return cat, nil
}

// Stats returns current walk statistics.
func (w *Walker) Stats() WalkStats {
	return WalkStats{PagesWalked: w.pagesWalked}
}

// WalkStats contains walk statistics.
type WalkStats struct {
	// PagesWalked is the number of listing pages fetched, including the
	// empty page that ended the walk.
	PagesWalked int
}

// pageURL builds the URL of one listing page. Every page carries the page
// query parameter, page 0 included.
func (w *Walker) pageURL(page int) string {
	u := *w.baseURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
