package catalog

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/isoharvest/internal/model"
)

// Structural markers of the catalog listing.
const (
	// areaSelector matches one catalog area (a message set's grouping).
	areaSelector = `div[id^="catalog-area-"]`

	// messageSelector matches one downloadable message entry inside an area.
	messageSelector = `div[class$="has-download"]`
)

// messageFieldCount is the number of text fields a message entry must
// expose: ID, name, and submitting organization.
const messageFieldCount = 3

// Parser extracts download batches from rendered catalog markup.
//
// Design decision: We query the markup with goquery rather than walking
// the node tree by hand because:
//  1. The catalog's structural markers are attribute patterns (an id
//     prefix for areas, a class suffix for message entries) that map
//     directly onto selectors
//  2. Selection helpers keep the extraction code close to the page
//     structure it mirrors
//  3. goquery still exposes raw nodes, so direct-text collection works
//     without a second parser
type Parser struct {
	// baseURL is the catalog URL page-relative hrefs resolve against.
	baseURL *url.URL

	// strict aborts on field validation failures instead of skipping the
	// single malformed message entry.
	strict bool

	// logger receives skip warnings in the tolerant mode.
	logger *slog.Logger
}

// NewParser creates a parser for pages of the given catalog.
// The catalog URL must be absolute; every extracted href is resolved
// against it.
func NewParser(catalogURL string, strict bool, logger *slog.Logger) (*Parser, error) {
	u, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL %q: %w", catalogURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("catalog URL %q is not absolute", catalogURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Parser{
		baseURL: u,
		strict:  strict,
		logger:  logger,
	}, nil
}

// ParsePage extracts all catalog areas from one page of rendered markup.
// An empty slice means the page carries no areas; the walker decides
// whether that ends the pagination or signals a broken layout.
func (p *Parser) ParsePage(markup string) ([]model.Area, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog markup: %w", err)
	}

	areas := make([]model.Area, 0)
	var parseErr error
	doc.Find(areaSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		area, err := p.parseArea(sel)
		if err != nil {
			id, _ := sel.Attr("id")
			parseErr = fmt.Errorf("catalog area %q: %w", id, err)
			return false
		}
		areas = append(areas, area)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return areas, nil
}

// parseArea extracts one catalog area: its declared message set, its batch
// download link, and its message records.
func (p *Parser) parseArea(sel *goquery.Selection) (model.Area, error) {
	label := DirectText(sel.Find("span").First())
	if label == "" {
		return model.Area{}, ErrMissingSetLabel
	}
	set, err := model.NewMessageSet(label)
	if err != nil {
		return model.Area{}, fmt.Errorf("set label %q: %w", label, err)
	}

	// The batch link is the first anchor anywhere in the area.
	href, ok := sel.Find("a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return model.Area{}, ErrMissingBatchLink
	}
	batchLink, err := p.resolveLink(href)
	if err != nil {
		return model.Area{}, fmt.Errorf("batch link %q: %w", href, err)
	}

	elements := sel.Find(messageSelector)
	if elements.Length() == 0 {
		return model.Area{}, ErrNoMessageElements
	}

	records := make([]model.MessageRecord, 0, elements.Length())
	var msgErr error
	elements.EachWithBreak(func(i int, msg *goquery.Selection) bool {
		record, err := p.parseMessage(msg)
		if err != nil {
			if p.strict || structural(err) {
				msgErr = fmt.Errorf("message entry %d: %w", i, err)
				return false
			}
			p.logger.Warn("skipping malformed message entry",
				"message_set", set.String(),
				"entry", i,
				"error", err)
			return true
		}
		records = append(records, record)
		return true
	})
	if msgErr != nil {
		return model.Area{}, msgErr
	}

	return model.Area{
		Set:       set,
		BatchLink: batchLink,
		Records:   records,
	}, nil
}

// parseMessage extracts one message record from a message entry.
// The schema link comes from the entry's first anchor; the three text
// fields come from the direct text of the entry's descendant divs, with
// empty ones dropped.
func (p *Parser) parseMessage(sel *goquery.Selection) (model.MessageRecord, error) {
	// Structural check first: a missing anchor is a layout change, not a
	// data problem, and is fatal in every mode.
	href, ok := sel.Find("a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return model.MessageRecord{}, ErrMissingMessageLink
	}
	link, err := p.resolveLink(href)
	if err != nil {
		return model.MessageRecord{}, fmt.Errorf("schema link %q: %w", href, err)
	}

	fields := make([]string, 0, messageFieldCount)
	sel.Find("div").Each(func(_ int, div *goquery.Selection) {
		if text := DirectText(div); text != "" {
			fields = append(fields, text)
		}
	})
	if len(fields) != messageFieldCount {
		return model.MessageRecord{}, fmt.Errorf("%w: found %d", ErrFieldCount, len(fields))
	}

	id, err := model.NewMessageID(fields[0])
	if err != nil {
		return model.MessageRecord{}, fmt.Errorf("message ID %q: %w", fields[0], err)
	}

	record, err := model.NewMessageRecord(id, fields[1], fields[2], link)
	if err != nil {
		return model.MessageRecord{}, fmt.Errorf("message %s: %w", id.String(), err)
	}
	return record, nil
}

// resolveLink resolves a page-relative href against the catalog URL.
func (p *Parser) resolveLink(href string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return p.baseURL.ResolveReference(u).String(), nil
}
