package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // source timezone must resolve on hosts without zoneinfo

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/pso2-quests/internal/logger"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

const (
	UrgentQuestsURL = "https://pso2.com/news/urgent-quests"
	SourceTimezone  = "America/Los_Angeles"
	UserAgent       = "pso2-quests/1.0 (github.com/pfrederiksen/pso2-quests)"
	Timeout         = 30 * time.Second

	previewSelector = ".emergency-section .news-item .image"
	legendCells     = 2
	gridCells       = 8
)

var showDetailsPattern = regexp.MustCompile(`ShowDetails\('(.+?)'`)

// Scraper handles fetching and decoding PSO2 urgent quest calendars
type Scraper struct {
	client     *http.Client
	url        string
	location   *time.Location
	yearPolicy YearPolicy
	now        func() time.Time
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL overrides the urgent quest listing URL
func WithURL(url string) Option {
	return func(s *Scraper) { s.url = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the HTTP client used for all fetches
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) { s.client = client }
}

// WithLocation sets the timezone the calendar is published in
func WithLocation(loc *time.Location) Option {
	return func(s *Scraper) { s.location = loc }
}

// WithYearPolicy sets how header dates without a year are assigned one
func WithYearPolicy(policy YearPolicy) Option {
	return func(s *Scraper) { s.yearPolicy = policy }
}

// WithClock overrides the clock used as the year anchor
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:        UrgentQuestsURL,
		yearPolicy: YearCurrent,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.location == nil {
		s.location = MustLoadLocation(SourceTimezone)
	}
	return s
}

// MustLoadLocation loads an IANA timezone and panics if it is unknown.
// The zone database is embedded, so only a misspelled name can fail.
func MustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("loading timezone %q: %v", name, err))
	}
	return loc
}

// FetchQuests fetches the listing page and every linked article, returning all
// decoded quests sorted furthest-future first. Transport failures are logged and
// yield fewer (or no) quests; they are never returned to the caller.
func (s *Scraper) FetchQuests(ctx context.Context) []quest.Quest {
	started := time.Now()
	quests := make([]quest.Quest, 0)

	listing, err := s.fetchDocument(ctx, s.url)
	if err != nil {
		logger.Error("Error fetching urgent quest listing", logger.Fields{"url": s.url}, err)
		logger.IncrCounter("scrape.listing_errors")
		return quests
	}

	now := s.now()
	for _, path := range ParseListing(listing) {
		if ctx.Err() != nil {
			break
		}

		articleURL := s.url + "/" + path
		doc, err := s.fetchDocument(ctx, articleURL)
		if err != nil {
			logger.Error("Error fetching article", logger.Fields{"url": articleURL}, err)
			logger.IncrCounter("scrape.article_errors")
			continue
		}

		logger.Info("Parsing article", logger.Fields{"url": articleURL})
		quests = append(quests, s.parseArticle(doc, articleURL, now)...)
		logger.IncrCounter("scrape.articles")
	}

	sortQuests(quests)
	logger.RecordTiming("scrape.duration", time.Since(started))
	return quests
}

// ParseArticle decodes every legend/grid pair on a single article page.
// The result is sorted furthest-future first.
func (s *Scraper) ParseArticle(r io.Reader, articleURL string) ([]quest.Quest, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	quests := s.parseArticle(doc, articleURL, s.now())
	sortQuests(quests)
	return quests, nil
}

// fetchDocument GETs url and parses the body as HTML
func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return doc, nil
}

// ParseListing extracts article paths from the news previews' inline
// ShowDetails('...') handlers. Previews without a match are skipped.
func ParseListing(doc *goquery.Document) []string {
	paths := make([]string, 0)
	doc.Find(previewSelector).Each(func(_ int, preview *goquery.Selection) {
		onclick, ok := preview.Attr("onclick")
		if !ok {
			return
		}
		m := showDetailsPattern.FindStringSubmatch(onclick)
		if m == nil {
			return
		}
		paths = append(paths, strings.TrimLeft(m[1], "/"))
	})
	return paths
}

// parseArticle pairs legend and grid tables in discovery order and decodes each pair
func (s *Scraper) parseArticle(doc *goquery.Document, articleURL string, now time.Time) []quest.Quest {
	source := articleURL
	if og, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		source = strings.TrimSpace(og)
	}

	legends, grids := classifyTables(doc)
	opts := DecodeOptions{
		Anchor:     now,
		Location:   s.location,
		YearPolicy: s.yearPolicy,
	}

	quests := make([]quest.Quest, 0)
	for i := 0; i < len(legends) && i < len(grids); i++ {
		legend := DecodeLegend(legends[i], source)
		quests = append(quests, DecodeGrid(grids[i], legend, opts)...)
	}

	if len(legends) != len(grids) {
		logger.Debug("Unpaired calendar tables", logger.Fields{
			"url":     articleURL,
			"legends": len(legends),
			"grids":   len(grids),
		})
	}
	return quests
}

// classifyTables splits table bodies into legends (first row has two cells)
// and grids (first row has eight cells)
func classifyTables(doc *goquery.Document) (legends, grids []*goquery.Selection) {
	doc.Find("tbody").Each(func(_ int, tbody *goquery.Selection) {
		first := tbody.ChildrenFiltered("tr").First()
		switch first.ChildrenFiltered(cellSelector).Length() {
		case legendCells:
			legends = append(legends, tbody)
		case gridCells:
			grids = append(grids, tbody)
		}
	})
	return legends, grids
}

// sortQuests orders quests furthest-future first: ascending, then reversed
func sortQuests(quests []quest.Quest) {
	sort.SliceStable(quests, func(i, j int) bool {
		return quests[i].StartTime.Before(quests[j].StartTime)
	})
	slices.Reverse(quests)
}
