package prices

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// fishKeywords maps page text tokens to canonical fish types.
var fishKeywords = map[string]string{
	"crab":     "Crab",
	"dungeness": "Crab",
	"salmon":   "Salmon",
	"chinook":  "Salmon",
	"coho":     "Salmon",
	"halibut":  "Halibut",
}

// perLbPattern matches "$4.20/lb", "$4.20 per lb", "$4.20 / pound".
var perLbPattern = regexp.MustCompile(`\$(\d+(?:\.\d{1,2})?)\s*(?:/|per)\s*(?:lb|pound)`)

// Scraper fetches cannery price pages and extracts per-pound quotes.
type Scraper struct {
	store  *Store
	client *http.Client
}

// NewScraper creates a scraper writing into the given store.
func NewScraper(store *Store) *Scraper {
	return &Scraper{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ScrapeAll visits every active cannery and records whatever quotes it
// finds. Per-cannery failures are collected, not fatal.
func (s *Scraper) ScrapeAll(ctx context.Context) ([]Price, []error) {
	canneries, err := s.store.Canneries(ctx)
	if err != nil {
		return nil, []error{err}
	}

	var scraped []Price
	var errs []error
	for _, cannery := range canneries {
		prices, err := s.Scrape(ctx, cannery.Name, cannery.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("scraping %s: %w", cannery.Name, err))
			continue
		}
		scraped = append(scraped, prices...)
	}
	return scraped, errs
}

// Scrape fetches one page and stores a quote per fish type found.
func (s *Scraper) Scrape(ctx context.Context, canneryName, url string) ([]Price, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "fishcatch/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching price page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price page returned status %d", resp.StatusCode)
	}

	quotes, err := ExtractPrices(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no per-pound prices found on page")
	}

	var stored []Price
	for fishType, perLb := range quotes {
		p, err := s.store.Add(ctx, fishType, perLb, canneryName, url)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *p)
	}
	return stored, nil
}

// ExtractPrices parses HTML and returns fish type to per-pound price.
// A price counts only when a fish keyword and a "$X.XX/lb" figure
// appear in the same text run; the first match per fish type wins.
func ExtractPrices(r io.Reader) (map[string]float64, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	quotes := make(map[string]float64)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			matchLine(n.Data, quotes)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return quotes, nil
}

func matchLine(text string, quotes map[string]float64) {
	lower := strings.ToLower(text)

	match := perLbPattern.FindStringSubmatch(lower)
	if match == nil {
		return
	}
	perLb, err := strconv.ParseFloat(match[1], 64)
	if err != nil || perLb <= 0 {
		return
	}

	for keyword, fishType := range fishKeywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if _, seen := quotes[fishType]; !seen {
			quotes[fishType] = perLb
		}
	}
}
