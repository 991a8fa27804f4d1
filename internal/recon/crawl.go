package recon

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/prowlsec/prowl/internal/engine"
)

const (
	crawlMaxBody = 1024 * 1024 // per-page read cap

	// NoTitle is the sentinel recorded for pages without a <title>.
	NoTitle = "No title"

	defaultCrawlTimeout  = 5 * time.Second
	defaultCrawlMaxPages = 50
	defaultCrawlRate     = 10 // requests per second
)

// Crawler performs a same-origin, visit-bounded crawl from a seed URL.
// The visited set is private to each Crawl invocation, so one Crawler may
// be shared across concurrent subdomain scans.
type Crawler struct {
	Client    *http.Client
	UserAgent string
	MaxPages  int
	Limiter   *rate.Limiter
}

// NewCrawler builds a crawler with the standard prowl transport: bounded
// per-request timeout, relaxed TLS verification, capped redirects, and a
// request rate limiter shared across all crawls.
func NewCrawler(timeout time.Duration, maxPages int, userAgent string) *Crawler {
	if timeout <= 0 {
		timeout = defaultCrawlTimeout
	}
	if maxPages <= 0 {
		maxPages = defaultCrawlMaxPages
	}
	return &Crawler{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		UserAgent: userAgent,
		MaxPages:  maxPages,
		Limiter:   rate.NewLimiter(rate.Limit(defaultCrawlRate), 1),
	}
}

// Crawl fetches pages reachable from seed, staying within the seed's origin
// prefix. Each URL is fetched at most once; a failed fetch yields no record
// and contributes no further links. The crawl stops at MaxPages.
func (c *Crawler) Crawl(ctx context.Context, seed string) []engine.CrawledPage {
	frontier := []string{seed}
	visited := map[string]bool{seed: true}

	var pages []engine.CrawledPage
	for len(frontier) > 0 && len(pages) < c.MaxPages {
		select {
		case <-ctx.Done():
			return pages
		default:
		}

		url := frontier[0]
		frontier = frontier[1:]

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return pages
			}
		}

		page, links := c.fetch(ctx, url)
		if page == nil {
			continue
		}
		pages = append(pages, *page)

		for _, link := range links {
			if !visited[link] && strings.HasPrefix(link, seed) {
				visited[link] = true
				frontier = append(frontier, link)
			}
		}
	}
	return pages
}

// fetch GETs one page and returns its record plus the absolute form of
// every anchor href, resolved against the page's own URL. A request or
// parse failure is localized: it returns (nil, nil).
func (c *Crawler) fetch(ctx context.Context, url string) (*engine.CrawledPage, []string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	page := &engine.CrawledPage{
		URL:        url,
		Title:      NoTitle,
		StatusCode: resp.StatusCode,
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, crawlMaxBody))
	if err != nil {
		return page, nil
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		page.Title = title
	}

	pageURL, err := neturl.Parse(url)
	if err != nil {
		return page, nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		ref, err := neturl.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, pageURL.ResolveReference(ref).String())
	})

	return page, links
}
