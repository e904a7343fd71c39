package htmlsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/types"
)

// Selectors locate the fields of one result card. Empty metric selectors
// leave the metric at 0.
type Selectors struct {
	Card      string `yaml:"card"`
	Title     string `yaml:"title"`
	Link      string `yaml:"link"`
	Views     string `yaml:"views"`
	Likes     string `yaml:"likes"`
	Dislikes  string `yaml:"dislikes"`
	Comments  string `yaml:"comments"`
	Shares    string `yaml:"shares"`
	Thumbnail string `yaml:"thumbnail"`
}

// DefaultSelectors match the desktop YouTube results markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:      "ytd-video-renderer",
		Title:     "a#video-title",
		Link:      "a#video-title",
		Views:     "span.ytd-video-meta-block",
		Thumbnail: "img",
	}
}

// Provider scrapes a server-rendered results page.
type Provider struct {
	client      *http.Client
	urlTemplate string
	sel         Selectors
	logger      zerolog.Logger
}

// New builds a provider. urlTemplate may contain {query} and {max}.
func New(logger zerolog.Logger, client *http.Client, urlTemplate string, sel Selectors) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if sel.Card == "" {
		sel = DefaultSelectors()
	}
	return &Provider{
		client:      client,
		urlTemplate: urlTemplate,
		sel:         sel,
		logger:      logger.With().Str("component", "htmlsearch").Logger(),
	}
}

func (p *Provider) Search(ctx context.Context, query string, maxResults int) ([]types.CandidateVideo, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	pageURL := buildSearchURL(p.urlTemplate, query, maxResults)
	doc, err := p.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)
	cands := extractCandidates(doc, p.sel, base, maxResults)
	p.logger.Debug().Str("url", pageURL).Int("found", len(cands)).Msg("results parsed")
	return cands, nil
}

func (p *Provider) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "viralcut/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractCandidates(doc *goquery.Document, sel Selectors, base *url.URL, maxResults int) []types.CandidateVideo {
	var out []types.CandidateVideo
	doc.Find(sel.Card).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		c, ok := parseCard(card, sel, base)
		if ok {
			out = append(out, c)
		}
		return len(out) < maxResults
	})
	return out
}

func parseCard(card *goquery.Selection, sel Selectors, base *url.URL) (types.CandidateVideo, bool) {
	link := card.Find(sel.Link).First()
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return types.CandidateVideo{}, false
	}
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			href = base.ResolveReference(ref).String()
		}
	}

	titleNode := card.Find(sel.Title).First()
	title, ok := titleNode.Attr("title")
	if !ok || strings.TrimSpace(title) == "" {
		title = titleNode.Text()
	}

	thumb := ""
	if sel.Thumbnail != "" {
		img := card.Find(sel.Thumbnail).First()
		thumb, _ = img.Attr("src")
		if thumb == "" {
			thumb, _ = img.Attr("data-src")
		}
		if base != nil && thumb != "" {
			if ref, err := url.Parse(thumb); err == nil {
				thumb = base.ResolveReference(ref).String()
			}
		}
	}

	return types.CandidateVideo{
		Title:        strings.TrimSpace(title),
		URL:          href,
		ViewCount:    countAt(card, sel.Views),
		LikeCount:    countAt(card, sel.Likes),
		DislikeCount: countAt(card, sel.Dislikes),
		CommentCount: countAt(card, sel.Comments),
		ShareCount:   countAt(card, sel.Shares),
		ThumbnailRef: thumb,
	}, true
}

func countAt(card *goquery.Selection, selector string) int64 {
	if selector == "" {
		return 0
	}
	return ParseCount(card.Find(selector).First().Text())
}

func buildSearchURL(tmpl, query string, maxResults int) string {
	r := strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{max}", strconv.Itoa(maxResults),
	)
	return r.Replace(tmpl)
}
