// Package fetch retrieves recon URLs and turns HTML pages into markdown
// text usable by the extraction oracle.
//
// Fetches are a single attempt with no retry. A failed request or a
// non-success status is reported to the caller, who decides how to
// surface it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Result contains the outcome of a fetch.
type Result struct {
	Text       string // page text, markdown if the body was HTML
	Title      string // page <title>, empty for non-HTML bodies
	StatusCode int
}

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // HTTP timeout. Default: 30s.
	MaxBytes  int64         // Max response body size. Default: 4MB.
	UserAgent string        // Sent with every request.
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 4 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "QuestHandler/1.0"
	}
}

// Fetcher performs single-attempt HTTP GETs.
type Fetcher struct {
	client      *http.Client
	config      Config
	mdConverter *converter.Converter
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Fetch retrieves a URL and returns its usable text. HTML bodies are
// converted to markdown; anything else passes through as-is.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Result{StatusCode: resp.StatusCode}, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	res := &Result{StatusCode: resp.StatusCode, Text: string(body)}
	if isHTML(resp.Header.Get("Content-Type"), body) {
		res.Title = findTitle(string(body))
		res.Text = f.htmlToMarkdown(string(body), url)
	}
	return res, nil
}

// htmlToMarkdown converts HTML to structured markdown.
// If conversion fails or produces empty output, returns the raw HTML.
func (f *Fetcher) htmlToMarkdown(raw string, sourceURL string) string {
	result, err := f.mdConverter.ConvertString(raw, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return raw
	}
	return strings.TrimSpace(result)
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return true
	}
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}

// findTitle extracts the page <title> text, empty on parse failure.
func findTitle(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return title
}
