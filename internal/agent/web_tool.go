package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"folio/internal/models"
	"folio/internal/util"
)

const (
	WebToolName = "crawl_web_page"

	defaultWebMaxBytes = 2 << 20
	defaultWebMaxChars = 8000
	maxRedirects       = 3
)

// WebPageTool fetches a page and returns its readable text.
type WebPageTool struct {
	httpClient *http.Client
	robots     *robotsChecker
	userAgent  string
	maxBytes   int64
	maxChars   int
}

// NewWebPageTool returns the crawl_web_page tool. A nil httpClient gets one
// with the given timeout.
func NewWebPageTool(httpClient *http.Client, userAgent string, timeout time.Duration) *WebPageTool {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return &WebPageTool{
		httpClient: httpClient,
		robots:     newRobotsChecker(httpClient, userAgent),
		userAgent:  userAgent,
		maxBytes:   defaultWebMaxBytes,
		maxChars:   defaultWebMaxChars,
	}
}

func (w *WebPageTool) Tools() []ToolSpec {
	return []ToolSpec{{
		Name:        WebToolName,
		Description: "Fetch a web page (for example the portfolio site or blog) and return its title and text content.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url":        map[string]any{"type": "string", "description": "Absolute http(s) URL to read"},
				"max_length": map[string]any{"type": "integer", "description": "Maximum characters of text to return"},
			},
			"required": []string{"url"},
		},
	}}
}

func (w *WebPageTool) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if name != WebToolName {
		return "", fmt.Errorf("%w: %s", models.ErrToolNotFound, name)
	}
	raw, _ := args["url"].(string)
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: url must be an absolute http(s) URL", models.ErrValidation)
	}
	limit := w.maxChars
	if n, ok := args["max_length"].(float64); ok && n > 0 && int(n) < limit {
		limit = int(n)
	}

	if !w.robots.allowed(ctx, u) {
		return "", fmt.Errorf("robots.txt disallows fetching %s", u)
	}

	title, text, err := w.fetch(ctx, u.String())
	if err != nil {
		return "", err
	}
	log.WithField("url", u.String()).Debugf("Fetched page, %d characters of text", len(text))

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	fmt.Fprintf(&b, "URL: %s\n\n", u)
	b.WriteString(truncateRunes(text, limit))
	return b.String(), nil
}

func (w *WebPageTool) fetch(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, w.maxBytes))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		if util.LooksBinary(b) {
			return "", "", fmt.Errorf("unsupported content type: %s", ct)
		}
		return "", collapseSpace(util.CleanText(b, rawURL)), nil
	}
	return extractText(strings.NewReader(util.CleanText(b, rawURL)))
}

// skipped elements carry no readable text
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "template": true, "iframe": true,
}

var blocks = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "li": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "header": true, "footer": true, "main": true, "nav": true,
}

// extractText returns the page title and the visible text, one line per block.
func extractText(r io.Reader) (string, string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	var title string
	var lines []string
	var cur strings.Builder
	flush := func() {
		if line := collapseSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipped[n.Data] {
				return
			}
			if n.Data == "title" {
				if n.FirstChild != nil && title == "" {
					title = collapseSpace(n.FirstChild.Data)
				}
				return
			}
		}
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
		}
		isBlock := n.Type == html.ElementNode && blocks[n.Data]
		if isBlock {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlock {
			flush()
		}
	}
	walk(doc)
	flush()

	return title, strings.Join(lines, "\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "\n[truncated]"
}

var _ ToolSource = (*WebPageTool)(nil)
