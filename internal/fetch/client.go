package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/doccheck/internal/retry"
)

// ErrContentTooShort is returned when a page body is below the configured
// minimum length. It is never retried.
var ErrContentTooShort = errors.New("response content too short")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBodyBytes caps a fetched page.
const maxBodyBytes = 64 << 20

// Page is a fetched document.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Options configure a Client.
type Options struct {
	Timeout          time.Duration
	MinContentLength int
	Cookies          map[string]string
	Retry            retry.Config
	Log              *slog.Logger
	OnRetry          func(retry.Attempt)
}

// Client downloads documents from a wiki or web server.
type Client struct {
	httpClient *http.Client
	cookies    map[string]string
	minLength  int
	policy     retry.Policy
	log        *slog.Logger
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	policy := retry.NewPolicy(opts.Retry, "fetch", opts.Log)
	policy.OnRetry = opts.OnRetry
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		cookies:    opts.Cookies,
		minLength:  opts.MinContentLength,
		policy:     policy,
		log:        opts.Log,
	}
}

var pageIDParam = regexp.MustCompile(`\b(?:page_id|pageId)=[^&]*`)

// BuildURL attaches a page id to base. An existing page_id or pageId
// parameter is replaced; otherwise pageId is appended.
func BuildURL(base, pageID string) string {
	if pageID == "" {
		return base
	}
	escaped := url.QueryEscape(pageID)
	if pageIDParam.MatchString(base) {
		return pageIDParam.ReplaceAllLiteralString(base, "pageId="+escaped)
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "pageId=" + escaped
}

// Fetch downloads the document at rawURL, retrying transient failures.
func (c *Client) Fetch(ctx context.Context, rawURL, pageID string) (*Page, error) {
	full := BuildURL(rawURL, pageID)
	if _, err := url.ParseRequestURI(full); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", full, err)
	}

	c.log.Info("fetching document", "url", full)
	page, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*Page, error) {
		return c.get(ctx, full)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", full, err)
	}
	c.log.Info("document fetched", "url", full, "bytes", len(page.Body), "content_type", page.ContentType)
	return page, nil
}

func (c *Client) get(ctx context.Context, u string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,zh-CN;q=0.8")
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &retry.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(ct), "html") {
		c.log.Warn("response is not html", "url", u, "content_type", ct)
	}
	if len(body) < c.minLength {
		return nil, retry.Permanent(fmt.Errorf("%w: %d bytes, want at least %d", ErrContentTooShort, len(body), c.minLength))
	}

	return &Page{URL: u, StatusCode: resp.StatusCode, ContentType: ct, Body: body}, nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// ParseCookies reads a "k=v; k2=v2" cookie header string. Blank input and
// lines starting with # yield no cookies.
func ParseCookies(s string) map[string]string {
	out := make(map[string]string)
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return out
	}
	for _, item := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok || k == "" {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// LoadCookies reads a cookie file. A missing file yields no cookies.
func LoadCookies(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookies file: %w", err)
	}
	return ParseCookies(string(data)), nil
}
