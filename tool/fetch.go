package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/content"
)

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// Fetcher makes the outbound HTTP requests tools need: fetch_url and
// citation titles for web_search. Hosts can be allowed or blocked by
// domain suffix.
type Fetcher struct {
	client          *http.Client
	allowedHosts    []string
	blockedHosts    []string
	maxResponseSize int64
	timeout         time.Duration

	titles sync.Map
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithAllowedHosts restricts requests to specific hosts only.
func WithAllowedHosts(hosts ...string) FetcherOption {
	return func(f *Fetcher) {
		f.allowedHosts = hosts
	}
}

// WithBlockedHosts blocks requests to specific hosts.
func WithBlockedHosts(hosts ...string) FetcherOption {
	return func(f *Fetcher) {
		f.blockedHosts = hosts
	}
}

// WithMaxResponseSize sets the maximum response body size.
// Default is 1MB.
func WithMaxResponseSize(bytes int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxResponseSize = bytes
	}
}

// WithHTTPTimeout sets the request timeout.
// Default is 30 seconds.
func WithHTTPTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		maxResponseSize: 1024 * 1024,
		timeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

func (f *Fetcher) checkHost(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	for _, blocked := range f.blockedHosts {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return fmt.Errorf("host %q is blocked", host)
		}
	}
	if len(f.allowedHosts) > 0 {
		for _, a := range f.allowedHosts {
			if host == a || strings.HasSuffix(host, "."+a) {
				return nil
			}
		}
		return fmt.Errorf("host %q is not in allowed list", host)
	}
	return nil
}

// Page is a fetched web page.
type Page struct {
	URL         string `json:"url"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// Fetch GETs rawURL, reading at most the configured response size.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.checkHost(rawURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxResponseSize+1))
	if err != nil {
		return nil, err
	}
	page := &Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if int64(len(body)) > f.maxResponseSize {
		body = body[:f.maxResponseSize]
		page.Truncated = true
	}
	page.Body = string(body)
	return page, nil
}

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

const untitled = "Untitled site"

// Title returns the HTML title of the page at rawURL. Results are cached
// per URL; pages that cannot be fetched are untitled.
func (f *Fetcher) Title(ctx context.Context, rawURL string) string {
	if v, ok := f.titles.Load(rawURL); ok {
		return v.(string)
	}
	title := untitled
	if page, err := f.Fetch(ctx, rawURL); err == nil {
		if m := titlePattern.FindStringSubmatch(page.Body); m != nil {
			if t := strings.TrimSpace(m[1]); t != "" {
				title = t
			}
		}
	} else if ctx.Err() != nil {
		return title
	}
	f.titles.Store(rawURL, title)
	return title
}

// NewFetchURL creates the fetch_url tool.
func NewFetchURL(f *Fetcher) *agent.Tool {
	return agent.NewTool(Package, FetchURL.Name,
		func(ctx context.Context, ac *agent.Context, out *content.Node, args agent.Args) (any, error) {
			target := strings.TrimSpace(args.String("url"))
			page, err := f.Fetch(ctx, target)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				ac.Logger().Warn("fetch failed", "url", target, "error", err)
				return nil, ac.AppendChunk(out, ai.ErrorChunk("Error fetching "+target+": "+err.Error()))
			}
			out.SetData(page)
			if err := ac.Update(out); err != nil {
				return nil, err
			}
			ac.Observe(fmt.Sprintf("Here is the content of %s (status %d):\n%s", page.URL, page.StatusCode, page.Body), nil)
			return fmt.Sprintf("fetched %s (%d bytes)", page.URL, len(page.Body)), nil
		},
		agent.WithDescription("Fetching a web page"),
		agent.WithIcon("public"),
		agent.WithParam("url", "string"),
		agent.WithInstructions("Fetch the contents of a specific http or https URL the user mentions. Do NOT use this tool to search the web."),
	)
}
