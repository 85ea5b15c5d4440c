package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/websearch/internal/utils"
)

// Page is a single fetched page rendered as Markdown. URL reflects the final
// destination after redirects.
type Page struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// FetchMarkdown retrieves one page and converts its HTML to Markdown. Unlike
// [Fetcher.Fetch] it reports failures as errors: the page-fetch tool exposes
// a single URL the caller chose deliberately, so silent degradation would
// hide mistakes instead of containing them. Partial URLs get an "https://"
// prefix; the same blocked-domain and extension checks apply.
func (f *Fetcher) FetchMarkdown(ctx context.Context, pageURL string) (Page, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return Page{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}
	if nonHTMLExtensions.MatchString(pageURL) {
		return Page{}, fmt.Errorf("URL points to a non-HTML file: %s", pageURL)
	}
	if domain := f.blockedDomain(pageURL); domain != "" {
		return Page{}, fmt.Errorf("domain %s is blocked: requires a compression codec this deployment may lack", domain)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("error creating request: %w", err)
	}
	for name, value := range browserHeaders {
		req.Header.Set(name, value)
	}

	resp, err := f.pool.Client().Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("error fetching %s: %w", pageURL, err)
	}
	defer utils.CloseWithLog(resp.Body, f.log)

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Page{}, fmt.Errorf("error reading body: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(strings.ToValidUTF8(string(body), "�"))
	if err != nil {
		return Page{}, fmt.Errorf("error converting to Markdown: %w", err)
	}

	return Page{
		URL:      resp.Request.URL.String(),
		Markdown: markdown,
	}, nil
}
