package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leofalp/websearch/internal/httppool"
	"github.com/leofalp/websearch/internal/retry"
	"github.com/leofalp/websearch/internal/utils"
)

const (
	// maxPageBytes caps a downloaded page body.
	maxPageBytes = 10 * 1024 * 1024

	fetchMaxAttempts = 2
	fetchBaseDelay   = 500 * time.Millisecond
)

// Diagnostic strings returned by [Fetcher.Fetch] instead of errors.
const (
	MsgInvalidURL = "Invalid URL format"
	MsgNonHTML    = "URL points to a non-HTML file"
)

// nonHTMLExtensions matches URL paths pointing at images, documents, and
// archives that are pointless to fetch for text extraction.
var nonHTMLExtensions = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|pdf|doc|docx|xls|xlsx|zip|tar)$`)

// browserHeaders makes the fetcher look like an ordinary desktop browser;
// a number of sites serve stripped or blocked pages to obvious bots.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// FetcherConfig holds the construction parameters for [Fetcher].
type FetcherConfig struct {
	// Pool is the shared HTTP client pool. Required.
	Pool *httppool.Pool

	// Timeout bounds one page download. Default: 15s.
	Timeout time.Duration

	// MaxContentLength caps extracted text per page. Default: 5000.
	MaxContentLength int

	// BlockedDomains are skipped without a network call.
	BlockedDomains []string

	Logger *zap.Logger
}

// Fetcher downloads pages and extracts their readable text. Safe for
// concurrent use; all fetches share the pool's connections.
type Fetcher struct {
	pool           *httppool.Pool
	timeout        time.Duration
	maxContentLen  int
	blockedDomains []string
	log            *zap.Logger
}

// NewFetcher creates a Fetcher from cfg, applying defaults for unset fields.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = 5000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Fetcher{
		pool:           cfg.Pool,
		timeout:        cfg.Timeout,
		maxContentLen:  cfg.MaxContentLength,
		blockedDomains: cfg.BlockedDomains,
		log:            cfg.Logger,
	}
}

// Fetch returns the extracted text of the page at pageURL, or an empty or
// diagnostic string. It never fails: validation problems, network errors,
// unexpected statuses, and even panics in the extraction path all come back
// as strings, so one bad URL cannot abort a batch.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("panic while fetching", zap.String("url", pageURL), zap.Any("panic", r))
			result = fmt.Sprintf("Unexpected error: %v", r)
		}
	}()

	text, err := f.FetchResult(ctx, pageURL)
	if err != nil {
		if retry.IsNetworkError(err) {
			return fmt.Sprintf("Error extracting content: %v", err)
		}
		return fmt.Sprintf("Unexpected error: %v", err)
	}
	return text
}

// FetchResult is the explicit-result form of [Fetcher.Fetch], for callers
// that need to tell failures apart from placeholder text. Validation
// short-circuits return their diagnostic string with a nil error because
// they are deliberate content, not failures; network and transport trouble
// comes back as an error; an empty string with a nil error means the page
// answered but had nothing extractable (wrong status or content type).
func (f *Fetcher) FetchResult(ctx context.Context, pageURL string) (string, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		f.log.Warn("invalid URL format", zap.String("url", pageURL))
		return MsgInvalidURL, nil
	}

	if nonHTMLExtensions.MatchString(pageURL) {
		f.log.Warn("URL points to a non-HTML file", zap.String("url", pageURL))
		return MsgNonHTML, nil
	}

	if domain := f.blockedDomain(pageURL); domain != "" {
		f.log.Warn("skipping blocked domain", zap.String("url", pageURL), zap.String("domain", domain))
		return fmt.Sprintf("Content from %s (site requires a compression codec this deployment may lack)", pageURL), nil
	}

	rawHTML, err := retry.Do(ctx, retry.Config{MaxAttempts: fetchMaxAttempts, BaseDelay: fetchBaseDelay},
		func(ctx context.Context) (string, error) {
			return f.download(ctx, pageURL)
		})
	if err != nil {
		f.log.Error("error fetching page", zap.String("url", pageURL), zap.Error(err))
		return "", err
	}
	if rawHTML == "" {
		return "", nil
	}

	text := Extract(rawHTML, f.maxContentLen)
	f.log.Debug("extracted content", zap.String("url", pageURL), zap.Int("chars", len(text)))
	return text, nil
}

// blockedDomain returns the first configured domain found in pageURL, or "".
func (f *Fetcher) blockedDomain(pageURL string) string {
	lower := strings.ToLower(pageURL)
	for _, domain := range f.blockedDomains {
		if strings.Contains(lower, domain) {
			return domain
		}
	}
	return ""
}

// download performs one GET through the pool. A non-200 status or a
// non-HTML content type is decisive and returns ("", nil) without retry;
// transport failures return errors for the retry layer to classify.
func (f *Fetcher) download(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	for name, value := range browserHeaders {
		req.Header.Set(name, value)
	}

	resp, err := f.pool.Client().Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching %s: %w", pageURL, err)
	}
	defer utils.CloseWithLog(resp.Body, f.log)

	if resp.StatusCode != http.StatusOK {
		f.log.Warn("non-200 status for page", zap.Int("status", resp.StatusCode), zap.String("url", pageURL))
		return "", nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		f.log.Warn("content type is not HTML", zap.String("content_type", contentType), zap.String("url", pageURL))
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("error reading body of %s: %w", pageURL, err)
	}

	// Replace undecodable byte sequences rather than failing on them.
	return strings.ToValidUTF8(string(body), "�"), nil
}
