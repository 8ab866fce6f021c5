package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Endpoint defaults
const (
	DefaultWebURL    = "https://finance.yahoo.com"
	DefaultAPIURL    = "https://query1.finance.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/100.0.4896.127 Safari/537.36"

	// Pages are large but bounded, anything past this is not an options page
	maxBodyBytes = 8 << 20
)

var crumbPattern = regexp.MustCompile(`CrumbStore":\{"crumb":"([^"]+)"`)

var crumbUnescape = strings.NewReplacer(`\u002F`, "/", `\/`, "/")

// Options configures a Client
type Options struct {
	WebURL    string
	APIURL    string
	UserAgent string
	Timeout   time.Duration // Per-request ceiling, the caller's ctx usually ends first
}

// Client retrieves option chains using a cookie session and crumb token
// The crumb is cached across calls and refreshed when the API rejects it
type Client struct {
	http      *http.Client
	webURL    string
	apiURL    string
	userAgent string
	logger    *zap.Logger

	mu    sync.Mutex
	crumb string
}

// NewClient creates a client with an empty cookie jar
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if opts.WebURL == "" {
		opts.WebURL = DefaultWebURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:      &http.Client{Jar: jar, Timeout: opts.Timeout},
		webURL:    strings.TrimRight(opts.WebURL, "/"),
		apiURL:    strings.TrimRight(opts.APIURL, "/"),
		userAgent: opts.UserAgent,
		logger:    logger.Named("yahoo"),
	}, nil
}

// FetchChain returns the chain for symbol at expiration date (unix seconds), 0 selects the nearest
// All failures are *FetchError
func (c *Client) FetchChain(ctx context.Context, symbol string, date int64) (Chain, error) {
	crumb, err := c.ensureCrumb(ctx, symbol)
	if err != nil {
		return Chain{}, err
	}

	body, status, err := c.getChain(ctx, symbol, date, crumb)
	if err == nil && (status == http.StatusUnauthorized || status == http.StatusForbidden) {
		// Crumb expired with the session, bootstrap once more
		c.logger.Debug("crumb rejected, refreshing", zap.String("symbol", symbol), zap.Int("status", status))
		c.invalidateCrumb(crumb)
		if crumb, err = c.ensureCrumb(ctx, symbol); err != nil {
			return Chain{}, err
		}
		body, status, err = c.getChain(ctx, symbol, date, crumb)
	}
	if err != nil {
		return Chain{}, &FetchError{Kind: KindHTTPStatus, Symbol: symbol, Err: err}
	}
	if status < 200 || status > 299 {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			c.invalidateCrumb(crumb)
		}
		return Chain{}, &FetchError{Kind: KindHTTPStatus, Symbol: symbol, StatusCode: status}
	}

	chain, err := decodeChain(symbol, body)
	if err != nil {
		return Chain{}, &FetchError{Kind: KindDecode, Symbol: symbol, Err: err}
	}
	return chain, nil
}

// ensureCrumb returns the cached crumb or bootstraps a new session
func (c *Client) ensureCrumb(ctx context.Context, symbol string) (string, error) {
	c.mu.Lock()
	crumb := c.crumb
	c.mu.Unlock()
	if crumb != "" {
		return crumb, nil
	}

	page := fmt.Sprintf("%s/quote/%s/options?p=%s", c.webURL, url.PathEscape(symbol), url.QueryEscape(symbol))
	body, status, err := c.get(ctx, page)
	if err != nil {
		return "", &FetchError{Kind: KindSession, Symbol: symbol, Err: err}
	}
	if status < 200 || status > 299 {
		return "", &FetchError{Kind: KindSession, Symbol: symbol, StatusCode: status}
	}

	crumb, err = extractCrumb(body)
	if err != nil {
		return "", &FetchError{Kind: KindCrumb, Symbol: symbol, Err: err}
	}

	c.mu.Lock()
	c.crumb = crumb
	c.mu.Unlock()

	c.logger.Debug("session bootstrapped", zap.String("symbol", symbol))
	return crumb, nil
}

// invalidateCrumb drops crumb if it is still the cached one
func (c *Client) invalidateCrumb(crumb string) {
	c.mu.Lock()
	if c.crumb == crumb {
		c.crumb = ""
	}
	c.mu.Unlock()
}

func (c *Client) getChain(ctx context.Context, symbol string, date int64, crumb string) ([]byte, int, error) {
	q := url.Values{}
	q.Set("crumb", crumb)
	if date > 0 {
		q.Set("date", strconv.FormatInt(date, 10))
	}
	u := fmt.Sprintf("%s/v7/finance/options/%s?%s", c.apiURL, url.PathEscape(symbol), q.Encode())
	return c.get(ctx, u)
}

// get performs a GET with the browser User-Agent and returns the body and status
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// extractCrumb finds the crumb token embedded in an options page
func extractCrumb(page []byte) (string, error) {
	m := crumbPattern.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("crumb pattern not found in %d byte page", len(page))
	}
	crumb := crumbUnescape.Replace(string(m[1]))
	if crumb == "" {
		return "", fmt.Errorf("empty crumb")
	}
	return crumb, nil
}
