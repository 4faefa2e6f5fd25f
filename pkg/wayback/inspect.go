package wayback

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/whttp"
)

var pricePattern = regexp.MustCompile(`R\$\s*\d{1,3}(?:\.\d{3})*,\d{2}`)

type InspectOptions struct {
	// Selector is a CSS selector whose first match holds the price.
	Selector string
	// MaxPrices caps how many "R$ 0,00" strings are collected; defaults to 5.
	MaxPrices int
}

// Inspection is what a contributor sees before submitting a capture.
type Inspection struct {
	CaptureURL   string        `json:"capture_url"`
	OriginalURL  string        `json:"original_url"`
	Date         archival.Date `json:"date"`
	LastSaturday bool          `json:"last_saturday"`
	StatusCode   int           `json:"status_code"`
	Title        string        `json:"title,omitempty"`
	Domain       string        `json:"domain,omitempty"`
	Supermarket  string        `json:"supermarket,omitempty"`
	SelectorText string        `json:"selector_text,omitempty"`
	Prices       []string      `json:"prices,omitempty"`
}

// Inspect downloads a capture and reports what it contains. Archive errors
// such as 404 are reported through StatusCode, not as an error.
func (c *Client) Inspect(ctx context.Context, captureURL string, opts InspectOptions) (*Inspection, error) {
	m := capturePrefix.FindStringSubmatch(captureURL)
	if m == nil {
		return nil, &archival.CaptureError{Kind: archival.InvalidURLFormat, URL: captureURL}
	}
	d, err := archival.ParseTimestamp(m[1])
	if err != nil {
		return nil, &archival.CaptureError{Kind: archival.UnparsableDate, URL: captureURL, Err: err}
	}
	original, err := OriginalURL(captureURL)
	if err != nil {
		return nil, err
	}

	ins := &Inspection{
		CaptureURL:   captureURL,
		OriginalURL:  original,
		Date:         d,
		LastSaturday: archival.IsLastSaturday(d),
	}
	if domain, ok := RegistrableDomain(original); ok {
		ins.Domain = domain
		if m, ok := c.catalog.SupermarketForDomain(domain); ok {
			ins.Supermarket = m.Name
		}
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{URL: c.fetchURL(captureURL)}, c.http)
	if err != nil {
		return nil, fmt.Errorf("fetching capture: %w", err)
	}
	ins.StatusCode = res.StatusCode
	ins.Title = res.HTTPTitle
	if res.StatusCode != 200 {
		c.log.Debugf("Capture %s answered %d", captureURL, res.StatusCode)
		return ins, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.BodyString))
	if err != nil {
		return nil, fmt.Errorf("parsing capture: %w", err)
	}
	// Drop the archive's own toolbar before looking for prices.
	doc.Find("#wm-ipp-base, #wm-ipp, script, style, noscript").Remove()

	if opts.Selector != "" {
		ins.SelectorText = storage.NormalizeText(doc.Find(opts.Selector).First().Text())
	}
	max := opts.MaxPrices
	if max <= 0 {
		max = 5
	}
	seen := map[string]bool{}
	for _, p := range pricePattern.FindAllString(doc.Find("body").Text(), -1) {
		p = storage.NormalizeText(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		ins.Prices = append(ins.Prices, p)
		if len(ins.Prices) == max {
			break
		}
	}
	return ins, nil
}

// fetchURL points captureURL at the configured snapshot host. Tests and
// mirrors replace web.archive.org this way.
func (c *Client) fetchURL(captureURL string) string {
	if c.snapshotBase == "" {
		return captureURL
	}
	u, err := url.Parse(captureURL)
	if err != nil {
		return captureURL
	}
	return strings.TrimRight(c.snapshotBase, "/") + u.RequestURI()
}

// RegistrableDomain returns the domain a URL belongs to under the public
// suffix list, e.g. "https://www.atacadao.com.br/x" -> "atacadao.com.br".
func RegistrableDomain(rawURL string) (string, bool) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, ".") {
		return "", false
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", false
	}
	return domain, true
}
