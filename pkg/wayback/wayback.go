// Package wayback talks to the Internet Archive on behalf of contributors:
// it finds the snapshot that should back a price and looks inside it.
package wayback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/catalog"
	"github.com/indicesp/indicesp/pkg/whttp"
)

const DefaultEndpoint = "https://archive.org/wayback/available"

var (
	ErrNoCapture = errors.New("no archived capture found")

	capturePrefix = regexp.MustCompile(`^https?://web\.archive\.org/web/(\d{14})[a-z_]*/`)
)

type Options struct {
	Endpoint string // availability API; defaults to DefaultEndpoint
	// SnapshotBase replaces scheme and host of capture URLs when fetching them.
	SnapshotBase string
	RetryMax     int
	RetryWait    time.Duration
	Timeout      time.Duration
	Proxy        string
	Catalog      *catalog.Catalog // defaults to catalog.Default()
	Log          *logrus.Logger   // nil = silent
}

type Client struct {
	endpoint     string
	snapshotBase string
	http         *retryablehttp.Client
	catalog      *catalog.Catalog
	log          *logrus.Logger
}

func New(opts Options) (*Client, error) {
	hc, err := whttp.NewClient(whttp.ClientOptions{
		RetryMax:  opts.RetryMax,
		RetryWait: opts.RetryWait,
		Timeout:   opts.Timeout,
		Proxy:     opts.Proxy,
		Log:       opts.Log,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:     opts.Endpoint,
		snapshotBase: opts.SnapshotBase,
		http:         hc,
		catalog:      opts.Catalog,
		log:          opts.Log,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.catalog == nil {
		c.catalog = catalog.Default()
	}
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(io.Discard)
	}
	return c, nil
}

// Capture is one archived snapshot.
type Capture struct {
	URL       string        `json:"url"`
	Timestamp string        `json:"timestamp"`
	Date      archival.Date `json:"date"`
	Status    string        `json:"status"`
}

// Closest asks the availability API for the capture of pageURL nearest to at.
// It returns ErrNoCapture when the archive has nothing for the page.
func (c *Client) Closest(ctx context.Context, pageURL string, at time.Time) (*Capture, error) {
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("timestamp", at.UTC().Format("20060102150405"))

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		URL:     c.endpoint + "?" + q.Encode(),
		Headers: []whttp.WHTTPHeader{{Name: "Accept", Value: "application/json"}},
	}, c.http)
	if err != nil {
		return nil, fmt.Errorf("wayback availability: %w", err)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("wayback availability: unexpected status %d", res.StatusCode)
	}
	if !gjson.Valid(res.BodyString) {
		return nil, errors.New("wayback availability: invalid JSON response")
	}

	closest := gjson.Get(res.BodyString, "archived_snapshots.closest")
	if !closest.Exists() || !closest.Get("available").Bool() {
		c.log.Debugf("No capture of %s near %s", pageURL, at.Format(time.RFC3339))
		return nil, ErrNoCapture
	}

	capture := &Capture{
		URL:       closest.Get("url").String(),
		Timestamp: closest.Get("timestamp").String(),
		Status:    closest.Get("status").String(),
	}
	d, err := archival.ParseTimestamp(capture.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("wayback availability: %w", err)
	}
	capture.Date = d
	return capture, nil
}

// LastSaturdayResult says how close the archive got to the wanted date.
type LastSaturdayResult struct {
	Target  archival.Date `json:"target"`
	Capture *Capture      `json:"capture,omitempty"`
	Match   bool          `json:"match"`
}

// FindLastSaturday looks for a capture of pageURL taken on the last Saturday
// of the given month. The archive returns its nearest capture, so Match tells
// whether that one actually falls on the target date. A page the archive has
// never seen gives a result with no Capture.
func (c *Client) FindLastSaturday(ctx context.Context, pageURL string, year int, month time.Month) (*LastSaturdayResult, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d out of range", month)
	}
	target := archival.LastSaturday(year, month)
	res := &LastSaturdayResult{Target: target}

	capture, err := c.Closest(ctx, pageURL, target.Time().Add(12*time.Hour))
	if errors.Is(err, ErrNoCapture) {
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Capture = capture
	res.Match = capture.Date == target
	return res, nil
}

// OriginalURL strips the archive prefix from a capture URL, leaving the
// address of the page that was archived.
func OriginalURL(captureURL string) (string, error) {
	loc := capturePrefix.FindStringIndex(captureURL)
	if loc == nil {
		return "", &archival.CaptureError{Kind: archival.InvalidURLFormat, URL: captureURL}
	}
	rest := captureURL[loc[1]:]
	if rest == "" {
		return "", fmt.Errorf("capture %s has no original URL", captureURL)
	}
	if !strings.HasPrefix(rest, "http://") && !strings.HasPrefix(rest, "https://") {
		rest = "http://" + rest
	}
	return rest, nil
}
