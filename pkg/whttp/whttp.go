package whttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	UserAgent = "Mozilla/5.0 (compatible; indicesp/1.0; +https://github.com/indicesp/indicesp)"

	maxBodyBytes = 10 << 20
)

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode     int
	ResponseLength int
	HTTPTitle      string
	BodyString     string
	ContentType    string
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	RetryMax  int           // 0 keeps retryablehttp's default, negative disables retries
	RetryWait time.Duration // minimum backoff; defaults to retryablehttp's
	Timeout   time.Duration // per attempt; defaults to 30s
	Proxy     string
	Log       *logrus.Logger // nil = silent
}

// NewClient returns a retrying HTTP client.
func NewClient(opts ClientOptions) (*retryablehttp.Client, error) {
	c := retryablehttp.NewClient()
	c.Logger = nil
	if opts.Log != nil {
		c.Logger = leveledLogrus{opts.Log}
	}
	switch {
	case opts.RetryMax > 0:
		c.RetryMax = opts.RetryMax
	case opts.RetryMax < 0:
		c.RetryMax = 0
	}
	if opts.RetryWait > 0 {
		c.RetryWaitMin = opts.RetryWait
		c.RetryWaitMax = 4 * opts.RetryWait
	}
	c.HTTPClient.Timeout = opts.Timeout
	if c.HTTPClient.Timeout == 0 {
		c.HTTPClient.Timeout = 30 * time.Second
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		c.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return c, nil
}

// SendHTTPRequest performs wReq and reads the whole body. Non-2xx answers
// are not errors; callers look at StatusCode.
func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (*WHTTPRes, error) {
	method := wReq.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, wReq.URL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	wRes := &WHTTPRes{
		StatusCode:  resp.StatusCode,
		BodyString:  string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
	}
	if strings.Contains(wRes.ContentType, "html") || wRes.ContentType == "" {
		if title, ok := getHTMLTitle(wRes.BodyString); ok {
			wRes.HTTPTitle = CleanTitle(title)
		}
	}
	wRes.ResponseLength = utf8.RuneCountInString(wRes.BodyString)
	return wRes, nil
}

// CleanTitle drops line breaks and invalid UTF-8 from a page title.
func CleanTitle(title string) string {
	title = strings.ReplaceAll(strings.ReplaceAll(title, "\n", " "), "\r", "")
	return strings.ToValidUTF8(strings.Join(strings.Fields(title), " "), "")
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}

// leveledLogrus adapts logrus to retryablehttp.LeveledLogger.
type leveledLogrus struct {
	l *logrus.Logger
}

func (a leveledLogrus) fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}

func (a leveledLogrus) Error(msg string, kv ...interface{}) { a.l.WithFields(a.fields(kv)).Error(msg) }
func (a leveledLogrus) Info(msg string, kv ...interface{})  { a.l.WithFields(a.fields(kv)).Debug(msg) }
func (a leveledLogrus) Debug(msg string, kv ...interface{}) { a.l.WithFields(a.fields(kv)).Debug(msg) }
func (a leveledLogrus) Warn(msg string, kv ...interface{})  { a.l.WithFields(a.fields(kv)).Warn(msg) }
