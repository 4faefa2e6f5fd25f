package whttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHTTPRequest_Title(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>\n  Arroz Tio João\r\n 5kg </title></head><body>ok</body></html>")
	}))
	defer ts.Close()

	c, err := NewClient(ClientOptions{RetryMax: -1})
	require.NoError(t, err)

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{
		URL:     ts.URL,
		Headers: []WHTTPHeader{{Name: "X-Test", Value: "yes"}},
	}, c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Arroz Tio João 5kg", res.HTTPTitle)
	assert.Contains(t, res.BodyString, "<body>ok</body>")
}

func TestSendHTTPRequest_NoTitleForJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title":"nope"}`)
	}))
	defer ts.Close()

	c, err := NewClient(ClientOptions{RetryMax: -1})
	require.NoError(t, err)
	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{URL: ts.URL}, c)
	require.NoError(t, err)
	assert.Empty(t, res.HTTPTitle)
	assert.Equal(t, len(`{"title":"nope"}`), res.ResponseLength)
}

func TestSendHTTPRequest_Retries(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	c, err := NewClient(ClientOptions{RetryMax: 3, RetryWait: time.Millisecond})
	require.NoError(t, err)
	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{URL: ts.URL}, c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestNewClient_BadProxy(t *testing.T) {
	_, err := NewClient(ClientOptions{Proxy: "://bad"})
	assert.Error(t, err)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "a b", CleanTitle(" a\r\n\tb "))
}
