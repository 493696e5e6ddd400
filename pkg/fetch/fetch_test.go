package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pprasanth/eplharvest/internal/runlog"
)

func newTestFetcher(serverURL string, delay time.Duration, robots bool) *Fetcher {
	return NewFetcher(Options{
		BaseURL:         serverURL,
		RequestDelay:    delay,
		FollowRobotsTxt: robots,
		Logger:          runlog.Discard(),
	})
}

func TestFetchOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><h1>Squad</h1></body></html>`))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, 0, false)
	res := f.Fetch(context.Background(), server.URL+"/squad")

	require.True(t, res.OK())
	assert.Equal(t, KindOK, res.Kind)
	assert.Equal(t, "Squad", res.Doc.Find("h1").Text())
	assert.Equal(t, 0, f.Failures())
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, 0, false)
	res := f.Fetch(context.Background(), server.URL+"/missing")

	assert.False(t, res.OK())
	assert.True(t, res.Empty())
	assert.Equal(t, KindNotFound, res.Kind)
	// Not-found is a normal empty result, not a failure.
	assert.Equal(t, 0, f.Failures())
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, 0, false)
	res := f.Fetch(context.Background(), server.URL+"/broken")

	assert.Equal(t, KindStatus, res.Kind)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, f.Failures())
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := newTestFetcher(url, 0, false)
	res := f.Fetch(context.Background(), url+"/gone")

	assert.Equal(t, KindTransport, res.Kind)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, f.Failures())
}

func TestFetchSetsBrowserUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html></html>`))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, 0, false)
	f.Fetch(context.Background(), server.URL)

	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestRespectRobotsTxt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		default:
			w.Write([]byte(`<html><body>ok</body></html>`))
		}
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, 0, true)

	open := f.Fetch(context.Background(), server.URL+"/public/page")
	assert.Equal(t, KindOK, open.Kind)

	blocked := f.Fetch(context.Background(), server.URL+"/private/page")
	assert.Equal(t, KindDisallowed, blocked.Kind)
	assert.Nil(t, blocked.Doc)
}

func TestRequestPacing(t *testing.T) {
	var requestTimes []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestTimes = append(requestTimes, time.Now())
		w.Write([]byte(`<html></html>`))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, 100*time.Millisecond, false)
	for i := 0; i < 3; i++ {
		f.Fetch(context.Background(), server.URL)
	}

	require.Len(t, requestTimes, 3)
	for i := 1; i < len(requestTimes); i++ {
		gap := requestTimes[i].Sub(requestTimes[i-1])
		// Some tolerance below the configured 100ms.
		assert.Greater(t, gap.Milliseconds(), int64(70))
	}
}
