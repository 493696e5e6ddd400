// Package fetch wraps every outbound request of a harvest run. Nothing
// below this boundary escapes as an error: transport failures, bad
// status codes and unparseable markup all come back as tagged results
// so callers can treat them as "no data" and keep going.
package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Kind classifies the outcome of a fetch.
type Kind int

const (
	// KindOK means the document was fetched and parsed.
	KindOK Kind = iota
	// KindNotFound means the source answered 404/410: the entity has
	// no data in this context. A normal empty result, not an error.
	KindNotFound
	// KindTransport covers DNS, connection and timeout failures.
	KindTransport
	// KindStatus covers any other non-success status code.
	KindStatus
	// KindParse means the body could not be parsed as HTML.
	KindParse
	// KindDisallowed means robots.txt forbids the path.
	KindDisallowed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport_error"
	case KindStatus:
		return "bad_status"
	case KindParse:
		return "parse_error"
	case KindDisallowed:
		return "robots_disallowed"
	}
	return "unknown"
}

// Result is the tagged outcome of one fetch. Doc is non-nil only when
// Kind is KindOK.
type Result struct {
	URL  string
	Kind Kind
	Doc  *goquery.Document
	Err  error
}

// OK reports whether the result carries a parsed document.
func (r Result) OK() bool {
	return r.Kind == KindOK && r.Doc != nil
}

// Empty reports whether the result is a legitimate "nothing here"
// rather than a failure.
func (r Result) Empty() bool {
	return r.Kind == KindNotFound
}

// Options configures a Fetcher.
type Options struct {
	// BaseURL is the root of the target host, used to locate robots.txt.
	BaseURL string
	// RequestDelay is the minimum spacing between outbound requests.
	// Zero disables pacing, which tests rely on.
	RequestDelay time.Duration
	Timeout      time.Duration
	// UserAgent overrides the rotating browser identities when set.
	UserAgent       string
	FollowRobotsTxt bool
	Logger          *logrus.Logger
}

// Fetcher issues paced, identified GET requests and contains every
// failure behind a Result.
type Fetcher struct {
	client    *resty.Client
	limiter   *rate.Limiter
	log       *logrus.Logger
	userAgent string

	robotsOn bool
	robots   *robotstxt.RobotsData

	failures int
}

// NewFetcher builds a Fetcher from opts. opts.Logger must be set.
func NewFetcher(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RequestDelay), 1)
	}

	f := &Fetcher{
		client:    client,
		limiter:   limiter,
		log:       opts.Logger,
		userAgent: opts.UserAgent,
		robotsOn:  opts.FollowRobotsTxt,
	}
	if f.robotsOn {
		f.loadRobots(opts.BaseURL)
	}
	return f
}

// Failures returns the number of failed fetches so far. The driver
// snapshots it around each season for the run summary.
func (f *Fetcher) Failures() int {
	return f.failures
}

// loadRobots fetches robots.txt once. Any failure means "allow all",
// matching how polite crawlers treat an absent file.
func (f *Fetcher) loadRobots(baseURL string) {
	if baseURL == "" {
		return
	}
	res, err := f.client.R().Get(strings.TrimRight(baseURL, "/") + "/robots.txt")
	if err != nil || res.StatusCode() != http.StatusOK {
		return
	}
	robots, err := robotstxt.FromBytes(res.Body())
	if err != nil {
		return
	}
	f.robots = robots
}

func (f *Fetcher) allowedByRobots(pageURL string) bool {
	if !f.robotsOn || f.robots == nil {
		return true
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	return f.robots.TestAgent(u.Path, "eplharvest")
}

// Fetch GETs pageURL and returns a tagged result. It blocks on the
// pacing limiter before issuing the request.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Result {
	if !f.allowedByRobots(pageURL) {
		f.log.WithField("url", pageURL).Warn("skipped: disallowed by robots.txt")
		return Result{URL: pageURL, Kind: KindDisallowed}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		f.failures++
		return Result{URL: pageURL, Kind: KindTransport, Err: err}
	}

	ua := f.userAgent
	if ua == "" {
		ua = randomUserAgent()
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		Get(pageURL)
	if err != nil {
		f.failures++
		f.log.WithField("url", pageURL).WithError(err).Warn("fetch failed")
		return Result{URL: pageURL, Kind: KindTransport, Err: err}
	}

	switch code := res.StatusCode(); {
	case code == http.StatusNotFound || code == http.StatusGone:
		f.log.WithField("url", pageURL).Info("no page for entity")
		return Result{URL: pageURL, Kind: KindNotFound}
	case code != http.StatusOK:
		f.failures++
		err := fmt.Errorf("unexpected status %d", code)
		f.log.WithField("url", pageURL).WithField("status", code).Warn("non-OK status")
		return Result{URL: pageURL, Kind: KindStatus, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		f.failures++
		f.log.WithField("url", pageURL).WithError(err).Warn("markup parse failed")
		return Result{URL: pageURL, Kind: KindParse, Err: err}
	}

	return Result{URL: pageURL, Kind: KindOK, Doc: doc}
}
