package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

const robotsTTL = time.Hour

// robotsChecker answers whether a URL may be fetched, caching robots.txt per host.
type robotsChecker struct {
	cache      *gocache.Cache
	httpClient *http.Client
	userAgent  string
}

func newRobotsChecker(httpClient *http.Client, userAgent string) *robotsChecker {
	return &robotsChecker{
		cache:      gocache.New(robotsTTL, 0),
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// allowed reports whether userAgent may fetch u. An unreachable robots.txt
// allows everything.
func (r *robotsChecker) allowed(ctx context.Context, u *url.URL) bool {
	data, err := r.robots(ctx, u)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, r.userAgent)
}

func (r *robotsChecker) robots(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := u.Scheme + "://" + u.Host
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	r.cache.SetDefault(key, data)
	return data, nil
}
