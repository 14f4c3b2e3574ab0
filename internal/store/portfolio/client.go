package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"folio/internal/models"
	"folio/internal/store"
)

// SnapshotLimit is the page size used when aggregate views need every project.
const SnapshotLimit = 1000

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
	CacheTTL          time.Duration // 0 disables the snapshot cache
	HTTPClient        *http.Client  // optional, mainly for tests
}

// Client talks to the portfolio web app's REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	snapshot *snapshotCache
}

var _ store.ProjectStore = (*Client)(nil)

// New creates a client. It does not contact the API; use Ping for that.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, errors.New("portfolio base URL cannot be empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid portfolio base URL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 5
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:  base,
		http:     httpClient,
		limiter:  limiter,
		snapshot: newSnapshotCache(opts.CacheTTL),
	}, nil
}

// Close releases idle connections and drops cached snapshots.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	c.snapshot.invalidate()
	return nil
}

// Ping checks the API answers a minimal listing request.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListProjects(ctx, models.ProjectQuery{Limit: 1})
	return err
}

func (c *Client) ListProjects(ctx context.Context, q models.ProjectQuery) (*models.ProjectPage, error) {
	var page models.ProjectPage
	if err := c.do(ctx, http.MethodGet, "/projects", queryValues(q), nil, &page); err != nil {
		return nil, err
	}
	if page.Projects == nil {
		page.Projects = []models.Project{}
	}
	return &page, nil
}

func (c *Client) RecentProjects(ctx context.Context, limit int) (*models.RecentProjects, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var recent models.RecentProjects
	if err := c.do(ctx, http.MethodGet, "/projects/recent", params, nil, &recent); err != nil {
		return nil, err
	}
	if recent.Projects == nil {
		recent.Projects = []models.Project{}
	}
	return &recent, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AllProjects returns every project, served from the snapshot cache when fresh.
func (c *Client) AllProjects(ctx context.Context) ([]models.Project, error) {
	projects, gen, ok := c.snapshot.get()
	if ok {
		return projects, nil
	}
	page, err := c.ListProjects(ctx, models.ProjectQuery{Limit: SnapshotLimit})
	if err != nil {
		return nil, err
	}
	if page.Total > len(page.Projects) {
		log.Warnf("portfolio snapshot truncated: %d of %d projects", len(page.Projects), page.Total)
	}
	c.snapshot.set(gen, page.Projects)
	return page.Projects, nil
}

func (c *Client) CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, fields, &p); err != nil {
		return nil, err
	}
	c.snapshot.invalidate()
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, fields models.ProjectFields) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodPut, projectPath(id), nil, fields, &p); err != nil {
		return nil, err
	}
	c.snapshot.invalidate()
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, projectPath(id), nil, nil, nil); err != nil {
		return err
	}
	c.snapshot.invalidate()
	return nil
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

func queryValues(q models.ProjectQuery) url.Values {
	v := url.Values{}
	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Technology != "" {
		v.Set("technology", q.Technology)
	}
	if q.Year > 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// do sends one request. A 404 maps to models.ErrNotFound and any other
// non-2xx status to *models.APIError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.WithFields(log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("portfolio api request")

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, models.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &models.APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
