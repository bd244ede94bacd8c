package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/dmitrijs2005/moodjournal/internal/netx"
)

const DefaultTimeout = 10 * time.Second

// HTTPClient talks to the REST backend. Each request reads the bearer token
// from the TokenSource at send time.
type HTTPClient struct {
	baseURL        *url.URL
	httpClient     *http.Client
	transport      http.RoundTripper
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	limiter        *rate.Limiter
	logger         logging.Logger
	now            func() time.Time
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithTimeout sets the per-request budget. Zero or less keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces outgoing requests to rps per second. Zero disables.
func WithRateLimit(rps float64) Option {
	return func(c *HTTPClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *HTTPClient) { c.onUnauthorized = h }
}

// WithTransport replaces http.DefaultTransport under the tracing transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.transport = rt }
}

func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:   u,
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
		tokens:    tokens,
		logger:    logging.Nop{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("component", "api")

	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: otelhttp.NewTransport(c.transport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
	}
	return c, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	var token string
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "request done",
		"method", method, "path", path, "status", resp.StatusCode, "duration", c.now().Sub(start))

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		apiErr := newAPIError(resp.StatusCode, b)
		// Only a token the server rejected ends the session; a failed login
		// carries none.
		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, token)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrInvalidResponse, err)
	}
	return nil
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s %s: encode request: %w", method, path, err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(b), "application/json", out)
}

func entryPath(id string) string {
	return "/api/entries/" + url.PathEscape(id)
}

func requireID(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &models.ValidationError{Field: field, Reason: field + " is required"}
	}
	return nil
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, in any) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.sendJSON(ctx, http.MethodPost, path, in, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.User.ID == "" {
		return nil, fmt.Errorf("POST %s: %w: missing token or user", path, ErrInvalidResponse)
	}
	return &res, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *HTTPClient) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/signup", req)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var res struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, "", &res); err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, fmt.Errorf("GET /auth/me: %w: missing user", ErrInvalidResponse)
	}
	return res.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, "", nil)
}

func (c *HTTPClient) GetEntries(ctx context.Context, q models.EntryQuery) (*models.EntryList, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var res models.EntryList
	if err := c.do(ctx, http.MethodGet, "/api/entries", q.Values(), nil, "", &res); err != nil {
		return nil, err
	}
	if res.Entries == nil {
		res.Entries = []models.MoodEntry{}
	}
	for i := range res.Entries {
		res.Entries[i].Synced = true
	}
	return &res, nil
}

type entryEnvelope struct {
	Entry *models.MoodEntry `json:"entry"`
}

func (e entryEnvelope) entry(method, path string) (*models.MoodEntry, error) {
	if e.Entry == nil {
		return nil, fmt.Errorf("%s %s: %w: missing entry", method, path, ErrInvalidResponse)
	}
	e.Entry.Synced = true
	return e.Entry, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, e models.NewEntry) (*models.MoodEntry, error) {
	if err := e.Validate(c.now()); err != nil {
		return nil, err
	}
	var res entryEnvelope
	if err := c.sendJSON(ctx, http.MethodPost, "/api/entries", e, &res); err != nil {
		return nil, err
	}
	return res.entry(http.MethodPost, "/api/entries")
}

func (c *HTTPClient) GetEntry(ctx context.Context, id string) (*models.MoodEntry, error) {
	if err := requireID("entry_id", id); err != nil {
		return nil, err
	}
	var res entryEnvelope
	if err := c.do(ctx, http.MethodGet, entryPath(id), nil, nil, "", &res); err != nil {
		return nil, err
	}
	return res.entry(http.MethodGet, entryPath(id))
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (*models.MoodEntry, error) {
	if err := requireID("entry_id", id); err != nil {
		return nil, err
	}
	if patch.IsRemoteEmpty() {
		return nil, &models.ValidationError{Field: "entry", Reason: "nothing to update"}
	}
	if err := patch.Validate(c.now()); err != nil {
		return nil, err
	}
	var res entryEnvelope
	if err := c.sendJSON(ctx, http.MethodPut, entryPath(id), patch, &res); err != nil {
		return nil, err
	}
	return res.entry(http.MethodPut, entryPath(id))
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, id string) error {
	if err := requireID("entry_id", id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil, "", nil)
}

func (c *HTTPClient) UploadAudio(ctx context.Context, up models.AudioUpload) (*models.AudioFile, error) {
	if err := requireID("entry_id", up.EntryID); err != nil {
		return nil, err
	}
	contentType, err := models.AudioContentType(up.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(up.Path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}
	if err := models.ValidateAudioSize(info.Size()); err != nil {
		return nil, err
	}

	fields := []netx.FormField{{Name: "entry_id", Value: up.EntryID}}
	if up.Duration != nil {
		fields = append(fields, netx.FormField{Name: "duration", Value: strconv.FormatFloat(*up.Duration, 'f', -1, 64)})
	}
	body, ct := netx.MultipartBody(fields, netx.FilePart{
		Field:       "audio",
		Filename:    filepath.Base(up.Path),
		ContentType: contentType,
		Body:        f,
	})
	defer body.Close()

	var res struct {
		AudioFile *models.AudioFile `json:"audio_file"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/audio/upload", nil, body, ct, &res); err != nil {
		return nil, err
	}
	if res.AudioFile == nil {
		return nil, fmt.Errorf("POST /api/audio/upload: %w: missing audio_file", ErrInvalidResponse)
	}
	return res.AudioFile, nil
}

func (c *HTTPClient) DeleteAudio(ctx context.Context, filename string) error {
	if err := requireID("filename", filename); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/audio/"+url.PathEscape(filename), nil, nil, "", nil)
}

func (c *HTTPClient) insight(ctx context.Context, method, path, entryID string) (*models.Insight, error) {
	var res models.Insight
	if err := c.do(ctx, method, path, nil, nil, "", &res); err != nil {
		return nil, err
	}
	if res.EntryID == "" {
		res.EntryID = entryID
	}
	return &res, nil
}

// GetInsight returns the entry's insight; a pending one is not an error.
func (c *HTTPClient) GetInsight(ctx context.Context, entryID string) (*models.Insight, error) {
	if err := requireID("entry_id", entryID); err != nil {
		return nil, err
	}
	return c.insight(ctx, http.MethodGet, "/api/insights/entry/"+url.PathEscape(entryID), entryID)
}

func (c *HTTPClient) RegenerateInsight(ctx context.Context, entryID string) (*models.Insight, error) {
	if err := requireID("entry_id", entryID); err != nil {
		return nil, err
	}
	return c.insight(ctx, http.MethodPost, "/api/insights/entry/"+url.PathEscape(entryID)+"/regenerate", entryID)
}

func (c *HTTPClient) GetWeeklySummary(ctx context.Context) (*models.WeeklySummary, error) {
	var res models.WeeklySummary
	if err := c.do(ctx, http.MethodGet, "/api/insights/weekly", nil, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetMoodStats(ctx context.Context) (*models.MoodStats, error) {
	var res struct {
		Stats *models.MoodStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/entries/stats", nil, nil, "", &res); err != nil {
		return nil, err
	}
	if res.Stats == nil {
		return nil, fmt.Errorf("GET /api/entries/stats: %w: missing stats", ErrInvalidResponse)
	}
	return res.Stats, nil
}
