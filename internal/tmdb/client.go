package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 30 * time.Minute
	userAgent       = "Marquee/1.0"
	maxBodySize     = 2 << 20
)

// Client implements domain.MovieFetcher and domain.DetailsRepository
// against the TMDB v3 API
type Client struct {
	apiKey      string
	accessToken string
	baseURL     string
	language    string
	region      string
	http        *http.Client
	limiter     *rate.Limiter
	cache       ResponseCache
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// Config configures a Client. Either APIKey or AccessToken must be set.
type Config struct {
	APIKey      string
	AccessToken string // v4 read token, sent as a bearer token
	BaseURL     string
	Language    string
	Region      string

	// HTTPClient defaults to a client with a 10s timeout
	HTTPClient *http.Client

	// RequestsPerSecond throttles outgoing requests; zero disables throttling
	RequestsPerSecond float64
	Burst             int

	// Cache, when set, serves repeated GETs without a round trip
	Cache    ResponseCache
	CacheTTL time.Duration

	Logger *slog.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		accessToken: strings.TrimSpace(cfg.AccessToken),
		baseURL:     strings.TrimRight(baseURL, "/"),
		language:    language,
		region:      cfg.Region,
		http:        httpClient,
		limiter:     limiter,
		cache:       cfg.Cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// categoryPath resolves the listing endpoint for a fetch request
func categoryPath(req domain.FetchRequest) (string, error) {
	switch req.Category {
	case domain.CategoryNowPlaying:
		return "/movie/now_playing", nil
	case domain.CategoryTopRated:
		return "/movie/top_rated", nil
	case domain.CategoryUpcoming:
		return "/movie/upcoming", nil
	case domain.CategoryTrendingDay, domain.CategoryTrendingWeek:
		if !req.Window.Valid() {
			return "", &domain.ConfigurationError{
				Category: req.Category,
				Field:    "time window",
				Value:    string(req.Window),
				Err:      domain.ErrInvalidTimeWindow,
			}
		}
		return "/trending/movie/" + string(req.Window), nil
	default:
		return "", fmt.Errorf("unknown category %d", int(req.Category))
	}
}

// FetchCategory returns the first page of a category listing in API order
func (c *Client) FetchCategory(ctx context.Context, req domain.FetchRequest) ([]domain.MovieSummary, error) {
	path, err := categoryPath(req)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if c.region != "" && !req.Category.IsTrending() {
		query.Set("region", c.region)
	}

	var resp pagedResponse[movieResult]
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, domain.NewFetchError(req.Category, err)
	}
	return MapMovies(resp.Results), nil
}

// GetMovieDetails returns the full record for a movie
func (c *Client) GetMovieDetails(ctx context.Context, movieID string) (*domain.MovieDetails, error) {
	var resp movieDetails
	if err := c.get(ctx, "/movie/"+url.PathEscape(movieID), nil, &resp); err != nil {
		return nil, err
	}
	return MapDetails(resp), nil
}

// GetCredits returns the cast of a movie in billing order
func (c *Client) GetCredits(ctx context.Context, movieID string) ([]domain.CastMember, error) {
	var resp creditsResponse
	if err := c.get(ctx, "/movie/"+url.PathEscape(movieID)+"/credits", nil, &resp); err != nil {
		return nil, err
	}
	return MapCast(resp.Cast), nil
}

// GetReviews returns the first page of user reviews
func (c *Client) GetReviews(ctx context.Context, movieID string) ([]domain.Review, error) {
	var resp pagedResponse[reviewResult]
	if err := c.get(ctx, "/movie/"+url.PathEscape(movieID)+"/reviews", nil, &resp); err != nil {
		return nil, err
	}
	return MapReviews(resp.Results), nil
}

// GetRecommendations returns movies recommended alongside movieID
func (c *Client) GetRecommendations(ctx context.Context, movieID string) ([]domain.MovieSummary, error) {
	var resp pagedResponse[movieResult]
	if err := c.get(ctx, "/movie/"+url.PathEscape(movieID)+"/recommendations", nil, &resp); err != nil {
		return nil, err
	}
	return MapMovies(resp.Results), nil
}

// get performs a GET and decodes the JSON body into out, going through the
// response cache when one is configured
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("language", c.language)

	// Credentials never enter the cache key
	key := path + "?" + query.Encode()

	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(data, out); err == nil {
				metrics.APICacheHitsTotal.Inc()
				c.logger.Debug("tmdb cache hit", "path", path)
				return nil
			}
		}
	}

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("tmdb decode failed", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, body, c.cacheTTL)
	}
	return nil
}

// doRequest performs an authenticated request and maps failures onto domain errors
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.accessToken == "" && c.apiKey != "" {
		query = cloneValues(query)
		query.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpointLabel(path), "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(endpointLabel(path), strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError maps an HTTP status onto a sentinel, keeping the API's message
func statusError(status int, body []byte) error {
	var sentinel error
	switch {
	case status == http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case status == http.StatusTooManyRequests:
		sentinel = domain.ErrRateLimited
	case status >= 500:
		sentinel = domain.ErrServerUnavailable
	default:
		sentinel = errors.New("unexpected response from movie API")
	}

	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
		return fmt.Errorf("%w: %s", sentinel, apiErr.StatusMessage)
	}
	return fmt.Errorf("%w (HTTP %d)", sentinel, status)
}

// endpointLabel collapses movie ids so metric cardinality stays bounded
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "movie" {
		if _, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			parts[1] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
