package datasource

import (
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

	"portal-widgets/models"

	"go.uber.org/zap"
)

var (
	// ErrEmptyQuery is returned when geocoding a blank place name
	ErrEmptyQuery = errors.New("empty geocoding query")

	// ErrLocationNotFound is returned when geocoding yields no place
	ErrLocationNotFound = errors.New("location not found")
)

// MaxHourlyDay is the last day offset the hourly endpoint has data for
const MaxHourlyDay = 4

// APIError is returned when the portal answers with a non-200 status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// PortalClient consumes the portal's /weather/api endpoints
type PortalClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// ClientOption configures a PortalClient
type ClientOption func(*PortalClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(p *PortalClient) {
		p.httpClient = client
	}
}

// WithTimeout sets the request timeout. A client passed with WithHTTPClient
// is copied, never modified.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(p *PortalClient) {
		p.timeout = timeout
	}
}

// WithLogger sets the client's logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(p *PortalClient) {
		p.logger = logger
	}
}

// NewPortalClient creates a client for the portal at baseURL (e.g. "http://127.0.0.1:5001")
func NewPortalClient(baseURL string, opts ...ClientOption) *PortalClient {
	p := &PortalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout > 0 && p.httpClient.Timeout != p.timeout {
		client := *p.httpClient
		client.Timeout = p.timeout
		p.httpClient = &client
	}
	return p
}

// Name returns the source name
func (p *PortalClient) Name() string {
	return "Portal"
}

// FetchForecast fetches the daily forecast for a location
func (p *PortalClient) FetchForecast(ctx context.Context, loc models.Location) (models.Forecast, error) {
	params := coordParams(loc)
	if label := strings.TrimSpace(loc.Label); label != "" {
		params.Set("label", label)
	}

	var forecast models.Forecast
	if err := p.getJSON(ctx, "/weather/api/forecast", params, &forecast); err != nil {
		return models.Forecast{}, err
	}
	return forecast, nil
}

// FetchHourly fetches the chart points of a day; day is clamped to 0..MaxHourlyDay
func (p *PortalClient) FetchHourly(ctx context.Context, loc models.Location, day int) (models.Hourly, error) {
	params := coordParams(loc)
	params.Set("day", strconv.Itoa(ClampDay(day)))

	var hourly models.Hourly
	if err := p.getJSON(ctx, "/weather/api/hourly", params, &hourly); err != nil {
		return models.Hourly{}, err
	}
	return hourly, nil
}

// Geocode resolves a place name, best match first
func (p *PortalClient) Geocode(ctx context.Context, query string) ([]models.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)

	var places []models.Place
	if err := p.getJSON(ctx, "/weather/api/geocode", params, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, query)
	}
	return places, nil
}

func (p *PortalClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := p.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	p.logger.Debug("Fetching from portal", zap.String("url", endpoint))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func coordParams(loc models.Location) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	return params
}

// ClampDay limits a chart day offset to the range the hourly endpoint serves
func ClampDay(day int) int {
	if day < 0 {
		return 0
	}
	if day > MaxHourlyDay {
		return MaxHourlyDay
	}
	return day
}

var _ Source = (*PortalClient)(nil)
