package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"reportify/metrics"
	"reportify/models"
)

const (
	// locationIQBaseURL is the LocationIQ reverse-geocoding endpoint.
	locationIQBaseURL = "https://us1.locationiq.com/v1/reverse"
	// userAgent identifies this service to the provider.
	userAgent = "Reportify/1.0"
)

// ErrNoAPIKey is returned before any network call when no provider
// credential is configured. There is no substitute provider; a Nominatim
// fallback exists as an extension point but is not active.
var ErrNoAPIKey = errors.New("geocoding provider API key not configured")

// ProviderError is a non-success response from the geocoding provider.
// Callers must not treat it as fatal for submission: raw coordinates are
// still usable without a human-readable address.
type ProviderError struct {
	Status  int
	Details string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("geocoding provider returned status %d: %s", e.Status, e.Details)
}

// Client handles reverse-geocoding lookups against a single configured
// provider.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new geocoding client.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// providerResponse is the raw LocationIQ reverse-geocoding response.
type providerResponse struct {
	DisplayName string                `json:"display_name"`
	Lat         string                `json:"lat"`
	Lon         string                `json:"lon"`
	Address     models.GeocodeAddress `json:"address"`
}

// ReverseGeocode normalizes coordinates into a human-readable address.
// Coordinate validation happens before any network I/O.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s?%s", locationIQBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues("locationiq").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{Status: resp.StatusCode, Details: string(body)}
	}

	var provResp providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&provResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &models.GeocodeResult{
		DisplayName: provResp.DisplayName,
		Lat:         provResp.Lat,
		Lon:         provResp.Lon,
		Address:     provResp.Address,
	}, nil
}

// validateCoordinates rejects non-finite or out-of-range coordinates.
func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return errors.New("latitude and longitude must be finite numbers")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("coordinates out of range: (%f, %f)", lat, lon)
	}
	return nil
}
