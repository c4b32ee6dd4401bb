package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackwell-systems/timewise/internal/config"
	"github.com/blackwell-systems/timewise/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	cacheTTL       = 5 * time.Minute
	cacheSize      = 64
)

// cached pairs a response with its fetch time for TTL checks.
type cached[T any] struct {
	value     T
	fetchedAt time.Time
}

// FlightClient polls a flight-status HTTP API. Responses are cached so the
// monitor's repeated checks inside one polling interval hit the network once.
type FlightClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *lru.Cache[string, cached[model.FlightStatus]]
	now     func() time.Time
}

// NewFlightClient creates a client for the configured endpoint.
func NewFlightClient(ep config.Endpoint) (*FlightClient, error) {
	c, err := lru.New[string, cached[model.FlightStatus]](cacheSize)
	if err != nil {
		return nil, err
	}
	return &FlightClient{
		baseURL: ep.BaseURL,
		apiKey:  ep.APIKey,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   c,
		now:     time.Now,
	}, nil
}

// flightResponse is the wire format of the flight-status API.
type flightResponse struct {
	FlightNumber     string `json:"flight_number"`
	Status           string `json:"status"`
	DelayMinutes     int    `json:"delay_minutes"`
	Reason           string `json:"reason"`
	ScheduledArrival string `json:"scheduled_arrival"`
}

// FlightStatus fetches the live status of a flight.
func (c *FlightClient) FlightStatus(ctx context.Context, flightNumber string) (*model.FlightStatus, error) {
	if hit, ok := c.cache.Get(flightNumber); ok && c.now().Sub(hit.fetchedAt) < cacheTTL {
		fs := hit.value
		return &fs, nil
	}

	var resp flightResponse
	endpoint := fmt.Sprintf("%s/v1/flights/%s", c.baseURL, url.PathEscape(flightNumber))
	if err := getJSON(ctx, c.http, endpoint, c.apiKey, &resp); err != nil {
		return nil, fmt.Errorf("flight %s: %w", flightNumber, err)
	}

	fs := model.FlightStatus{
		FlightNumber: resp.FlightNumber,
		State:        model.FlightState(resp.Status),
		DelayMinutes: resp.DelayMinutes,
		Reason:       resp.Reason,
	}
	if fs.FlightNumber == "" {
		fs.FlightNumber = flightNumber
	}
	if resp.ScheduledArrival != "" {
		t, err := time.Parse(time.RFC3339, resp.ScheduledArrival)
		if err != nil {
			return nil, fmt.Errorf("flight %s: bad scheduled_arrival %q", flightNumber, resp.ScheduledArrival)
		}
		fs.ScheduledArrival = t
	}

	c.cache.Add(flightNumber, cached[model.FlightStatus]{value: fs, fetchedAt: c.now()})
	return &fs, nil
}

// TrafficClient polls a traffic-conditions HTTP API with the same caching
// behavior as the flight client.
type TrafficClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *lru.Cache[string, cached[model.RouteConditions]]
	now     func() time.Time
}

// NewTrafficClient creates a client for the configured endpoint.
func NewTrafficClient(ep config.Endpoint) (*TrafficClient, error) {
	c, err := lru.New[string, cached[model.RouteConditions]](cacheSize)
	if err != nil {
		return nil, err
	}
	return &TrafficClient{
		baseURL: ep.BaseURL,
		apiKey:  ep.APIKey,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   c,
		now:     time.Now,
	}, nil
}

// routeResponse is the wire format of the traffic API.
type routeResponse struct {
	Route         string `json:"route"`
	NormalMinutes int    `json:"normal_minutes"`
	LiveMinutes   int    `json:"live_minutes"`
}

// RouteConditions fetches live conditions for a route.
func (c *TrafficClient) RouteConditions(ctx context.Context, route string) (*model.RouteConditions, error) {
	if hit, ok := c.cache.Get(route); ok && c.now().Sub(hit.fetchedAt) < cacheTTL {
		rc := hit.value
		return &rc, nil
	}

	var resp routeResponse
	endpoint := fmt.Sprintf("%s/v1/routes/%s", c.baseURL, url.PathEscape(route))
	if err := getJSON(ctx, c.http, endpoint, c.apiKey, &resp); err != nil {
		return nil, fmt.Errorf("route %s: %w", route, err)
	}
	if resp.NormalMinutes <= 0 {
		return nil, fmt.Errorf("route %s: bad normal_minutes %d", route, resp.NormalMinutes)
	}

	rc := model.RouteConditions{
		Route:         resp.Route,
		NormalMinutes: resp.NormalMinutes,
		LiveMinutes:   resp.LiveMinutes,
		TrafficFactor: float64(resp.LiveMinutes) / float64(resp.NormalMinutes),
	}
	if rc.Route == "" {
		rc.Route = route
	}

	c.cache.Add(route, cached[model.RouteConditions]{value: rc, fetchedAt: c.now()})
	return &rc, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, endpoint, apiKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %.200s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
