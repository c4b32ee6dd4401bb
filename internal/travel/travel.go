// Package travel polls the external flight-status and traffic collaborators
// and bundles their responses into the travel signal consumed by detectors.
// Both collaborators are optional; an unreachable one degrades to an absent
// signal rather than failing the optimization pass.
package travel

import (
	"context"
	"log/slog"

	"github.com/blackwell-systems/timewise/internal/model"
)

// FlightSource reports the live status of a tracked flight.
type FlightSource interface {
	FlightStatus(ctx context.Context, flightNumber string) (*model.FlightStatus, error)
}

// TrafficSource reports live conditions on a named commute route.
type TrafficSource interface {
	RouteConditions(ctx context.Context, route string) (*model.RouteConditions, error)
}

// Collector gathers whatever travel data is configured. Either source may
// be nil when the corresponding collaborator is not configured.
type Collector struct {
	flights FlightSource
	traffic TrafficSource
}

// NewCollector creates a collector over the given sources.
func NewCollector(flights FlightSource, traffic TrafficSource) *Collector {
	return &Collector{flights: flights, traffic: traffic}
}

// Collect polls the configured sources. Failures are logged and the
// corresponding signal stays nil: a missing signal means no travel-driven
// suggestions, never a failed run.
func (c *Collector) Collect(ctx context.Context, flightNumber, route string) model.TravelSignal {
	var sig model.TravelSignal

	if c.flights != nil && flightNumber != "" {
		fs, err := c.flights.FlightStatus(ctx, flightNumber)
		if err != nil {
			slog.Warn("flight status unavailable", "flight", flightNumber, "err", err)
		} else {
			sig.Flight = fs
		}
	}

	if c.traffic != nil && route != "" {
		rc, err := c.traffic.RouteConditions(ctx, route)
		if err != nil {
			slog.Warn("route conditions unavailable", "route", route, "err", err)
		} else {
			sig.Route = rc
		}
	}

	return sig
}
