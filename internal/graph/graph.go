// Package graph builds the flight graph and answers cheapest-route
// queries over it.  The graph is an ephemeral read-only snapshot
// derived from the current flights and airports; it is rebuilt for
// every query so results are always consistent with the store.
package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/flight-booking/internal/model"
)

// ErrAirportNotFound is returned when a queried airport name is not a
// vertex of the graph at all.  Handlers should translate this into an
// HTTP 404 "airport not found" response.
var ErrAirportNotFound = errors.New("airport not found")

// ErrNoRoute is returned when both endpoints are known vertices but no
// sequence of flights connects them.  It is distinct from
// ErrAirportNotFound and maps to an HTTP 404 "no available route"
// response.
var ErrNoRoute = errors.New("no available route")

// ErrDataIntegrity is returned by Build when a flight references an
// airport id that does not exist in the snapshot.  This is a fault in
// the stored data, not a recoverable query condition.
var ErrDataIntegrity = errors.New("data integrity fault")

// Edge is one outbound flight from a vertex.  To holds the destination
// airport name, the remaining fields describe the flight itself.
type Edge struct {
	To           string    `json:"to_airport"`
	FlightNumber string    `json:"flight_number"`
	Price        uint32    `json:"price"`
	DepartureAt  time.Time `json:"date"`
}

// Graph maps an airport name to its outbound edges.  Airports that
// only ever appear as destinations have no adjacency entry but are
// still part of the vertex set; Knows reports membership for both.
type Graph struct {
	adjacency map[string][]Edge
	vertices  map[string]struct{}
}

// Build constructs the graph from a full snapshot of flights and
// airports.  Every flight becomes a directed edge from its origin to
// its destination, weighted by price.  A flight that references an
// airport id missing from the snapshot is a data-integrity fault and
// aborts the build; edges are never silently dropped.
func Build(flights []model.Flight, airports []model.Airport) (*Graph, error) {
	byID := make(map[uint64]model.Airport, len(airports))
	for _, a := range airports {
		byID[a.ID] = a
	}

	g := &Graph{
		adjacency: make(map[string][]Edge),
		vertices:  make(map[string]struct{}, len(airports)),
	}
	for _, f := range flights {
		from, ok := byID[f.FromAirportID]
		if !ok {
			return nil, fmt.Errorf("%w: flight %s references unknown origin airport id %d", ErrDataIntegrity, f.FlightNumber, f.FromAirportID)
		}
		to, ok := byID[f.ToAirportID]
		if !ok {
			return nil, fmt.Errorf("%w: flight %s references unknown destination airport id %d", ErrDataIntegrity, f.FlightNumber, f.ToAirportID)
		}
		g.adjacency[from.Name] = append(g.adjacency[from.Name], Edge{
			To:           to.Name,
			FlightNumber: f.FlightNumber,
			Price:        f.Price,
			DepartureAt:  f.DepartureAt,
		})
		g.vertices[from.Name] = struct{}{}
		g.vertices[to.Name] = struct{}{}
	}
	return g, nil
}

// Knows reports whether the airport name is a vertex of the graph,
// either as an origin or as a destination of at least one flight.
func (g *Graph) Knows(name string) bool {
	_, ok := g.vertices[name]
	return ok
}

// Outbound returns the outbound edges of an airport.  A missing
// adjacency entry means no outbound flights, which is legal for
// sink-only airports, so a nil slice is returned rather than an error.
func (g *Graph) Outbound(name string) []Edge {
	return g.adjacency[name]
}
