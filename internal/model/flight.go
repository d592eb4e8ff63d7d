package model

import "time"

// Airport represents a row in the `airports` table.  Airport names
// are unique across the system: the HTTP API and the route search
// address airports by name, never by numeric id, so the name acts
// as the vertex key in the flight graph.
//
// Fields:
//  ID      – primary key identifier.
//  Name    – unique airport name (graph vertex key).
//  City    – city the airport belongs to.
//  Country – country of the airport.
type Airport struct {
	ID      uint64 // airports.id
	Name    string // airports.name
	City    string // airports.city
	Country string // airports.country
}

// Flight represents a row in the `flights` table.  A flight is a
// directed, price-weighted edge between two airports.  The flight
// number is a display key and is not guaranteed unique across time.
//
// Fields:
//  ID            – primary key identifier.
//  FlightNumber  – display identifier such as "AFL031".
//  DepartureAt   – scheduled departure timestamp (UTC).
//  FromAirportID – origin airport (references airports.id).
//  ToAirportID   – destination airport (references airports.id).
//  Price         – ticket price in the smallest currency unit.
type Flight struct {
	ID            uint64    // flights.id
	FlightNumber  string    // flights.flight_number
	DepartureAt   time.Time // flights.departure_at
	FromAirportID uint64    // flights.from_airport_id
	ToAirportID   uint64    // flights.to_airport_id
	Price         uint32    // flights.price
}
