package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/flight-booking/internal/model"
)

// FlightRepo provides read access to flights and airports. Flights
// and airports are reference data in this system: they are seeded
// externally and never mutated through the API, so the repository
// exposes only queries.
type FlightRepo struct{ DB *sql.DB }

func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{DB: db} }

// FlightListing is a flight joined with its origin and destination
// airports, shaped for display. Airport fields carry the city and
// name separately; handlers decide the presentation format.
type FlightListing struct {
	FlightNumber string
	FromCity     string
	FromAirport  string
	ToCity       string
	ToAirport    string
	DepartureAt  time.Time
	Price        uint32
}

const flightListingSelect = `SELECT f.flight_number, f.departure_at, f.price,
               a1.name, a1.city, a2.name, a2.city
        FROM flights f
        JOIN airports a1 ON a1.id = f.from_airport_id
        JOIN airports a2 ON a2.id = f.to_airport_id`

// List returns one page of flights joined with their airports,
// ordered by id for stable pagination, plus the total number of
// flights. A size of -1 returns everything in a single page.
func (r *FlightRepo) List(ctx context.Context, page, size int) ([]FlightListing, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM flights").Scan(&total); err != nil {
		return nil, 0, err
	}

	q := flightListingSelect + " ORDER BY f.id"
	var args []interface{}
	if size >= 0 {
		if page < 1 {
			page = 1
		}
		q += " LIMIT ? OFFSET ?"
		args = append(args, size, (page-1)*size)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]FlightListing, 0)
	for rows.Next() {
		var fl FlightListing
		if err := rows.Scan(&fl.FlightNumber, &fl.DepartureAt, &fl.Price,
			&fl.FromAirport, &fl.FromCity, &fl.ToAirport, &fl.ToCity); err != nil {
			return nil, 0, err
		}
		items = append(items, fl)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByNumber returns the listing for a single flight number. When no
// flight matches, ErrFlightNotFound is returned.
func (r *FlightRepo) GetByNumber(ctx context.Context, number string) (FlightListing, error) {
	const q = flightListingSelect + " WHERE f.flight_number = ? LIMIT 1"
	var fl FlightListing
	err := r.DB.QueryRowContext(ctx, q, number).Scan(
		&fl.FlightNumber, &fl.DepartureAt, &fl.Price,
		&fl.FromAirport, &fl.FromCity, &fl.ToAirport, &fl.ToCity)
	if err == sql.ErrNoRows {
		return FlightListing{}, ErrFlightNotFound
	}
	if err != nil {
		return FlightListing{}, err
	}
	return fl, nil
}

// GetFlightByNumber returns the flight row itself, used by the
// purchase orchestrator which needs the id and price rather than the
// display form. ErrFlightNotFound is returned when no row matches.
func (r *FlightRepo) GetFlightByNumber(ctx context.Context, number string) (model.Flight, error) {
	var f model.Flight
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, flight_number, departure_at, from_airport_id, to_airport_id, price FROM flights WHERE flight_number=? LIMIT 1",
		number).Scan(&f.ID, &f.FlightNumber, &f.DepartureAt, &f.FromAirportID, &f.ToAirportID, &f.Price)
	if err == sql.ErrNoRows {
		return model.Flight{}, ErrFlightNotFound
	}
	return f, err
}

// GetFlightByID returns the flight row by primary key.
func (r *FlightRepo) GetFlightByID(ctx context.Context, id uint64) (model.Flight, error) {
	var f model.Flight
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, flight_number, departure_at, from_airport_id, to_airport_id, price FROM flights WHERE id=? LIMIT 1",
		id).Scan(&f.ID, &f.FlightNumber, &f.DepartureAt, &f.FromAirportID, &f.ToAirportID, &f.Price)
	if err == sql.ErrNoRows {
		return model.Flight{}, ErrFlightNotFound
	}
	return f, err
}

// AllFlights loads the full flight snapshot for graph construction.
func (r *FlightRepo) AllFlights(ctx context.Context) ([]model.Flight, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, flight_number, departure_at, from_airport_id, to_airport_id, price FROM flights")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []model.Flight
	for rows.Next() {
		var f model.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.DepartureAt, &f.FromAirportID, &f.ToAirportID, &f.Price); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flights, nil
}

// AllAirports loads the full airport snapshot for graph construction.
func (r *FlightRepo) AllAirports(ctx context.Context) ([]model.Airport, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, city, country FROM airports")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var airports []model.Airport
	for rows.Next() {
		var a model.Airport
		if err := rows.Scan(&a.ID, &a.Name, &a.City, &a.Country); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return airports, nil
}

// AirportsByID returns the two airports of a flight in one round trip.
// Missing rows surface as sql.ErrNoRows from the row scan.
func (r *FlightRepo) AirportsByID(ctx context.Context, fromID, toID uint64) (model.Airport, model.Airport, error) {
	get := func(id uint64) (model.Airport, error) {
		var a model.Airport
		err := r.DB.QueryRowContext(ctx,
			"SELECT id, name, city, country FROM airports WHERE id=? LIMIT 1",
			id).Scan(&a.ID, &a.Name, &a.City, &a.Country)
		return a, err
	}
	from, err := get(fromID)
	if err != nil {
		return model.Airport{}, model.Airport{}, err
	}
	to, err := get(toID)
	if err != nil {
		return model.Airport{}, model.Airport{}, err
	}
	return from, to, nil
}
