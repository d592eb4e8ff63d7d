package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/graph"
	"github.com/iliyamo/flight-booking/internal/repository"
)

// RouteHandler answers cheapest-route queries over the flight network.
// The graph is rebuilt from the database on every request; the response
// cache in front of this endpoint keeps repeat queries cheap.
type RouteHandler struct {
	Flights *repository.FlightRepo
}

func NewRouteHandler(flights *repository.FlightRepo) *RouteHandler {
	if flights == nil {
		panic("nil repository passed to NewRouteHandler")
	}
	return &RouteHandler{Flights: flights}
}

// Cheapest handles GET /v1/routes/cheapest?from_airport=&to_airport=.
// Both parameters are airport names as stored in the airports table.
func (h *RouteHandler) Cheapest(c echo.Context) error {
	from := c.QueryParam("from_airport")
	to := c.QueryParam("to_airport")
	if from == "" || to == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from_airport and to_airport are required"})
	}

	ctx := c.Request().Context()

	flights, err := h.Flights.AllFlights(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	airports, err := h.Flights.AllAirports(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	g, err := graph.Build(flights, airports)
	if err != nil {
		// A flight pointing at a missing airport is corrupt reference
		// data, not a bad request.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inconsistent flight data"})
	}

	route, err := graph.FindCheapestRoute(g, from, to)
	if err != nil {
		switch {
		case errors.Is(err, graph.ErrAirportNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airport not found"})
		case errors.Is(err, graph.ErrNoRoute):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no available route"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "route search failed"})
		}
	}
	return c.JSON(http.StatusOK, route)
}
