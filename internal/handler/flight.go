package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/repository"
)

// FlightHandler serves the read-only flight listing endpoints. Flights
// are reference data; both endpoints sit behind the response cache
// middleware.
type FlightHandler struct {
	Flights *repository.FlightRepo
}

func NewFlightHandler(flights *repository.FlightRepo) *FlightHandler {
	if flights == nil {
		panic("nil repository passed to NewFlightHandler")
	}
	return &FlightHandler{Flights: flights}
}

// flightResp is the display form of a single flight.
type flightResp struct {
	FlightNumber string `json:"flightNumber"`
	FromAirport  string `json:"fromAirport"`
	ToAirport    string `json:"toAirport"`
	Date         string `json:"date"`
	Price        uint32 `json:"price"`
}

// flightsPageResp is a paginated flight listing.
type flightsPageResp struct {
	Page          int          `json:"page"`
	PageSize      int          `json:"pageSize"`
	TotalElements int          `json:"totalElements"`
	Items         []flightResp `json:"items"`
}

func toFlightResp(fl repository.FlightListing) flightResp {
	return flightResp{
		FlightNumber: fl.FlightNumber,
		FromAirport:  airportLabel(fl.FromCity, fl.FromAirport),
		ToAirport:    airportLabel(fl.ToCity, fl.ToAirport),
		Date:         formatTime(fl.DepartureAt),
		Price:        fl.Price,
	}
}

// List handles GET /v1/flights?page=&size=. Page numbering starts at 1;
// size=-1 returns all flights in a single page.
func (h *FlightHandler) List(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size == 0 || size < -1 {
		size = 10
	}

	items, total, err := h.Flights.List(c.Request().Context(), page, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resp := flightsPageResp{
		Page:          page,
		PageSize:      len(items),
		TotalElements: total,
		Items:         make([]flightResp, 0, len(items)),
	}
	for _, fl := range items {
		resp.Items = append(resp.Items, toFlightResp(fl))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/flights/:number.
func (h *FlightHandler) Get(c echo.Context) error {
	number := c.Param("number")
	fl, err := h.Flights.GetByNumber(c.Request().Context(), number)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toFlightResp(fl))
}
