package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// displayTime is the format flight departure times are rendered in for
// API responses, minute precision in UTC.
const displayTime = "2006-01-02 15:04"

// airportLabel renders an airport for display as "City Name",
// e.g. "Москва Шереметьево".
func airportLabel(city, name string) string {
	return fmt.Sprintf("%s %s", city, name)
}

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The value is stored by the JWTAuth middleware and its concrete type
// depends on how the JWT claims were decoded.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// formatTime renders a timestamp for API responses.
func formatTime(t time.Time) string {
	return t.UTC().Format(displayTime)
}
