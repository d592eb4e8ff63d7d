package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/model"
)

func buildGraph(t *testing.T, flights []model.Flight, airports []model.Airport) *Graph {
	t.Helper()
	g, err := Build(flights, airports)
	require.NoError(t, err)
	return g
}

func flightNumbers(r Route) []string {
	out := make([]string, 0, len(r.Flights))
	for _, e := range r.Flights {
		out = append(out, e.FlightNumber)
	}
	return out
}

func TestCheapestRouteDirectFlight(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
	}
	g := buildGraph(t, []model.Flight{flight("AFL030", 1, 2, 500)}, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)
	assert.Equal(t, uint32(500), route.TotalPrice)
	assert.Equal(t, []string{"AFL030"}, flightNumbers(route))
}

func TestCheapestRoutePrefersCheaperConnection(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
		airport(3, "Казань", "Казань"),
	}
	flights := []model.Flight{
		flight("AFL030", 1, 2, 1500), // direct, more expensive
		flight("AFL032", 1, 3, 500),
		flight("AFL033", 3, 2, 700),
	}
	g := buildGraph(t, flights, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)
	assert.Equal(t, uint32(1200), route.TotalPrice)
	assert.Equal(t, []string{"AFL032", "AFL033"}, flightNumbers(route))
}

func TestCheapestRoutePrefersCheaperDirect(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
		airport(3, "Казань", "Казань"),
	}
	flights := []model.Flight{
		flight("AFL030", 1, 2, 1000), // direct, cheaper than the connection
		flight("AFL032", 1, 3, 600),
		flight("AFL033", 3, 2, 600),
	}
	g := buildGraph(t, flights, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), route.TotalPrice)
	assert.Equal(t, []string{"AFL030"}, flightNumbers(route))
}

func TestSameSourceAndDestination(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
	}
	g := buildGraph(t, []model.Flight{flight("AFL030", 1, 2, 500)}, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Шереметьево")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), route.TotalPrice)
	require.NotNil(t, route.Flights)
	assert.Empty(t, route.Flights)
}

func TestUnknownAirport(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
	}
	g := buildGraph(t, []model.Flight{flight("AFL030", 1, 2, 500)}, airports)

	_, err := FindCheapestRoute(g, "Нарния", "Пулково")
	assert.ErrorIs(t, err, ErrAirportNotFound)

	_, err = FindCheapestRoute(g, "Шереметьево", "Нарния")
	assert.ErrorIs(t, err, ErrAirportNotFound)
}

func TestNoRouteBetweenComponents(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
		airport(3, "Казань", "Казань"),
		airport(4, "Кольцово", "Екатеринбург"),
	}
	flights := []model.Flight{
		flight("AFL030", 1, 2, 500),
		flight("AFL040", 3, 4, 500),
	}
	g := buildGraph(t, flights, airports)

	_, err := FindCheapestRoute(g, "Шереметьево", "Кольцово")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestNoRouteAgainstEdgeDirection(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
	}
	g := buildGraph(t, []model.Flight{flight("AFL030", 1, 2, 500)}, airports)

	// Edges are directed; the reverse direction has no flights.
	_, err := FindCheapestRoute(g, "Пулково", "Шереметьево")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestTotalPriceEqualsEdgeSum(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
		airport(3, "Казань", "Казань"),
		airport(4, "Кольцово", "Екатеринбург"),
	}
	flights := []model.Flight{
		flight("AFL032", 1, 3, 500),
		flight("AFL033", 3, 4, 300),
		flight("AFL034", 4, 2, 250),
		flight("AFL030", 1, 2, 2000),
	}
	g := buildGraph(t, flights, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)

	var sum uint32
	for _, e := range route.Flights {
		sum += e.Price
	}
	assert.Equal(t, sum, route.TotalPrice)

	// The last edge must land at the destination.
	require.NotEmpty(t, route.Flights)
	assert.Equal(t, "Пулково", route.Flights[len(route.Flights)-1].To)
}

func TestSelfLoopNeverUsed(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
	}
	flights := []model.Flight{
		flight("AFL099", 1, 1, 100), // self-loop, can never improve a path
		flight("AFL030", 1, 2, 500),
	}
	g := buildGraph(t, flights, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)
	assert.Equal(t, uint32(500), route.TotalPrice)
	assert.Equal(t, []string{"AFL030"}, flightNumbers(route))
}

func TestDuplicateEdgesUseCheapest(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
	}
	flights := []model.Flight{
		flight("AFL030", 1, 2, 1500),
		flight("AFL031", 1, 2, 900),
		flight("AFL035", 1, 2, 1100),
	}
	g := buildGraph(t, flights, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)
	assert.Equal(t, uint32(900), route.TotalPrice)
	assert.Equal(t, []string{"AFL031"}, flightNumbers(route))
}

func TestZeroPriceFlights(t *testing.T) {
	airports := []model.Airport{
		airport(1, "Шереметьево", "Москва"),
		airport(2, "Пулково", "Санкт-Петербург"),
		airport(3, "Казань", "Казань"),
	}
	flights := []model.Flight{
		flight("AFL050", 1, 3, 0),
		flight("AFL051", 3, 2, 0),
		flight("AFL030", 1, 2, 1),
	}
	g := buildGraph(t, flights, airports)

	route, err := FindCheapestRoute(g, "Шереметьево", "Пулково")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), route.TotalPrice)
	assert.Len(t, route.Flights, 2)
}

// bruteForceCheapest enumerates every simple path and returns the
// minimum total price, or false when no path exists.
func bruteForceCheapest(g *Graph, from, to string) (uint32, bool) {
	best := uint32(0)
	found := false
	visited := map[string]bool{}
	var walk func(at string, total uint32)
	walk = func(at string, total uint32) {
		if at == to {
			if !found || total < best {
				best, found = total, true
			}
			return
		}
		visited[at] = true
		for _, e := range g.Outbound(at) {
			if !visited[e.To] {
				walk(e.To, total+e.Price)
			}
		}
		visited[at] = false
	}
	walk(from, 0)
	return best, found
}

func TestCheapestRouteMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	const vertices = 8
	airports := make([]model.Airport, 0, vertices)
	for i := 0; i < vertices; i++ {
		airports = append(airports, airport(uint64(i+1), fmt.Sprintf("Аэропорт-%d", i+1), "Город"))
	}

	for trial := 0; trial < 50; trial++ {
		var flights []model.Flight
		for i := 0; i < 16; i++ {
			from := uint64(rng.Intn(vertices) + 1)
			to := uint64(rng.Intn(vertices) + 1)
			flights = append(flights, flight(fmt.Sprintf("AFL%03d", i), from, to, uint32(rng.Intn(1000)+1)))
		}
		g := buildGraph(t, flights, airports)

		from, to := "Аэропорт-1", fmt.Sprintf("Аэропорт-%d", vertices)
		if !g.Knows(from) || !g.Knows(to) {
			continue
		}

		want, reachable := bruteForceCheapest(g, from, to)
		route, err := FindCheapestRoute(g, from, to)
		if !reachable {
			assert.ErrorIs(t, err, ErrNoRoute, "trial %d", trial)
			continue
		}
		require.NoError(t, err, "trial %d", trial)
		assert.Equal(t, want, route.TotalPrice, "trial %d", trial)
	}
}
