package graph

import "container/heap"

// Route is the result of a cheapest-route query: the summed price of
// the itinerary and the flights in departure order.  A query from an
// airport to itself yields TotalPrice 0 and an empty flight list.
type Route struct {
	TotalPrice uint32 `json:"total_price"`
	Flights    []Edge `json:"flights"`
}

// queueItem is one entry of the priority queue: an airport together
// with the tentative price accumulated to reach it.  Entries become
// stale when a cheaper price for the same airport is found later;
// stale entries are skipped on pop instead of being removed.
type queueItem struct {
	airport string
	price   uint32
}

// priceQueue is a binary min-heap of queueItems ordered by price.
type priceQueue []queueItem

func (q priceQueue) Len() int            { return len(q) }
func (q priceQueue) Less(i, j int) bool  { return q[i].price < q[j].price }
func (q priceQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priceQueue) Push(x interface{}) { *q = append(*q, x.(queueItem)) }
func (q *priceQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// predecessor remembers how an airport was first reached cheapest:
// the airport we came from and the edge used.  Walking predecessors
// backward from the destination reconstructs the itinerary.
type predecessor struct {
	from string
	edge Edge
}

// FindCheapestRoute runs a single-source shortest-path search from
// one airport to another, minimising summed price.  All prices are
// non-negative, so Dijkstra's invariant holds: the first time the
// destination is popped its price is final and the search stops.
//
// Both endpoints must be vertices of the graph; otherwise
// ErrAirportNotFound is returned.  If the destination is a known
// vertex that the search never reaches, ErrNoRoute is returned.
// When several itineraries share the minimum price, which one is
// returned depends on queue order and is not specified.
func FindCheapestRoute(g *Graph, from, to string) (Route, error) {
	if !g.Knows(from) || !g.Knows(to) {
		return Route{}, ErrAirportNotFound
	}

	// dist holds the best known price per airport; absence means
	// the airport has not been reached yet (infinite price).
	dist := map[string]uint32{from: 0}
	prev := make(map[string]predecessor)

	pq := &priceQueue{{airport: from, price: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(queueItem)
		if cur.airport == to {
			return reconstruct(prev, from, to, cur.price), nil
		}
		if best, ok := dist[cur.airport]; ok && cur.price > best {
			continue // stale entry, a cheaper path was found already
		}
		for _, e := range g.Outbound(cur.airport) {
			candidate := cur.price + e.Price
			if best, ok := dist[e.To]; ok && candidate >= best {
				continue
			}
			dist[e.To] = candidate
			prev[e.To] = predecessor{from: cur.airport, edge: e}
			heap.Push(pq, queueItem{airport: e.To, price: candidate})
		}
	}
	return Route{}, ErrNoRoute
}

// reconstruct walks predecessor links backward from the destination
// and reverses the collected edges into departure order.
func reconstruct(prev map[string]predecessor, from, to string, total uint32) Route {
	var flights []Edge
	for at := to; at != from; {
		p := prev[at]
		flights = append(flights, p.edge)
		at = p.from
	}
	for i, j := 0, len(flights)-1; i < j; i, j = i+1, j-1 {
		flights[i], flights[j] = flights[j], flights[i]
	}
	if flights == nil {
		flights = []Edge{}
	}
	return Route{TotalPrice: total, Flights: flights}
}
