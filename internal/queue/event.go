// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketPurchasedEvent is published when a ticket purchase commits.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type TicketPurchasedEvent struct {
	TicketID      uint64 `json:"ticket_id"`
	UserID        uint64 `json:"user_id"`
	FlightNumber  string `json:"flight_number"`
	FromAirport   string `json:"from_airport"`
	ToAirport     string `json:"to_airport"`
	Price         uint32 `json:"price"`
	PaidByMoney   uint32 `json:"paid_by_money"`
	PaidByBonuses uint32 `json:"paid_by_bonuses"`
	PurchasedAt   string `json:"purchased_at"`
}

// TicketCanceledEvent is published when a ticket cancellation commits,
// after any bonus reversal has been applied.
type TicketCanceledEvent struct {
	TicketID   uint64 `json:"ticket_id"`
	UserID     uint64 `json:"user_id"`
	Balance    uint32 `json:"balance"`
	CanceledAt string `json:"canceled_at"`
}
