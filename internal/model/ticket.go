package model

import "time"

// Ticket statuses.  A ticket is created PAID and transitions at most
// once to CANCELED; cancellation is terminal.
const (
	TicketStatusPaid     = "PAID"     // ticket has been purchased
	TicketStatusCanceled = "CANCELED" // ticket has been canceled
)

// Ticket records a user's purchase of a seat on a flight, as stored
// in the `tickets` table.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the ticket.
//  FlightID  – flight the ticket is for.
//  Price     – price paid, in the smallest currency unit.
//  Status    – PAID or CANCELED.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Ticket struct {
	ID        uint64    // tickets.id
	UserID    uint64    // tickets.user_id
	FlightID  uint64    // tickets.flight_id
	Price     uint32    // tickets.price
	Status    string    // tickets.status
	CreatedAt time.Time // tickets.created_at
	UpdatedAt time.Time // tickets.updated_at
}
