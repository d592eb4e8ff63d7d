package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/flight-booking/internal/model"
)

// TicketRepo provides CRUD operations for tickets. Tickets are
// created PAID and move at most once to CANCELED; the transition is
// guarded in SQL so a concurrent double-cancel cannot both succeed.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

// CreateTx inserts a new PAID ticket within an existing transaction
// and populates the generated ID. The caller commits or rolls back.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (user_id, flight_id, price, status) VALUES (?,?,?,?)",
		t.UserID, t.FlightID, t.Price, model.TicketStatusPaid)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.TicketStatusPaid
	return nil
}

// GetByIDForUser returns a ticket owned by the given user.
// ErrTicketNotFound covers both a missing ticket and one owned by
// somebody else, so the API does not leak other users' ticket ids.
func (r *TicketRepo) GetByIDForUser(ctx context.Context, ticketID, userID uint64) (model.Ticket, error) {
	var t model.Ticket
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, flight_id, price, status, created_at, updated_at FROM tickets WHERE id=? AND user_id=? LIMIT 1",
		ticketID, userID).Scan(&t.ID, &t.UserID, &t.FlightID, &t.Price, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Ticket{}, ErrTicketNotFound
	}
	return t, err
}

// GetByIDForUserTx is GetByIDForUser inside a transaction, used by the
// cancellation flow so the status read and update see the same row
// state.
func (r *TicketRepo) GetByIDForUserTx(ctx context.Context, tx *sql.Tx, ticketID, userID uint64) (model.Ticket, error) {
	var t model.Ticket
	err := tx.QueryRowContext(ctx,
		"SELECT id, user_id, flight_id, price, status, created_at, updated_at FROM tickets WHERE id=? AND user_id=? LIMIT 1 FOR UPDATE",
		ticketID, userID).Scan(&t.ID, &t.UserID, &t.FlightID, &t.Price, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Ticket{}, ErrTicketNotFound
	}
	return t, err
}

// ListByUser returns all tickets of a user, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, flight_id, price, status, created_at, updated_at FROM tickets WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.FlightID, &t.Price, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CancelTx marks a PAID ticket CANCELED within a transaction. It
// reports whether a row actually changed; false means the ticket was
// already canceled and the caller must skip the ledger reversal.
func (r *TicketRepo) CancelTx(ctx context.Context, tx *sql.Tx, ticketID, userID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE tickets SET status=? WHERE id=? AND user_id=? AND status=?",
		model.TicketStatusCanceled, ticketID, userID, model.TicketStatusPaid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
