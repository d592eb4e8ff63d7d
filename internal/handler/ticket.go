package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/ledger"
	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/queue"
	"github.com/iliyamo/flight-booking/internal/repository"
	queue_publisher "github.com/iliyamo/flight-booking/internal/service"
)

// TicketHandler orchestrates ticket purchase and cancellation. Each
// mutation runs the ticket write and the bonus-account update inside a
// single transaction so a crash can never leave a paid ticket without
// its matching ledger entry.
type TicketHandler struct {
	DB        *sql.DB
	Tickets   *repository.TicketRepo
	Flights   *repository.FlightRepo
	Privilege *repository.PrivilegeRepo
}

func NewTicketHandler(db *sql.DB, tickets *repository.TicketRepo, flights *repository.FlightRepo, privilege *repository.PrivilegeRepo) *TicketHandler {
	if db == nil || tickets == nil || flights == nil || privilege == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{DB: db, Tickets: tickets, Flights: flights, Privilege: privilege}
}

// purchaseReq is the body of POST /v1/tickets. When paidFromBalance is
// true and bonus_amount is zero, the service spends as much of the
// balance as the price allows.
type purchaseReq struct {
	FlightNumber    string `json:"flightNumber"`
	PaidFromBalance bool   `json:"paidFromBalance"`
	BonusAmount     uint32 `json:"bonus_amount"`
}

// privilegePart is the bonus-account fragment embedded in ticket responses.
type privilegePart struct {
	Balance uint32 `json:"balance"`
	Status  string `json:"status"`
}

// ticketResp is the display form of a ticket.
type ticketResp struct {
	TicketID     uint64 `json:"ticketId"`
	FlightNumber string `json:"flightNumber"`
	FromAirport  string `json:"fromAirport"`
	ToAirport    string `json:"toAirport"`
	Date         string `json:"date"`
	Price        uint32 `json:"price"`
	Status       string `json:"status"`
}

type purchaseResp struct {
	ticketResp
	PaidByMoney   uint32        `json:"paidByMoney"`
	PaidByBonuses uint32        `json:"paidByBonuses"`
	Privilege     privilegePart `json:"privilege"`
}

// toTicketResp merges a ticket row with its flight listing for display.
func toTicketResp(t model.Ticket, fl repository.FlightListing) ticketResp {
	return ticketResp{
		TicketID:     t.ID,
		FlightNumber: fl.FlightNumber,
		FromAirport:  airportLabel(fl.FromCity, fl.FromAirport),
		ToAirport:    airportLabel(fl.ToCity, fl.ToAirport),
		Date:         formatTime(fl.DepartureAt),
		Price:        t.Price,
		Status:       t.Status,
	}
}

// Purchase handles POST /v1/tickets.
//
// Inside one transaction: insert the PAID ticket, lock the user's bonus
// account (creating it on first use), then either debit the balance or
// credit 10% cashback depending on paidFromBalance. The purchase event
// is published only after the transaction commits.
func (h *TicketHandler) Purchase(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req purchaseReq
	if err := c.Bind(&req); err != nil || req.FlightNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flightNumber is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	flight, err := h.Flights.GetFlightByNumber(ctx, req.FlightNumber)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket := model.Ticket{
		UserID:   userID,
		FlightID: flight.ID,
		Price:    flight.Price,
		Status:   model.TicketStatusPaid,
	}
	if err := h.Tickets.CreateTx(ctx, tx, &ticket); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create ticket"})
	}

	priv, err := h.Privilege.GetOrCreateByUserTx(ctx, tx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load bonus account"})
	}
	store := h.Privilege.Tx(tx)

	var paidByMoney, paidByBonuses, balance uint32
	if req.PaidFromBalance {
		requested := req.BonusAmount
		if requested == 0 {
			requested = flight.Price
		}
		paidByMoney, paidByBonuses, balance, err = ledger.DebitForPurchase(ctx, store, priv.ID, ticket.ID, flight.Price, requested)
	} else {
		paidByMoney = flight.Price
		balance, err = ledger.CreditCashback(ctx, store, priv.ID, ticket.ID, flight.Price)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update bonus account"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize purchase"})
	}
	committed = true

	fromAp, toAp, apErr := h.Flights.AirportsByID(ctx, flight.FromAirportID, flight.ToAirportID)
	if apErr != nil {
		// The purchase already committed; degrade to ids-only labels.
		log.Printf("ticket %d: airport lookup failed: %v", ticket.ID, apErr)
	}

	event := queue.TicketPurchasedEvent{
		TicketID:      ticket.ID,
		UserID:        userID,
		FlightNumber:  flight.FlightNumber,
		FromAirport:   fromAp.Name,
		ToAirport:     toAp.Name,
		Price:         flight.Price,
		PaidByMoney:   paidByMoney,
		PaidByBonuses: paidByBonuses,
		PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishTicketPurchased(ctx, event); err != nil {
		log.Printf("ticket %d: purchase event not published: %v", ticket.ID, err)
	}

	resp := purchaseResp{
		ticketResp: ticketResp{
			TicketID:     ticket.ID,
			FlightNumber: flight.FlightNumber,
			FromAirport:  airportLabel(fromAp.City, fromAp.Name),
			ToAirport:    airportLabel(toAp.City, toAp.Name),
			Date:         formatTime(flight.DepartureAt),
			Price:        flight.Price,
			Status:       ticket.Status,
		},
		PaidByMoney:   paidByMoney,
		PaidByBonuses: paidByBonuses,
		Privilege:     privilegePart{Balance: balance, Status: priv.Status},
	}
	return c.JSON(http.StatusCreated, resp)
}

// Cancel handles DELETE /v1/tickets/:id.
//
// Cancellation is idempotent: a ticket that is already CANCELED returns
// 204 without touching the bonus account again. Otherwise the status
// flip and the ledger reversal commit together.
func (h *TicketHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := h.Tickets.GetByIDForUserTx(ctx, tx, ticketID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if ticket.Status == model.TicketStatusCanceled {
		return c.NoContent(http.StatusNoContent)
	}

	canceled, err := h.Tickets.CancelTx(ctx, tx, ticketID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel ticket"})
	}
	if !canceled {
		// Lost a race with another cancellation of the same ticket.
		return c.NoContent(http.StatusNoContent)
	}

	var balance uint32
	priv, err := h.Privilege.GetByUserTx(ctx, tx, userID)
	switch {
	case err == nil:
		balance, err = ledger.ReverseForCancel(ctx, h.Privilege.Tx(tx), priv.ID, ticketID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not reverse bonus operation"})
		}
	case errors.Is(err, ledger.ErrPrivilegeNotFound):
		// No bonus account, nothing to reverse.
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize cancellation"})
	}
	committed = true

	event := queue.TicketCanceledEvent{
		TicketID:   ticketID,
		UserID:     userID,
		Balance:    balance,
		CanceledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishTicketCanceled(ctx, event); err != nil {
		log.Printf("ticket %d: cancel event not published: %v", ticketID, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/tickets, newest first.
func (h *TicketHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.ticketListing(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/tickets/:id. Tickets owned by other users are
// indistinguishable from missing ones.
func (h *TicketHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByIDForUser(ctx, ticketID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	flight, err := h.Flights.GetFlightByID(ctx, ticket.FlightID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	listing, err := h.Flights.GetByNumber(ctx, flight.FlightNumber)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toTicketResp(ticket, listing))
}

// ticketListing builds display rows for all of a user's tickets. Shared
// by the tickets listing and the aggregated /v1/me view.
func (h *TicketHandler) ticketListing(ctx context.Context, userID uint64) ([]ticketResp, error) {
	tickets, err := h.Tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]ticketResp, 0, len(tickets))
	// Flight rows repeat across tickets, so resolve each flight once.
	listings := make(map[uint64]repository.FlightListing, len(tickets))
	for _, t := range tickets {
		listing, ok := listings[t.FlightID]
		if !ok {
			flight, err := h.Flights.GetFlightByID(ctx, t.FlightID)
			if err != nil {
				return nil, err
			}
			listing, err = h.Flights.GetByNumber(ctx, flight.FlightNumber)
			if err != nil {
				return nil, err
			}
			listings[t.FlightID] = listing
		}
		resp = append(resp, toTicketResp(t, listing))
	}
	return resp, nil
}
