package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/ledger"
	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/repository"
)

// PrivilegeHandler exposes the bonus account and the aggregated user view.
type PrivilegeHandler struct {
	Privilege *repository.PrivilegeRepo
	Users     *repository.UserRepo
	Tickets   *TicketHandler
}

func NewPrivilegeHandler(privilege *repository.PrivilegeRepo, users *repository.UserRepo, tickets *TicketHandler) *PrivilegeHandler {
	if privilege == nil || users == nil || tickets == nil {
		panic("nil dependency passed to NewPrivilegeHandler")
	}
	return &PrivilegeHandler{Privilege: privilege, Users: users, Tickets: tickets}
}

// historyEntry is one row of the bonus ledger as rendered to clients.
type historyEntry struct {
	Date          string `json:"date"`
	TicketID      uint64 `json:"ticket_id"`
	BalanceDiff   uint32 `json:"balanceDiff"`
	OperationType string `json:"operationType"`
}

type privilegeResp struct {
	Balance uint32         `json:"balance"`
	Status  string         `json:"status"`
	History []historyEntry `json:"history"`
}

// Get handles GET /v1/privilege. A user who has never bought a ticket
// has no bonus account yet; that reads as an empty BRONZE account
// rather than an error.
func (h *PrivilegeHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	priv, err := h.Privilege.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrPrivilegeNotFound) {
			return c.JSON(http.StatusOK, privilegeResp{
				Balance: 0,
				Status:  model.PrivilegeStatusBronze,
				History: []historyEntry{},
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	history, err := h.Privilege.History(ctx, priv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resp := privilegeResp{
		Balance: priv.Balance,
		Status:  priv.Status,
		History: make([]historyEntry, 0, len(history)),
	}
	for _, e := range history {
		resp.History = append(resp.History, historyEntry{
			Date:          e.OccurredAt.UTC().Format(time.RFC3339),
			TicketID:      e.TicketID,
			BalanceDiff:   e.BalanceDiff,
			OperationType: e.OperationType,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /v1/me: the user's profile, tickets and bonus account
// in a single response.
func (h *PrivilegeHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tickets, err := h.Tickets.ticketListing(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	part := privilegePart{Balance: 0, Status: model.PrivilegeStatusBronze}
	priv, err := h.Privilege.GetByUser(ctx, userID)
	switch {
	case err == nil:
		part = privilegePart{Balance: priv.Balance, Status: priv.Status}
	case errors.Is(err, ledger.ErrPrivilegeNotFound):
		// First purchase creates the account; until then show the default.
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"login":     user.Login,
		"email":     user.Email,
		"tickets":   tickets,
		"privilege": part,
	})
}
