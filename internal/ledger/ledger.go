// Package ledger owns privilege balance mutations and their audit
// trail.  Every balance-affecting event appends one immutable history
// entry tagged with the direction of the mutation, which is what makes
// cancel-time reversal possible: the original entry is re-read and the
// opposite movement is applied.
//
// The ledger never creates privilege accounts; lazy creation on first
// purchase is the purchase orchestrator's job.  All mutations for one
// account must run inside a single store transaction so that
// concurrent purchases or a purchase racing a cancellation cannot lose
// an update.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/flight-booking/internal/model"
)

// ErrPrivilegeNotFound is returned when the privilege account does not
// exist.  Handlers should translate this into an HTTP 404 response.
var ErrPrivilegeNotFound = errors.New("privilege not found")

// ErrHistoryNotFound is returned by Store.FindByTicket when no history
// entry exists for the (privilege, ticket) pair.  ReverseForCancel
// treats it as "nothing to reverse" rather than a failure.
var ErrHistoryNotFound = errors.New("privilege history entry not found")

// Store is the persistence boundary of the ledger.  The production
// implementation is repository.PrivilegeRepo bound to a transaction
// that locks the privilege row for its duration; tests use an
// in-memory fake.  GetForUpdate must return ErrPrivilegeNotFound when
// the account is missing, and FindByTicket must return the oldest
// entry for the pair or ErrHistoryNotFound.
type Store interface {
	GetForUpdate(ctx context.Context, privilegeID uint64) (model.Privilege, error)
	UpdateBalance(ctx context.Context, privilegeID uint64, balance uint32) error
	AppendHistory(ctx context.Context, entry model.PrivilegeHistory) error
	FindByTicket(ctx context.Context, privilegeID, ticketID uint64) (model.PrivilegeHistory, error)
}

// Cashback returns the bonus credited for a ticket paid fully in
// money: 10% of the price, rounded half up to the nearest unit.
func Cashback(price uint32) uint32 {
	return (price + 5) / 10
}

// CreditCashback credits the 10% cashback for a money-paid purchase
// and appends a FILL_IN_BALANCE entry.  It returns the new balance.
func CreditCashback(ctx context.Context, s Store, privilegeID, ticketID uint64, price uint32) (uint32, error) {
	p, err := s.GetForUpdate(ctx, privilegeID)
	if err != nil {
		return 0, err
	}
	bonus := Cashback(price)
	balance := p.Balance + bonus
	if err := s.UpdateBalance(ctx, privilegeID, balance); err != nil {
		return 0, err
	}
	if err := s.AppendHistory(ctx, model.PrivilegeHistory{
		PrivilegeID:   privilegeID,
		TicketID:      ticketID,
		OccurredAt:    time.Now().UTC(),
		BalanceDiff:   bonus,
		OperationType: model.OperationFillInBalance,
	}); err != nil {
		return 0, err
	}
	return balance, nil
}

// DebitForPurchase spends bonuses against a ticket price.  The amount
// spent is min(requestedBonus, balance, price): a debit never drives
// the balance negative and never exceeds the price.  One
// DEBIT_THE_ACCOUNT entry is appended recording the applied amount,
// which is exactly what a later reversal must credit back.  The entry
// is written even for a zero debit so cancel-time lookup finds a row.
// It returns the money/bonus split and the new balance.
func DebitForPurchase(ctx context.Context, s Store, privilegeID, ticketID uint64, price, requestedBonus uint32) (paidByMoney, paidByBonuses, newBalance uint32, err error) {
	p, err := s.GetForUpdate(ctx, privilegeID)
	if err != nil {
		return 0, 0, 0, err
	}
	paidByBonuses = requestedBonus
	if paidByBonuses > p.Balance {
		paidByBonuses = p.Balance
	}
	if paidByBonuses > price {
		paidByBonuses = price
	}
	paidByMoney = price - paidByBonuses
	newBalance = p.Balance - paidByBonuses
	if err := s.UpdateBalance(ctx, privilegeID, newBalance); err != nil {
		return 0, 0, 0, err
	}
	if err := s.AppendHistory(ctx, model.PrivilegeHistory{
		PrivilegeID:   privilegeID,
		TicketID:      ticketID,
		OccurredAt:    time.Now().UTC(),
		BalanceDiff:   paidByBonuses,
		OperationType: model.OperationDebitTheAccount,
	}); err != nil {
		return 0, 0, 0, err
	}
	return paidByMoney, paidByBonuses, newBalance, nil
}

// ReverseForCancel undoes the balance effect a ticket purchase had on
// the account.  The original entry for (privilege, ticket) decides the
// direction: a FILL_IN_BALANCE entry (cashback was granted) is
// reversed by debiting the same delta, clamped at zero; a
// DEBIT_THE_ACCOUNT entry (bonuses were spent) is reversed by
// crediting the same delta.  When no entry exists the balance is left
// untouched.  The reversal appends its own history entry.  The ledger
// does not track ticket status; guarding against re-cancellation of an
// already-canceled ticket is the caller's responsibility.
func ReverseForCancel(ctx context.Context, s Store, privilegeID, ticketID uint64) (uint32, error) {
	p, err := s.GetForUpdate(ctx, privilegeID)
	if err != nil {
		return 0, err
	}
	entry, err := s.FindByTicket(ctx, privilegeID, ticketID)
	if err != nil {
		if errors.Is(err, ErrHistoryNotFound) {
			return p.Balance, nil // purchase touched no bonuses, nothing to reverse
		}
		return 0, err
	}

	var balance, applied uint32
	var op string
	switch entry.OperationType {
	case model.OperationFillInBalance:
		applied = entry.BalanceDiff
		if applied > p.Balance {
			applied = p.Balance
		}
		balance = p.Balance - applied
		op = model.OperationDebitTheAccount
	default: // DEBIT_THE_ACCOUNT
		applied = entry.BalanceDiff
		balance = p.Balance + applied
		op = model.OperationFillInBalance
	}
	if err := s.UpdateBalance(ctx, privilegeID, balance); err != nil {
		return 0, err
	}
	if err := s.AppendHistory(ctx, model.PrivilegeHistory{
		PrivilegeID:   privilegeID,
		TicketID:      ticketID,
		OccurredAt:    time.Now().UTC(),
		BalanceDiff:   applied,
		OperationType: op,
	}); err != nil {
		return 0, err
	}
	return balance, nil
}
