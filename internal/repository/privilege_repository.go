package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/flight-booking/internal/ledger"
	"github.com/iliyamo/flight-booking/internal/model"
)

// PrivilegeRepo provides access to privilege accounts and their
// history. Balance mutations go through the ledger package: Tx
// returns a transaction-bound ledger.Store whose GetForUpdate locks
// the privilege row, which serializes all mutations for one account
// while leaving other accounts untouched.
type PrivilegeRepo struct{ DB *sql.DB }

func NewPrivilegeRepo(db *sql.DB) *PrivilegeRepo { return &PrivilegeRepo{DB: db} }

// GetByUser returns the privilege account owned by the user, or
// ledger.ErrPrivilegeNotFound when none exists.
func (r *PrivilegeRepo) GetByUser(ctx context.Context, userID uint64) (model.Privilege, error) {
	var p model.Privilege
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, status, balance FROM privilege WHERE user_id=? LIMIT 1",
		userID).Scan(&p.ID, &p.UserID, &p.Status, &p.Balance)
	if err == sql.ErrNoRows {
		return model.Privilege{}, ledger.ErrPrivilegeNotFound
	}
	return p, err
}

// GetByUserTx is GetByUser inside a transaction with the row locked,
// used by the cancellation flow before reversing the ledger entry.
func (r *PrivilegeRepo) GetByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Privilege, error) {
	var p model.Privilege
	err := tx.QueryRowContext(ctx,
		"SELECT id, user_id, status, balance FROM privilege WHERE user_id=? LIMIT 1 FOR UPDATE",
		userID).Scan(&p.ID, &p.UserID, &p.Status, &p.Balance)
	if err == sql.ErrNoRows {
		return model.Privilege{}, ledger.ErrPrivilegeNotFound
	}
	return p, err
}

// GetOrCreateByUserTx returns the user's privilege account, creating
// it lazily with a zero balance and BRONZE status when absent. It is
// called by the purchase orchestrator before any ledger operation;
// the ledger itself never creates accounts. The row is locked for
// the rest of the transaction.
//
// privilege.user_id carries a unique index (uq_privilege_user), so two
// first purchases racing past the empty locked SELECT cannot both
// insert: the loser gets a duplicate-key error and re-reads the
// winner's row under FOR UPDATE.
func (r *PrivilegeRepo) GetOrCreateByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Privilege, error) {
	var p model.Privilege
	err := tx.QueryRowContext(ctx,
		"SELECT id, user_id, status, balance FROM privilege WHERE user_id=? LIMIT 1 FOR UPDATE",
		userID).Scan(&p.ID, &p.UserID, &p.Status, &p.Balance)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return model.Privilege{}, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO privilege (user_id, status, balance) VALUES (?,?,0)",
		userID, model.PrivilegeStatusBronze)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			err = tx.QueryRowContext(ctx,
				"SELECT id, user_id, status, balance FROM privilege WHERE user_id=? LIMIT 1 FOR UPDATE",
				userID).Scan(&p.ID, &p.UserID, &p.Status, &p.Balance)
			if err != nil {
				return model.Privilege{}, err
			}
			return p, nil
		}
		return model.Privilege{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Privilege{}, err
	}
	return model.Privilege{ID: uint64(id), UserID: userID, Status: model.PrivilegeStatusBronze, Balance: 0}, nil
}

// History returns all history entries for a privilege account,
// oldest first.
func (r *PrivilegeRepo) History(ctx context.Context, privilegeID uint64) ([]model.PrivilegeHistory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, privilege_id, ticket_id, occurred_at, balance_diff, operation_type FROM privilege_history WHERE privilege_id=? ORDER BY id",
		privilegeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.PrivilegeHistory, 0)
	for rows.Next() {
		var h model.PrivilegeHistory
		if err := rows.Scan(&h.ID, &h.PrivilegeID, &h.TicketID, &h.OccurredAt, &h.BalanceDiff, &h.OperationType); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Tx wraps an open transaction as a ledger.Store. All ledger calls
// made against the returned store share the transaction and commit or
// roll back together with the caller's other writes.
func (r *PrivilegeRepo) Tx(tx *sql.Tx) ledger.Store { return &privilegeTxStore{tx: tx} }

// privilegeTxStore implements ledger.Store over a *sql.Tx.
type privilegeTxStore struct{ tx *sql.Tx }

// GetForUpdate loads the privilege row with a row-level lock held
// until the transaction ends, serializing concurrent mutations of the
// same account.
func (s *privilegeTxStore) GetForUpdate(ctx context.Context, privilegeID uint64) (model.Privilege, error) {
	var p model.Privilege
	err := s.tx.QueryRowContext(ctx,
		"SELECT id, user_id, status, balance FROM privilege WHERE id=? LIMIT 1 FOR UPDATE",
		privilegeID).Scan(&p.ID, &p.UserID, &p.Status, &p.Balance)
	if err == sql.ErrNoRows {
		return model.Privilege{}, ledger.ErrPrivilegeNotFound
	}
	return p, err
}

func (s *privilegeTxStore) UpdateBalance(ctx context.Context, privilegeID uint64, balance uint32) error {
	_, err := s.tx.ExecContext(ctx,
		"UPDATE privilege SET balance=? WHERE id=?", balance, privilegeID)
	return err
}

func (s *privilegeTxStore) AppendHistory(ctx context.Context, e model.PrivilegeHistory) error {
	_, err := s.tx.ExecContext(ctx,
		"INSERT INTO privilege_history (privilege_id, ticket_id, occurred_at, balance_diff, operation_type) VALUES (?,?,?,?,?)",
		e.PrivilegeID, e.TicketID, e.OccurredAt, e.BalanceDiff, e.OperationType)
	return err
}

// FindByTicket returns the oldest history entry for the
// (privilege, ticket) pair: the entry written at purchase time, which
// is the one a cancellation must reverse.
func (s *privilegeTxStore) FindByTicket(ctx context.Context, privilegeID, ticketID uint64) (model.PrivilegeHistory, error) {
	var h model.PrivilegeHistory
	err := s.tx.QueryRowContext(ctx,
		"SELECT id, privilege_id, ticket_id, occurred_at, balance_diff, operation_type FROM privilege_history WHERE privilege_id=? AND ticket_id=? ORDER BY id LIMIT 1",
		privilegeID, ticketID).Scan(&h.ID, &h.PrivilegeID, &h.TicketID, &h.OccurredAt, &h.BalanceDiff, &h.OperationType)
	if err == sql.ErrNoRows {
		return model.PrivilegeHistory{}, ledger.ErrHistoryNotFound
	}
	return h, err
}
