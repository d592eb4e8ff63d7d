package model

import "time"

// Privilege status tiers.  The tier is assigned when the account is
// created (BRONZE on lazy creation) and is not recomputed from the
// balance by any ledger operation.
const (
	PrivilegeStatusBronze = "BRONZE"
	PrivilegeStatusSilver = "SILVER"
	PrivilegeStatusGold   = "GOLD"
)

// History operation kinds.  The kind records the original direction
// of a balance mutation so a later cancellation can be reversed by
// applying the opposite movement.
const (
	OperationFillInBalance   = "FILL_IN_BALANCE"   // balance was credited
	OperationDebitTheAccount = "DEBIT_THE_ACCOUNT" // balance was debited
)

// Privilege is a user's loyalty account, one per user, as stored in
// the `privilege` table.  The balance never goes below zero.
//
// Fields:
//  ID      – primary key identifier.
//  UserID  – owning user (unique, one-to-one).
//  Status  – tier, one of BRONZE/SILVER/GOLD.
//  Balance – current bonus balance, always >= 0.
type Privilege struct {
	ID      uint64 // privilege.id
	UserID  uint64 // privilege.user_id
	Status  string // privilege.status
	Balance uint32 // privilege.balance
}

// PrivilegeHistory is one immutable audit record of a balance
// mutation, stored in the `privilege_history` table.  The delta is
// an unsigned magnitude; the direction lives in OperationType.
// Rows are append-only and are never updated or deleted.
//
// Fields:
//  ID            – primary key identifier.
//  PrivilegeID   – account the mutation applied to.
//  TicketID      – ticket that caused the mutation.
//  OccurredAt    – when the mutation happened.
//  BalanceDiff   – magnitude of the change.
//  OperationType – FILL_IN_BALANCE or DEBIT_THE_ACCOUNT.
type PrivilegeHistory struct {
	ID            uint64    // privilege_history.id
	PrivilegeID   uint64    // privilege_history.privilege_id
	TicketID      uint64    // privilege_history.ticket_id
	OccurredAt    time.Time // privilege_history.occurred_at
	BalanceDiff   uint32    // privilege_history.balance_diff
	OperationType string    // privilege_history.operation_type
}
