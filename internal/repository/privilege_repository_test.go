package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/model"
)

const privilegeSelect = "SELECT id, user_id, status, balance FROM privilege"

func privilegeRow(id, userID uint64, status string, balance uint32) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "status", "balance"}).
		AddRow(id, userID, status, balance)
}

func TestGetOrCreateByUserTxReturnsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(privilegeSelect).
		WithArgs(uint64(7)).
		WillReturnRows(privilegeRow(3, 7, model.PrivilegeStatusBronze, 250))

	tx, err := db.Begin()
	require.NoError(t, err)

	p, err := NewPrivilegeRepo(db).GetOrCreateByUserTx(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), p.ID)
	assert.Equal(t, uint32(250), p.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateByUserTxCreatesWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(privilegeSelect).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "balance"}))
	mock.ExpectExec("INSERT INTO privilege").
		WithArgs(uint64(7), model.PrivilegeStatusBronze).
		WillReturnResult(sqlmock.NewResult(11, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	p, err := NewPrivilegeRepo(db).GetOrCreateByUserTx(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), p.ID)
	assert.Equal(t, model.PrivilegeStatusBronze, p.Status)
	assert.Equal(t, uint32(0), p.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateByUserTxReselectsAfterConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Two first purchases race: both see no row, one INSERT wins, the
	// loser hits uq_privilege_user and must re-read the winner's row
	// instead of failing the purchase or creating a second account.
	mock.ExpectBegin()
	mock.ExpectQuery(privilegeSelect).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "balance"}))
	mock.ExpectExec("INSERT INTO privilege").
		WithArgs(uint64(7), model.PrivilegeStatusBronze).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '7' for key 'uq_privilege_user'"))
	mock.ExpectQuery(privilegeSelect).
		WithArgs(uint64(7)).
		WillReturnRows(privilegeRow(3, 7, model.PrivilegeStatusBronze, 0))

	tx, err := db.Begin()
	require.NoError(t, err)

	p, err := NewPrivilegeRepo(db).GetOrCreateByUserTx(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateByUserTxPropagatesOtherInsertErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(privilegeSelect).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "balance"}))
	mock.ExpectExec("INSERT INTO privilege").
		WithArgs(uint64(7), model.PrivilegeStatusBronze).
		WillReturnError(errors.New("Error 1205: Lock wait timeout exceeded"))

	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = NewPrivilegeRepo(db).GetOrCreateByUserTx(context.Background(), tx, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1205")
	require.NoError(t, mock.ExpectationsWereMet())
}
