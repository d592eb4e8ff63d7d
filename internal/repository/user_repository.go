package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/utils"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new user with a bcrypt-hashed password and returns
// its ID. Duplicate logins and emails are reported via ErrLoginExists
// and ErrEmailExists; the unique indexes are named uq_users_login and
// uq_users_email so the violated constraint can be told apart.
func (r *UserRepo) Create(ctx context.Context, login, email, password string, cost int) (uint64, error) {
	login = strings.TrimSpace(login)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (login, email, password_hash) VALUES (?,?,?)",
		login, email, hash)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "uq_users_email") {
				return 0, ErrEmailExists
			}
			return 0, ErrLoginExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLogin fetches a user by login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.TrimSpace(login)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,login,email,password_hash,created_at,updated_at FROM users WHERE login=? LIMIT 1",
		login).Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,login,email,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
