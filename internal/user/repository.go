package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, name, email, password_hash, role, phone_number, address, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	created := &User{}
	err := r.db.GetContext(ctx, created, `
		INSERT INTO users (name, email, password_hash, role, phone_number, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.Role, u.PhoneNumber, u.Address,
	)
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := r.db.GetContext(ctx, u,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	err := r.db.GetContext(ctx, u,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}
