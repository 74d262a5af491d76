package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// AdminRepo persists administrator accounts in the 'admins' table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// CreateAdmin inserts an admin and returns it.
func (r *AdminRepo) CreateAdmin(ctx context.Context, username, passwordHash string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (username, password_hash) VALUES (?,?)", username, passwordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAdminExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Admin{ID: uint64(id), Username: username, PasswordHash: passwordHash}, nil
}

// FindAdminByUsername fetches an admin by username.
func (r *AdminRepo) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,created_at FROM admins WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
