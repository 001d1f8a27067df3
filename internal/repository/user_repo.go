package repository

import (
	"context"

	"task_manager/internal/domain"
)

// Constraint names from migrations/001_users.sql.
const (
	ConstraintUsersEmail    = "users_email_key"
	ConstraintUsersUsername = "users_username_key"
)

const userColumns = `id, email, username, hashed_password, is_active, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u and fills in the server-assigned columns.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, username, hashed_password)
		 VALUES ($1, $2, $3)
		 RETURNING id, is_active, created_at, updated_at`,
		u.Email,
		u.Username,
		u.HashedPassword,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return translate(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.HashedPassword,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
