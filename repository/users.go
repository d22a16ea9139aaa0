package repository

import (
	"context"
	"fmt"

	"liist/common"
	"liist/models"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user. A taken email yields common.ErrDuplicateEmail; the
// UNIQUE index decides, so concurrent registrations cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO users (id, email, username, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, query,
			user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: %w", common.ErrDuplicateEmail)
		}
		if err != nil {
			return storeErr("create user", err)
		}
		return nil
	})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, username, password_hash, created_at
		FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, storeErr("get user by email", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, username, password_hash, created_at
		FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, storeErr("get user by id", err)
	}
	return &user, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}
