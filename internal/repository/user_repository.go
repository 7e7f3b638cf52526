package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// UserRepository reads scheduler users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListActiveStudents returns every active student ordered by id.
func (r *UserRepository) ListActiveStudents(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, email, full_name, role, phone, is_active, created_at, updated_at
FROM users WHERE role = $1 AND is_active = TRUE ORDER BY id`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return users, nil
}
