package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fintrack/backend/internal/model"
)

func (db *Postgres) CreateRole(ctx context.Context, title string) (*model.Role, error) {
	query := `
		INSERT INTO roles (id, title, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, title, created_at
	`
	var role model.Role
	err := db.Pool.QueryRow(ctx, query, uuid.NewString(), title).Scan(&role.ID, &role.Title, &role.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (db *Postgres) GetRoleByID(ctx context.Context, roleID string) (*model.Role, error) {
	query := `
		SELECT id, title, created_at
		FROM roles
		WHERE id = $1
	`
	var role model.Role
	err := db.Pool.QueryRow(ctx, query, roleID).Scan(&role.ID, &role.Title, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (db *Postgres) GetRoleByTitle(ctx context.Context, title string) (*model.Role, error) {
	query := `
		SELECT id, title, created_at
		FROM roles
		WHERE title = $1
	`
	var role model.Role
	err := db.Pool.QueryRow(ctx, query, title).Scan(&role.ID, &role.Title, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (db *Postgres) ListRoles(ctx context.Context) ([]model.Role, error) {
	query := `
		SELECT id, title, created_at
		FROM roles
		ORDER BY title
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Title, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (db *Postgres) DeleteRole(ctx context.Context, roleID string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignRole links a role to a user; assigning an already-held role is a
// no-op.
func (db *Postgres) AssignRole(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := db.Pool.Exec(ctx, query, userID, roleID)
	return err
}

func (db *Postgres) RemoveRole(ctx context.Context, userID, roleID string) error {
	query := `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = $2
	`
	_, err := db.Pool.Exec(ctx, query, userID, roleID)
	return err
}
