package service

import (
	"context"

	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/model"
)

// RoleService manages the role catalog and role assignments. Role changes
// never touch already-issued access tokens; they become visible on the next
// refresh, when claims are rebuilt from live state.
type RoleService struct {
	repo *db.Postgres
}

func NewRoleService(repo *db.Postgres) *RoleService {
	return &RoleService{repo: repo}
}

func (s *RoleService) Create(ctx context.Context, title string) (*model.Role, error) {
	role, err := s.repo.CreateRole(ctx, title)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *RoleService) GetByID(ctx context.Context, roleID string) (*model.Role, error) {
	role, err := s.repo.GetRoleByID(ctx, roleID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, roleID string) error {
	if err := s.repo.DeleteRole(ctx, roleID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *RoleService) Assign(ctx context.Context, userID, roleID string) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.repo.GetRoleByID(ctx, roleID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.AssignRole(ctx, userID, roleID)
}

func (s *RoleService) Remove(ctx context.Context, userID, roleID string) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.repo.GetRoleByID(ctx, roleID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.RemoveRole(ctx, userID, roleID)
}

func (s *RoleService) ListForUser(ctx context.Context, userID string) ([]model.Role, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.ListUserRoles(ctx, userID)
}
