package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/model"
)

// UserDirectory is the user-management boundary the auth service consumes:
// credential lookup, account creation, and the role list snapshotted into
// access tokens.
type UserDirectory interface {
	Create(ctx context.Context, login, password, firstName, lastName string) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	VerifyPassword(user *model.User, password string) bool
	ListRoles(ctx context.Context, userID string) ([]model.Role, error)
}

// UserService is the pgx-backed UserDirectory implementation.
type UserService struct {
	repo *db.Postgres
}

func NewUserService(repo *db.Postgres) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Create(ctx context.Context, login, password, firstName, lastName string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, login, string(hash), firstName, lastName)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) VerifyPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (s *UserService) ListRoles(ctx context.Context, userID string) ([]model.Role, error) {
	return s.repo.ListUserRoles(ctx, userID)
}

// RoleTitles flattens the role list into the claim snapshot format.
func RoleTitles(roles []model.Role) []string {
	titles := make([]string, 0, len(roles))
	for _, role := range roles {
		titles = append(titles, role.Title)
	}
	return titles
}
