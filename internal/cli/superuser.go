package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fintrack/backend/internal/config"
	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/service"
	"github.com/fintrack/backend/internal/token"
)

var superuserCmd = &cobra.Command{
	Use:   "superuser <login> <password>",
	Short: "Create an admin user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return createSuperuser(cmd.Context(), args[0], args[1])
	},
}

// createSuperuser ensures the admin role exists and creates a user holding
// it. Fails if the login is already taken.
func createSuperuser(ctx context.Context, login, password string) error {
	cfg := config.Load()

	postgres, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer postgres.Close()

	if err := postgres.EnsureSchema(ctx); err != nil {
		return err
	}

	adminRole, err := postgres.GetRoleByTitle(ctx, token.AdminRole)
	if err != nil {
		if !db.IsNotFound(err) {
			return err
		}
		adminRole, err = postgres.CreateRole(ctx, token.AdminRole)
		if err != nil {
			return err
		}
	}

	userSvc := service.NewUserService(postgres)
	user, err := userSvc.Create(ctx, login, password, "", "")
	if err != nil {
		if errors.Is(err, service.ErrAlreadyExists) {
			return fmt.Errorf("user %q already exists", login)
		}
		return err
	}

	if err := postgres.AssignRole(ctx, user.ID, adminRole.ID); err != nil {
		return err
	}

	log.Info().Str("login", login).Msg("superuser created")
	return nil
}
