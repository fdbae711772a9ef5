package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/skills-dossier/internal/db"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/types"
)

func newSetRoleCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role EMAIL [ROLE]",
		Short: "Grant a role to a user, creating the account if needed",
		Long: `Grant a role (admin by default) to the user with the given email.
A password-less account is created when none exists; its id is derived from
the email the same way signup derives it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, role, err := parseSetRoleArgs(args)
			if err != nil {
				return err
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}

			ctx := cmd.Context()
			database, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			id := db.StableUserID(email)
			localPart, _, _ := strings.Cut(email, "@")
			if err := database.UpsertUser(ctx, id, email, localPart); err != nil {
				return err
			}
			if err := database.AddUserRole(ctx, id, role); err != nil {
				return err
			}

			logger.Info().Str("user_id", id).Str("role", string(role)).Msg("role granted")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) now has role %s\n", email, id, role)
			return err
		},
	}
}

func parseSetRoleArgs(args []string) (string, types.Role, error) {
	email := db.NormalizeEmail(args[0])
	if !strings.Contains(email, "@") {
		return "", "", fmt.Errorf("invalid email: %q", args[0])
	}

	role := types.RoleAdmin
	if len(args) == 2 {
		role = types.Role(strings.ToLower(strings.TrimSpace(args[1])))
	}
	if !role.IsValid() {
		return "", "", fmt.Errorf("invalid role %q (expected one of %v)", role, types.AllRoles)
	}
	return email, role, nil
}
