package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/internal/service"
)

func newTokenCmd(app *cliContext) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET for local use",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseRole(role)
			if err != nil {
				return err
			}
			auth := service.NewAuthService(app.logger, service.AuthConfig{
				AccessTokenSecret: app.cfg.JWT.Secret,
				Issuer:            app.cfg.JWT.Issuer,
			})
			token, expiresAt, err := auth.IssueToken(userID, parsed, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "ADMIN, SUPERADMIN, INVIGILATOR or VIEWER")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func parseRole(raw string) (models.UserRole, error) {
	role := models.UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case models.RoleAdmin, models.RoleSuperAdmin, models.RoleInvigilator, models.RoleViewer:
		return role, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}
