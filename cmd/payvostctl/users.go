package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/payvost/payvost-web-sub011/internal/audit"
	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/logging"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/server"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// openStore is swapped in tests.
var openStore = server.OpenStore

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newSetRoleCmd())
	return cmd
}

func newSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <username-or-email> <role>",
		Short: "Grant a platform role (user, support, admin, super_admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := strings.TrimSpace(args[0])
			role := strings.ToLower(strings.TrimSpace(args[1]))
			if !models.ValidRole(role) {
				return fmt.Errorf("unknown role %q: want user, support, admin or super_admin", args[1])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel)
			if cfg.StorageDriver != config.DriverPostgres {
				return fmt.Errorf("set-role requires STORAGE_DRIVER=postgres, got %q", cfg.StorageDriver)
			}
			ctx := cmd.Context()
			store, _, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.FindByUsernameOrEmail(ctx, identifier)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no user matches %q", identifier)
				}
				return err
			}
			if user.Role == role {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has role %s\n", user.Username, role)
				return nil
			}

			updated, err := store.UpdateUserRole(ctx, user.ID, role)
			if err != nil {
				return err
			}
			audit.NewRecorder(store, logger).Record(ctx, models.AuditEntry{
				ActorID:      "payvostctl",
				Action:       models.ActionRoleChanged,
				ResourceType: "user",
				ResourceID:   updated.ID,
				Metadata:     map[string]any{"from": user.Role, "to": updated.Role},
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Username, updated.Role)
			return nil
		},
	}
}
