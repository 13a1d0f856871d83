package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/repository"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage staff accounts and role grants",
	}
	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newSyncPermissionsCmd())
	return cmd
}

func adminService(e *env) *service.AdminService {
	auth := service.NewAuthService(e.cfg, nil)
	return service.NewAdminService(
		repository.NewAdminRepository(e.pool),
		repository.NewRoleRepository(e.pool),
		auth,
	)
}

func newAdminCreateCmd() *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account, prompting for anything not given as a flag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			var err error
			if name == "" {
				if name, err = prompt(cmd, reader, "Enter Name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompt(cmd, reader, "Enter Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd, reader)
			if err != nil {
				return err
			}

			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			admin, err := adminService(e).Provision(cmd.Context(), name, email, password, role)
			if err != nil {
				return err
			}
			cmd.Printf("Admin '%s' (%s) created with ID %d and role %s\n", admin.Name, admin.Email, admin.ID, admin.RoleName)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "role name (admin or coordinator)")
	return cmd
}

func newSyncPermissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-permissions",
		Short: "Grant every known permission to admin and the coordinator set to coordinator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			granted, err := adminService(e).SyncRolePermissions(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Permissions synced, %d new grants\n", granted)
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, r *bufio.Reader, label string) (string, error) {
	cmd.Print(label)
	line, err := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errors.New("value is required")
	}
	return line, nil
}

// readPassword hides input on a terminal and falls back to a plain line for pipes.
func readPassword(cmd *cobra.Command, r *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
		cmd.Print("Enter Password: ")
		b, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return prompt(cmd, r, "Enter Password: ")
}
