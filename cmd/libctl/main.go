// libctl is the operator CLI. Public registration always creates PATRON
// accounts, so the first librarian has to be bootstrapped here.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/libms/library-backend/internal/auth"
	"github.com/libms/library-backend/internal/config"
	"github.com/libms/library-backend/internal/db"
	"github.com/libms/library-backend/internal/models"
	"github.com/libms/library-backend/internal/repository/postgres"
)

func main() {
	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Library backend admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), createLibrarianCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, config.Load().DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.RunMigrations(ctx, pool); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func createLibrarianCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-librarian",
		Short: "Create a librarian account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := promptPassword()
			if err != nil {
				return err
			}

			pool, err := db.NewPool(ctx, config.Load().DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			users := postgres.NewUsers(pool)
			u, err := users.Create(ctx, name, strings.ToLower(strings.TrimSpace(email)), hash, models.RoleLibrarian)
			if errors.Is(err, models.ErrDuplicateEmail) {
				return fmt.Errorf("email %s is already registered", email)
			}
			if err != nil {
				return err
			}
			fmt.Printf("librarian created: %s (%s)\n", u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "librarian's display name")
	cmd.Flags().StringVar(&email, "email", "", "librarian's email (login)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	pw := strings.TrimSpace(string(first))
	if pw != strings.TrimSpace(string(second)) {
		return "", errors.New("passwords do not match")
	}
	if len(pw) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return pw, nil
}
