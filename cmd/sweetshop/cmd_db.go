package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/database/seeders"
	"github.com/shashiranjanraj/sweetshop/pkg/auth"
)

// withStore opens the configured store for the duration of fn.
func withStore(fn func(ctx context.Context, store *repositories.Store) error) error {
	ctx := context.Background()
	store, err := repositories.Open(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx) //nolint:errcheck
	return fn(ctx, store)
}

// sweetshop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample catalogue into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *repositories.Store) error {
			fmt.Printf("Running seeders against %s…\n", store.Backend)
			return seeders.RunAll(ctx, store, os.Stdout)
		})
	},
}

var adminFlags struct {
	name, email, password string
}

// sweetshop admin:create
var adminCreateCmd = &cobra.Command{
	Use:   "admin:create",
	Short: "Create the admin account, or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := firstNonEmpty(adminFlags.name, config.AdminName())
		email := firstNonEmpty(adminFlags.email, config.AdminEmail())
		password := firstNonEmpty(adminFlags.password, config.AdminPassword())
		if email == "" || password == "" {
			return fmt.Errorf("admin:create needs --email and --password (or ADMIN_EMAIL / ADMIN_PASSWORD)")
		}

		return withStore(func(ctx context.Context, store *repositories.Store) error {
			svc := services.NewAuthService(store.Users, auth.NewTokens(config.JWTSecret(), config.JWTTTL()))
			user, created, err := svc.EnsureAdmin(ctx, name, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("✅ Admin %s created\n", user.Email)
			} else {
				fmt.Printf("✅ %s is now an admin\n", user.Email)
			}
			return nil
		})
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminFlags.name, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminFlags.email, "email", "", "login email")
	adminCreateCmd.Flags().StringVar(&adminFlags.password, "password", "", "password (6-72 characters)")
}
