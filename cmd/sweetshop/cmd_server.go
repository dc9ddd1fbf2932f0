package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/internal/kernel"
	"github.com/shashiranjanraj/sweetshop/internal/server"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/storage"
)

var servePort string

// sweetshop serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			config.Set("APP_PORT", servePort)
		}

		ctx := context.Background()
		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		logger.Info("store ready", "backend", k.Store.Backend)

		if email, password := config.AdminEmail(), config.AdminPassword(); email != "" && password != "" {
			user, created, err := k.Auth.EnsureAdmin(ctx, config.AdminName(), email, password)
			if err != nil {
				k.Close(ctx) //nolint:errcheck
				return fmt.Errorf("admin bootstrap: %w", err)
			}
			logger.Info("admin ready", "email", user.Email, "created", created)
		}

		return server.Start(k)
	},
}

// sweetshop route:list
var routeListCmd = &cobra.Command{
	Use:     "route:list",
	Aliases: []string{"routes"},
	Short:   "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.New(kernel.Deps{
			Store: repositories.NewMemoryStore(),
			Disk:  storage.NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()),
		})
		if err != nil {
			return err
		}
		defer k.Close(context.Background()) //nolint:errcheck

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Router.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides APP_PORT)")
}
