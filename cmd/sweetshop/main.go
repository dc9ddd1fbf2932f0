// Command sweetshop runs the sweet shop API and its maintenance tasks.
//
//	sweetshop serve               # HTTP (and gRPC health when GRPC_PORT is set)
//	sweetshop seed                # sample catalogue, only into an empty store
//	sweetshop admin:create        # create or promote the admin account
//	sweetshop route:list          # print the named routes
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var closeLogSink = func() {}

var rootCmd = &cobra.Command{
	Use:           "sweetshop",
	Short:         "Sweet shop storefront API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		logger.Init()

		if uri := config.LogMongoURI(); uri != "" {
			closeFn, err := logger.AttachMongo(context.Background(), uri, config.LogMongoDatabase(), config.LogMongoCollection())
			if err != nil {
				logger.Warn("log sink unavailable, logging to stdout only", "error", err)
			} else {
				closeLogSink = closeFn
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogSink()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(routeListCmd)
}
