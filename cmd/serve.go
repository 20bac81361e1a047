package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/api"
	"github.com/spigell/salary-spy/internal/lookup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve salary lookups over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", defaultServerAddress, "address to listen on")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config, gateway := bootstrap(ctx)
	defer gateway.Close()

	logger.Info("starting the salary-spy server",
		zap.String("version", version),
		zap.String("store_driver", gateway.Driver()),
		zap.Bool("store_available", gateway.Available()),
		zap.Bool("voice_enabled", config.VoiceEnabled()),
	)

	server := api.New(lookup.New(gateway, logger), gateway, config.VoiceEnabled(), logger)
	if err := server.Run(ctx, config.Server.Address); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}
}
