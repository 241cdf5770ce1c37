package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/logger"
	"github.com/spigell/career-navigator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default is :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the career-navigator", zap.String("version", version))

	comps, err := setup(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing components", zap.Error(err))
	}
	defer comps.Close()

	var health func(context.Context) error
	if comps.store != nil {
		health = comps.store.Ping
	}

	srvConfig := server.Config{}
	if config.Server != nil {
		srvConfig = *config.Server
	}

	srv := server.New(comps.navigator, comps.catalog, health, logger)
	if err := srv.Run(ctx, srvConfig); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
