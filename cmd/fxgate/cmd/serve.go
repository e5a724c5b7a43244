package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/fxgate/broker/rest"
	"github.com/rustyeddy/fxgate/config"
	"github.com/rustyeddy/fxgate/logging"
	"github.com/rustyeddy/fxgate/metrics"
	"github.com/rustyeddy/fxgate/server"
	"github.com/rustyeddy/fxgate/trade"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the HTTP gateway on the configured port.

Endpoints:
  GET  /api/balance
  GET  /api/positions?symbol=S
  POST /api/close-position   {"positionId"}
  POST /api/trade            {"direction","symbol","lotSize","riskPercent","stopLossPips"}
  GET  /health
  GET  /metrics

Example:
  METAAPI_TOKEN=... ACCOUNT_ID=... fxgate serve --port 3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	client := rest.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.AccountID, cfg.API.Timeout)
	orch := trade.NewOrchestrator(client, cfg.Trading.DefaultSymbol, log)
	srv := server.New(orch, server.Options{
		Logger:         log,
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	log.Info("gateway configured",
		zap.String("account_id", cfg.API.AccountID),
		zap.String("default_symbol", cfg.Trading.DefaultSymbol),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, cfg.Addr())
}
