package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockScope/internal/api"
	"StockScope/internal/logging"
	"StockScope/internal/scheduler"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API and the idle-session sweeper.

Examples:
  stockscope serve
  stockscope serve --addr :9090
  stockscope serve --mock --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(a.sessions, a.cfg.Session.MaxIdle, logging.WithComponent(a.log, "scheduler"))
	if err := sched.RegisterSweep(a.cfg.Session.SweepCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewServer(api.Deps{
		Analyzer:    a.analyzer,
		Market:      a.collector,
		Sessions:    a.sessions,
		Recorder:    a.recorder,
		Logger:      logging.WithComponent(a.log, "api"),
		CORSOrigins: a.cfg.Server.CORSOrigins,
	})
	a.log.Info("StockScope is running. Press Ctrl+C to stop.")
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	a.log.Info("StockScope stopped")
	return nil
}
