package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargecast/app"
	"github.com/kilianp07/chargecast/config"
	coremon "github.com/kilianp07/chargecast/core/monitoring"
	"github.com/kilianp07/chargecast/infra/logger"
	"github.com/kilianp07/chargecast/infra/monitoring"
)

var (
	cfgPath string
	cfg     *config.Config
	closers []io.Closer
)

var rootCmd = &cobra.Command{
	Use:               "chargecast",
	Short:             "Forecast daily charging-station demand",
	Long:              "chargecast fits an ARIMA model on a daily demand history and prints the forecast of the coming days.",
	Args:              cobra.NoArgs,
	PersistentPreRunE: setup,
	RunE:              run,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	pf.String("log-level", "", "log level: debug, info, warn, error or disabled")

	f := rootCmd.Flags()
	f.StringP("input", "i", "", "demand history CSV file")
	f.IntP("horizon", "H", 0, "number of steps to forecast")
	f.String("order", "", "ARIMA order as p,d,q")
	f.StringP("format", "f", "", "report format: text, table, json, csv or yaml")
	f.StringP("output", "o", "", "write the report to this file instead of stdout")
	f.String("chart", "", "write an HTML chart of history and forecast to this file")
	f.Bool("history", false, "record the run in the history store")
}

// Execute runs the CLI.
func Execute() error {
	defer cleanup()
	return rootCmd.Execute()
}

// setup loads the configuration and the ambient services shared by every
// command.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath, config.WithFlags(cmd.Flags()))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lc, err := logger.Configure(c.Logging)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	closers = append(closers, lc)
	mon, err := monitoring.NewSentryMonitor(c.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	cfg = c
	return nil
}

func cleanup() {
	if cfg != nil {
		coremon.Flush(cfg.Sentry.Timeout())
	}
	for _, c := range closers {
		_ = c.Close()
	}
	closers = nil
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer coremon.Current().Recover()

	svc, err := app.New(cfg, app.WithStdout(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	_, err = svc.Run(ctx)
	return err
}
