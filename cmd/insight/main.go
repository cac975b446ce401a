package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/razeghi71/insight/config"
	"github.com/razeghi71/insight/insight"
	"github.com/razeghi71/insight/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds state shared by subcommands.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "insight",
		Short:         "Query course-section datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger.Init(logger.Config{
				Level:     cfg.Log.Level,
				Format:    cfg.Log.Format,
				AddSource: cfg.Log.AddSource,
				Output:    cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (yaml, json or toml)")

	root.AddCommand(
		a.addCmd(),
		a.removeCmd(),
		a.listCmd(),
		a.queryCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) open(ctx context.Context) (*insight.Facade, error) {
	return insight.Open(ctx, a.cfg)
}
