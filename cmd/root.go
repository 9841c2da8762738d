package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/emsga/app"
	"github.com/kilianp07/emsga/config"
	"github.com/kilianp07/emsga/infra/logger"
)

var (
	cfgPath string
	once    bool
)

var rootCmd = &cobra.Command{
	Use:           "emsga",
	Short:         "Battery and EV charging scheduler",
	Long:          "emsga plans the next 24 hours of battery and EV charging power with a genetic algorithm and re-plans periodically.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single optimisation cycle and exit")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	if once {
		_, err := svc.RunOnce(ctx)
		return err
	}
	return svc.Run(ctx)
}
