// QA Hub turns a product requirement into a reviewable test strategy:
// it prompts a completion endpoint, extracts the scenario table, and
// serves the execution log and bug center over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qahub/internal/config"
	"qahub/internal/logging"
)

// app carries the loaded configuration and console logger into the
// subcommands.
type app struct {
	cfgPath string
	debug   bool

	cfg *config.Config
	log *zap.SugaredLogger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "qahub",
		Short:         "AI-assisted QA strategy hub",
		Long:          "qahub generates test strategies from product requirements,\ntracks execution results, and drafts bug reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
			logging.CloseAll()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "qahub.yaml", "config file path")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newProjectsCmd(a),
		newExportCmd(a),
	)
	return root
}

// setup loads .env, the config file, and the loggers. API keys usually
// arrive through the environment, so .env is read before the config so
// its variables are visible to the override pass.
func (a *app) setup() error {
	_ = godotenv.Load()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Logging.Debug = true
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	if err := logging.Initialize(cfg.DataDir, cfg.LoggingOptions()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.DisableStacktrace = true
	if cfg.Logging.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.log = logger.Sugar()

	logging.Boot("config loaded from %s (provider=%s, backend=%s)",
		a.cfgPath, cfg.LLM.Provider, cfg.Store.Backend)
	return nil
}
