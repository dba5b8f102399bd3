package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/calctool/analysis"
	"github.com/njchilds90/calctool/internal/config"
	"github.com/njchilds90/calctool/internal/logging"
	"github.com/njchilds90/calctool/symbolic"
)

// app is the state every subcommand shares, built once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	engine *analysis.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "calctool",
		Short:        "Step-by-step calculus for functions of x",
		Long:         "calctool computes limits, derivatives, critical points and definite integrals of a function of x, explains each step and samples the function for plotting.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "calctool.yaml", "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	if !symbolic.Configure(cfg.Provider) {
		logger.Debug("symbolic options already set; config provider section ignored")
	}

	a.cfg = cfg
	a.logger = logger
	a.engine = analysis.NewEngine(symbolic.NewKernel(),
		analysis.WithSettings(cfg.Engine),
		analysis.WithLogger(logger.Named("engine")))
	logger.Debug("config loaded", zap.String("path", a.configPath))
	return nil
}

func (a *app) mustEngine() (*analysis.Engine, error) {
	if a.engine == nil {
		return nil, fmt.Errorf("engine not initialized")
	}
	return a.engine, nil
}
