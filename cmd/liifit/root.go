package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/logging"
	"github.com/katalvlaran/liifit/settings"
)

// app is the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg      *settings.Config
	log      zerolog.Logger
	closer   io.Closer
	registry *heat.Registry
}

func (a *app) setup(*cobra.Command, []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = settings.Load(a.configPath)
	} else {
		a.cfg, err = settings.Parse(nil)
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.log, a.closer, err = logging.New(a.cfg.Logging); err != nil {
		return err
	}

	a.registry = heat.DefaultRegistry()
	if a.cfg.Registry != "" {
		if err = a.registry.LoadFile(a.cfg.Registry); err != nil {
			return err
		}
		a.log.Debug().Str("path", a.cfg.Registry).Strs("materials", a.registry.Materials()).Msg("registry loaded")
	}

	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.closer != nil {
		return a.closer.Close()
	}

	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:                "liifit",
		Short:              "Laser-induced incandescence model fitting",
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "run configuration file (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(newFitCmd(a), newSimCmd(a), newShowCmd(a))

	return root
}
