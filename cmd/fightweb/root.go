package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recera/fightweb/internal/config"
	"github.com/recera/fightweb/internal/observability"
	"github.com/recera/fightweb/pkg/fightweb/detail"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/view"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "fightweb",
		Short: "Lay out, render and explore fighter rivalry networks",
		Long: `fightweb turns an aggregated rivalry payload (fighters and the
head-to-head bouts between them) into a force-directed network you can
export, render to SVG, serve as a live page or explore in the terminal.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./fightweb.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("detail-url", "", "base URL of the fighter detail service")
	flags.String("detail-file", "", "JSON file of fighter details keyed by id")
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("detail.base_url", flags.Lookup("detail-url"))
	_ = a.v.BindPFlag("detail.file", flags.Lookup("detail-file"))

	root.AddCommand(
		newLayoutCommand(a),
		newRenderCommand(a),
		newServeCommand(a),
		newExploreCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	config.SetDefaults(a.v)
	config.BindEnv(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("fightweb")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger)
	a.log = observability.GetLogger().Named(cmd.Name())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

// fetcher returns the configured detail source, or nil when none is set.
func (a *app) fetcher() (view.DetailFetcher, error) {
	switch {
	case a.cfg.Detail.File != "":
		return detail.LoadStatic(a.cfg.Detail.File)
	case a.cfg.Detail.BaseURL != "":
		return detail.NewHTTPFetcher(a.cfg.Detail.BaseURL, a.cfg.Detail.Timeout), nil
	}
	return nil, nil
}

// newView builds a controller for payload with the configured options.
func (a *app) newView(p *graph.Payload, options ...view.Option) (*view.Controller, error) {
	fetcher, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	options = append([]view.Option{view.WithLogger(a.log.Named("view"))}, options...)
	if fetcher != nil {
		options = append(options, view.WithFetcher(fetcher))
	}
	c := view.New(a.cfg.ViewOptions(), options...)
	if err := c.SetPayload(p); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
