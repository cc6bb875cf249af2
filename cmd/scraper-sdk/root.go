package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/scraper-sdk/internal/config"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/scraper"
)

var version = "dev"

// app carries the state shared by all subcommands once the root command
// has loaded configuration.
type app struct {
	cfgFile string
	debug   bool

	cfg *config.Config
	log logger.Interface
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "scraper-sdk",
		Short:         "Run scrapers against the tender backend and inspect its state",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./scraper.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log requests and responses")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			// Overrides the root hook so version works without configuration.
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "scraper-sdk %s\n", version)
			},
		},
		a.serveCmd(),
		a.healthCmd(),
		a.integrationsCmd(),
		a.jobsCmd(),
		a.tendersCmd(),
		a.documentsCmd(),
		a.runCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Client.Debug = true
		cfg.Log.Level = "debug"
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) client() *scraper.Client {
	return scraper.New(a.cfg.Client, scraper.WithLogger(a.log))
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend accepts the configured API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.client().HealthCheck(cmd.Context()) {
				return fmt.Errorf("backend at %s is not healthy", a.cfg.Client.BaseURL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
