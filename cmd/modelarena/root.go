package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"modelarena/internal/config"
	"modelarena/internal/ui"
)

var version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "modelarena",
		Short: "Chat with, compare and rank language models",
		Long: `Model Arena sends one prompt to several language models at once and
shows their answers side by side with latency, token and cost metrics.

Blind battles pit two models against each other; your votes update
their Elo ratings. Run without a subcommand to open the terminal UI.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCompareCommand(opts))
	cmd.AddCommand(newModelsCommand(opts))
	cmd.AddCommand(newEloCommand())

	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFrom(o.configPath)
	}
	return config.Load()
}

func (o *rootOptions) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// load reads the config and wires the services, logging to w.
func (o *rootOptions) load(w io.Writer) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, o.logger(cfg, w))
}

func runTUI(opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.debug {
		dir := filepath.Dir(cfg.Storage.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		f, err := tea.LogToFile(filepath.Join(dir, "modelarena.log"), "")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	a, err := newApp(cfg, opts.logger(cfg, logOut))
	if err != nil {
		return err
	}
	defer a.close()

	deps := ui.Deps{
		Session:      a.session,
		Arena:        a.arena,
		Catalog:      a.catalog,
		Orchestrator: a.orch,
		ExportDir:    filepath.Dir(cfg.Storage.Path),
		Logger:       a.logger,
	}
	if a.store != nil {
		deps.Feedback = a.store
	}

	p := tea.NewProgram(ui.New(deps), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
