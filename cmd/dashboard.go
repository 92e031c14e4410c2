package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/project-compass/internal/config"
	"github.com/harshul/project-compass/internal/supervisor"
	"github.com/harshul/project-compass/internal/ui"
	"github.com/harshul/project-compass/internal/watch"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	store, err := config.Open(env.paths.Config, env.logger)
	if err != nil {
		// A corrupt config still yields a usable store with defaults.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	opts := ui.Options{
		Root:       env.root,
		Scanner:    env.resolver,
		Supervisor: supervisor.New(supervisor.Config{Logger: env.logger}),
		Config:     store,
		Plugins:    env.catalog,
		PluginPath: env.paths.Plugins,
		ExportDir:  env.paths.Dir,
		Logger:     env.logger,
	}

	w, err := watch.New(env.paths.Dir, []string{filepath.Base(env.paths.Plugins), filepath.Base(env.paths.Config)}, env.logger)
	if err != nil {
		env.logger.Warn("config watching disabled", "error", err)
	} else {
		defer w.Close()
		opts.Changes = w.Changes()
	}

	return ui.Run(cmd.Context(), opts)
}
