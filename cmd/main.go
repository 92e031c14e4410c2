package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/project-compass/internal/analyzer"
	"github.com/harshul/project-compass/internal/config"
	"github.com/harshul/project-compass/internal/doctor"
	"github.com/harshul/project-compass/internal/framework"
	"github.com/harshul/project-compass/internal/thermal"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Find every project under a directory and run its commands from one dashboard",
	Long: `Compass walks a directory tree, detects the projects inside it and the
frameworks they use, and opens an interactive dashboard to build, test and
run them.

Usage:
  compass              Open the dashboard for the current directory
  compass list         Print the detected projects
  compass doctor       Check installed toolchains
  compass export       Write the detected projects to a YAML file`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "d", ".", "Directory to scan for projects")
	rootCmd.PersistentFlags().String("config-dir", "", "Directory holding config.json and plugins.json (default ~/.project-compass, or $"+config.EnvDir+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to compass.log")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Directories resolved in parallel (0 = based on hardware)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(exportCmd)
}

// environment is the wiring shared by every command.
type environment struct {
	root     string
	paths    config.Paths
	logger   *slog.Logger
	logFile  io.Closer
	catalog  *framework.Catalog
	checker  *doctor.Checker
	resolver *analyzer.Resolver
	hardware thermal.HardwareInfo
}

// setup resolves flags, opens the log file and builds the detection pipeline.
func setup(cmd *cobra.Command) (*environment, error) {
	dirFlag, _ := cmd.Flags().GetString("dir")
	configDirFlag, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")
	jobs, _ := cmd.Flags().GetInt("jobs")

	root, err := filepath.Abs(dirFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("cannot scan %s: not a directory", root)
	}

	dir, err := config.Dir(configDirFlag)
	if err != nil {
		return nil, err
	}
	paths := config.PathsFor(dir)
	if err := paths.EnsureDir(); err != nil {
		return nil, err
	}

	env := &environment{root: root, paths: paths, hardware: thermal.DetectHardware()}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var out io.Writer = io.Discard
	if f, err := os.OpenFile(paths.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		out = f
		env.logFile = f
	}
	env.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	env.catalog = framework.NewCatalog(paths.Plugins, env.logger)
	if err := env.catalog.Reload(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	env.checker = doctor.NewChecker()
	env.resolver = analyzer.NewResolver(analyzer.Config{
		Enricher:    env.catalog,
		Checker:     env.checker,
		Logger:      env.logger,
		Concurrency: thermal.OptimalConcurrency(env.hardware, jobs),
	})

	env.logger.Debug("compass starting", "version", version, "root", root, "config_dir", dir)
	return env, nil
}

func (e *environment) Close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
