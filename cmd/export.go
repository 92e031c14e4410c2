package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harshul/project-compass/internal/blueprint"
)

// exportCmd writes the detected projects to a YAML blueprint
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the detected projects and their commands to a YAML file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "compass.yaml", "Output file path")
	exportCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runExport(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", outputPath)
	}

	records, err := env.resolver.Resolve(cmd.Context(), env.root)
	if err != nil {
		return err
	}

	if err := blueprint.Write(outputPath, blueprint.FromRecords(env.root, records)); err != nil {
		return fmt.Errorf("failed to write blueprint: %w", err)
	}

	color.Green("✅ Wrote %d project(s) to %s", len(records), outputPath)
	return nil
}
