package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harshul/project-compass/internal/blueprint"
	"github.com/harshul/project-compass/internal/project"
)

// listCmd prints the detected projects without opening the dashboard
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the projects detected under a directory",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringP("format", "f", "text", "Output format (text, yaml)")
	listCmd.Flags().Bool("commands", false, "Include each project's commands")
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	showCommands, _ := cmd.Flags().GetBool("commands")

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	records, err := env.resolver.Resolve(cmd.Context(), env.root)
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		return blueprint.Encode(os.Stdout, blueprint.FromRecords(env.root, records))
	case "text":
		printRecords(env.root, records, showCommands)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or yaml)", format)
	}
}

func printRecords(root string, records []project.Record, showCommands bool) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	warn := color.New(color.FgYellow)
	typ := color.New(color.FgCyan)

	bold.Printf("Detected %d project(s) under %s\n", len(records), root)
	for _, rec := range records {
		rel, err := filepath.Rel(root, rec.Path)
		if err != nil {
			rel = rec.Path
		}
		fmt.Printf(" • %s %s %s\n", typ.Sprintf("[%s]", rec.Type), rec.Name, dim.Sprintf("(%s)", filepath.ToSlash(rel)))

		if len(rec.Frameworks) > 0 {
			names := make([]string, 0, len(rec.Frameworks))
			for _, f := range rec.Frameworks {
				names = append(names, f.Name)
			}
			fmt.Printf("     frameworks: %s\n", strings.Join(names, ", "))
		}
		if len(rec.MissingBinaries) > 0 {
			warn.Printf("     missing: %s\n", strings.Join(rec.MissingBinaries, ", "))
		}
		if showCommands {
			for _, c := range rec.Commands.All() {
				fmt.Printf("     %-10s %s\n", c.Key, dim.Sprint(c.Spec.CommandLine()))
			}
		}
	}
}
