package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harshul/project-compass/internal/doctor"
	"github.com/harshul/project-compass/internal/thermal"
)

// doctorCmd checks the toolchains detected projects depend on
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check installed toolchains and what each project is missing",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	dim := color.New(color.Faint)

	fmt.Printf("%s %s\n\n", color.New(color.Bold).Sprint("Hardware"), thermal.FormatHardwareInfo(env.hardware))

	color.New(color.Bold).Println("Toolchains")
	for _, rt := range env.checker.Runtimes(cmd.Context()) {
		if rt.Installed {
			fmt.Printf("  %s %-8s %s %s\n", ok.Sprint("✓"), rt.Name, rt.Version, dim.Sprint(rt.Path))
		} else {
			fmt.Printf("  %s %-8s %s\n", bad.Sprint("✗"), rt.Name, dim.Sprintf("%s not found", rt.Binary))
		}
	}

	records, err := env.resolver.Resolve(cmd.Context(), env.root)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.Bold).Printf("Projects (%d)\n", len(records))
	unhealthy := 0
	for _, d := range doctor.Diagnose(records) {
		if d.Healthy && len(d.Issues) == 0 {
			fmt.Printf("  %s %s %s\n", ok.Sprint("✓"), d.ProjectPath, dim.Sprintf("[%s]", d.Type))
			continue
		}
		if !d.Healthy {
			unhealthy++
		}
		fmt.Printf("  %s %s %s\n", bad.Sprint("!"), d.ProjectPath, dim.Sprintf("[%s]", d.Type))
		for _, issue := range d.Issues {
			fmt.Printf("      %s\n", issue)
		}
	}

	if unhealthy > 0 {
		return fmt.Errorf("%d project(s) are missing toolchains", unhealthy)
	}
	return nil
}
