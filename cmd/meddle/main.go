// Package main implements the meddle CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/diagfmt"
	"github.com/nwmarino/meddle/internal/driver"
	"github.com/nwmarino/meddle/internal/project"
)

var rootCmd = &cobra.Command{
	Use:   "meddle",
	Short: "meddle language compiler",
}

var buildCmd = &cobra.Command{
	Use:   "build [flags] [files...]",
	Short: "Compile source files to MIR",
	Long:  "Compile one or more .mdl files, or a meddle.toml project, down to MIR.",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().Bool("named-mir", false, "assign mnemonic block/value names in MIR output")
	buildCmd.Flags().Bool("debug", false, "log phase traces at debug level")
	buildCmd.Flags().Bool("time", false, "log phase wall-clock durations")
	buildCmd.Flags().String("project", "", "path to a meddle.toml project manifest")
	buildCmd.Flags().String("color", "auto", "colorize diagnostics (auto|on|off)")

	rootCmd.AddCommand(buildCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	namedMIR, _ := cmd.Flags().GetBool("named-mir")
	debug, _ := cmd.Flags().GetBool("debug")
	showTime, _ := cmd.Flags().GetBool("time")
	projectPath, _ := cmd.Flags().GetString("project")
	colorMode, _ := cmd.Flags().GetString("color")

	opts := driver.Options{NamedMIR: namedMIR, Debug: debug, Time: showTime}
	files := args

	if projectPath == "" && len(args) == 0 {
		if found, ok, err := project.Find("."); err == nil && ok {
			projectPath = found
		}
	}
	if projectPath != "" {
		manifest, err := project.Load(projectPath)
		if err != nil {
			return err
		}
		expanded, err := project.ExpandSources(manifest.Sources)
		if err != nil {
			return err
		}
		files = expanded
		// Flags passed on the command line take precedence over the
		// manifest's own [build] options.
		if !cmd.Flags().Changed("named-mir") {
			opts.NamedMIR = manifest.Options.NamedMIR
		}
		if !cmd.Flags().Changed("debug") {
			opts.Debug = manifest.Options.Debug
		}
		if !cmd.Flags().Changed("time") {
			opts.Time = manifest.Options.Time
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no source files given and no meddle.toml project found")
	}

	useColor := colorMode == "on" || (colorMode == "auto" && diagfmt.AutoColor(os.Stderr))

	res, err := driver.Run(files, opts)
	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			diagfmt.Render(os.Stderr, []*diag.Diagnostic{d}, res.Files, diagfmt.Options{Color: useColor, Context: 1, Width: diagfmt.TerminalWidth(os.Stderr)})
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}

	fmt.Fprint(os.Stdout, res.MIR)
	return nil
}
