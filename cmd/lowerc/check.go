package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lowerc/internal/diag"
	"lowerc/internal/diagfmt"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Build descriptors and classify enums, reporting diagnostics",
	Long: `Load declaration feeds (TOML, YAML or JSON), intern their type and method
descriptors, classify every enum and print the diagnostics. Without arguments the
feeds listed in the nearest lowerc.toml are used.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("ui", "off", "live progress view (auto|on|off)")
	checkCmd.Flags().Bool("disk-cache", false, "cache enum classifications on disk")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}

	run, err := prepareUnit(cmd, args)
	if err != nil {
		return err
	}
	res, fatal := run.execute(cmd)
	if res == nil {
		return fatal
	}

	bag := res.Bag
	if warningsAsErrors {
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}

	pathMode := diagfmt.PathModeAsIs
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{
			Color:     colored,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	case "short":
		diagfmt.Short(out, bag, pathMode, "")
	case "json":
		if err := diagfmt.JSON(out, bag, diagfmt.JSONOpts{PathMode: pathMode, IncludeNotes: withNotes}); err != nil {
			return fmt.Errorf("failed to encode diagnostics: %w", err)
		}
	}

	if err := printTimings(cmd, run.opts.Timer); err != nil {
		return err
	}
	if fatal != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "fatal: %v\n", fatal)
		exit(1)
	}
	if bag.HasErrors() {
		exit(1)
	}
	if !quiet && format != "json" && res.Interner != nil {
		fmt.Fprintf(out, "%s: %d types, %d methods, %d enums (%d excluded)\n",
			res.Unit, res.Interner.TypeCount(), len(res.Methods), len(res.Enums), len(res.Excluded))
	}
	return nil
}
