package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lowerc/internal/driver"
	"lowerc/internal/observ"
)

// unitRun collects what a command needs to run the driver once.
type unitRun struct {
	title    string
	unit     driver.Unit
	opts     driver.Options
	manifest *projectManifest
	useUI    bool
}

// prepareUnit resolves the feed files and the driver options shared by
// every command that runs the pipeline. Command-line flags override the
// manifest's [compile] section.
func prepareUnit(cmd *cobra.Command, args []string) (*unitRun, error) {
	name, files, manifest, err := resolveUnit(args)
	if err != nil {
		return nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	run := &unitRun{
		title:    name,
		unit:     driver.Unit{Name: name, Files: files},
		manifest: manifest,
		opts: driver.Options{
			MaxDiagnostics: maxDiagnostics,
			Timer:          observ.NewTimer(),
		},
	}
	if run.title == "" {
		run.title = "lowerc"
	}

	diskCache := false
	if manifest != nil {
		run.opts.Jobs = manifest.Config.Compile.Jobs
		diskCache = manifest.Config.Compile.DiskCache
	}
	if f := cmd.Flags().Lookup("jobs"); f != nil && f.Changed {
		if run.opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if f := cmd.Flags().Lookup("disk-cache"); f != nil && f.Changed {
		if diskCache, err = cmd.Flags().GetBool("disk-cache"); err != nil {
			return nil, fmt.Errorf("failed to get disk-cache flag: %w", err)
		}
	}
	if diskCache {
		cache, err := driver.OpenDiskCache("lowerc")
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: disk cache disabled: %v\n", err)
		} else {
			run.opts.Cache = cache
		}
	}

	if f := cmd.Flags().Lookup("ui"); f != nil {
		value, err := cmd.Flags().GetString("ui")
		if err != nil {
			return nil, fmt.Errorf("failed to get ui flag: %w", err)
		}
		format := ""
		if ff := cmd.Flags().Lookup("format"); ff != nil {
			format = ff.Value.String()
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return nil, fmt.Errorf("failed to get quiet flag: %w", err)
		}
		if run.useUI, err = wantProgressView(value, format, quiet, isTerminal(os.Stdout)); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// execute runs the driver with tracing set up from the persistent flags.
// A fatal error comes back together with the partial result.
func (u *unitRun) execute(cmd *cobra.Command) (*driver.Result, error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return nil, err
	}
	var res *driver.Result
	if u.useUI {
		res, err = runWithUI(cmd.Context(), u.title, u.unit, u.opts)
	} else {
		res, err = driver.Run(cmd.Context(), u.unit, u.opts)
	}
	cleanup(err != nil)
	return res, err
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) error {
	show, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if show && timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}
