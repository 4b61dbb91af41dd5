package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"lowerc/internal/version"
)

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lowerc build metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()
		switch strings.ToLower(versionFormat) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case "pretty":
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}

		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		color.NoColor = !colored
		fmt.Fprintf(out, "lowerc %s\n", version.Colored())
		if versionShowFull {
			fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit))
			fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate))
			fmt.Fprintf(out, "go:     %s\n", valueOrUnknown(info.GoVersion))
		}
		return nil
	},
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
