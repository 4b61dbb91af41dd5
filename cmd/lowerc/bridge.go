package main

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"lowerc/internal/driver"
	"lowerc/internal/types"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <file> <Owner.method> <type>...",
	Short: "Copy a method descriptor with extra trailing parameters",
	Long: `Load the declarations in file, take the method Owner.method and derive a copy
with the given types appended to its parameter list, keeping the erasure in sync.
Added types resolve with the owner's type variables in scope.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().String("format", "text", "output format (text|json)")
	bridgeCmd.Flags().Int("overload", -1, "which overload to copy, in declaration order")
}

type bridgeDump struct {
	Source        string         `json:"source"`
	Copy          types.MethodID `json:"copy"`
	Signature     string         `json:"signature"`
	Parameterized bool           `json:"parameterized"`
	Erasure       types.MethodID `json:"erasure"`
	Erased        string         `json:"erased"`
}

func runBridge(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	overload, err := cmd.Flags().GetInt("overload")
	if err != nil {
		return fmt.Errorf("failed to get overload flag: %w", err)
	}
	target := args[1]
	dot := strings.LastIndexByte(target, '.')
	if dot <= 0 || dot == len(target)-1 {
		return fmt.Errorf("method %q must be written Owner.method", target)
	}
	owner, name := target[:dot], target[dot+1:]

	run, err := prepareUnit(cmd, args[:1])
	if err != nil {
		return err
	}
	res, err := run.execute(cmd)
	if err != nil {
		return err
	}
	if res.Interner == nil || res.Bag.HasErrors() {
		return fmt.Errorf("%s: %d diagnostics, run check for details", args[0], res.Bag.Len())
	}

	id, err := pickMethod(res, owner, name, overload)
	if err != nil {
		return err
	}
	added := make([]types.TypeID, 0, len(args)-2)
	for _, s := range args[2:] {
		t, err := res.Builder.ResolveType(s, owner)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", s, err)
		}
		added = append(added, t)
	}

	in := res.Interner
	copyID, err := in.AppendParameters(id, added)
	if err != nil {
		return err
	}
	m := in.MustMethod(copyID)
	dump := bridgeDump{
		Source:        in.DescribeMethod(id),
		Copy:          copyID,
		Signature:     in.DescribeMethod(copyID),
		Parameterized: m.Parameterized,
		Erasure:       m.Erasure,
		Erased:        in.DescribeMethod(m.Erasure),
	}
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	}
	renderBridgeText(cmd.OutOrStdout(), dump)
	return nil
}

func pickMethod(res *driver.Result, owner, name string, overload int) (types.MethodID, error) {
	var found []driver.MethodResult
	for _, mr := range res.Methods {
		if mr.OK && mr.Decl.Owner == owner && mr.Decl.Name == name {
			found = append(found, mr)
		}
	}
	switch {
	case len(found) == 0:
		return types.NoMethodID, fmt.Errorf("no method %s.%s", owner, name)
	case overload >= 0:
		if overload >= len(found) {
			return types.NoMethodID, fmt.Errorf("%s.%s has %d overloads", owner, name, len(found))
		}
		return found[overload].ID, nil
	case len(found) > 1:
		var b strings.Builder
		fmt.Fprintf(&b, "%s.%s is overloaded, pick one with --overload:", owner, name)
		for i, mr := range found {
			fmt.Fprintf(&b, "\n  %d: %s", i, res.Interner.DescribeMethod(mr.ID))
		}
		return types.NoMethodID, fmt.Errorf("%s", b.String())
	default:
		return found[0].ID, nil
	}
}

func renderBridgeText(out io.Writer, d bridgeDump) {
	fmt.Fprintf(out, "source:  %s\n", d.Source)
	fmt.Fprintf(out, "copy:    #%d %s\n", d.Copy, d.Signature)
	if d.Parameterized {
		fmt.Fprintf(out, "erasure: #%d %s\n", d.Erasure, d.Erased)
	} else {
		fmt.Fprintln(out, "erasure: self")
	}
}
