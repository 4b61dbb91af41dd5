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

var describeCmd = &cobra.Command{
	Use:   "describe [files...]",
	Short: "Dump interned type and method descriptors and enum variants",
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().String("format", "text", "output format (text|json)")
	describeCmd.Flags().Bool("builtins", false, "include primitives and well-known library types")
	describeCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

type typeDump struct {
	ID         types.TypeID `json:"id"`
	Kind       string       `json:"kind"`
	Type       string       `json:"type"`
	Raw        types.TypeID `json:"raw,omitempty"`
	Super      string       `json:"super,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Enclosing  string       `json:"enclosing,omitempty"`
	Bound      string       `json:"bound,omitempty"`
	Variant    string       `json:"variant,omitempty"`
}

type methodDump struct {
	ID            types.MethodID `json:"id"`
	Signature     string         `json:"signature"`
	Parameterized bool           `json:"parameterized"`
	Erasure       types.MethodID `json:"erasure"`
	Erased        string         `json:"erased"`
	Visibility    string         `json:"visibility"`
}

type enumDump struct {
	Name      string   `json:"name"`
	Variant   string   `json:"variant,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Member    string   `json:"member,omitempty"`
	Constants []string `json:"constants,omitempty"`
	Excluded  string   `json:"excluded,omitempty"`
	Cached    bool     `json:"cached,omitempty"`
}

type unitDump struct {
	Unit    string       `json:"unit"`
	Types   []typeDump   `json:"types"`
	Methods []methodDump `json:"methods"`
	Enums   []enumDump   `json:"enums"`
}

func runDescribe(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	builtins, err := cmd.Flags().GetBool("builtins")
	if err != nil {
		return fmt.Errorf("failed to get builtins flag: %w", err)
	}

	run, err := prepareUnit(cmd, args)
	if err != nil {
		return err
	}
	res, err := run.execute(cmd)
	if err != nil {
		return err
	}
	if res.Interner == nil || res.Bag.HasErrors() {
		return fmt.Errorf("%s: %d diagnostics, run check for details", res.Unit, res.Bag.Len())
	}

	dump := buildDump(res, builtins)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	}
	renderDumpText(cmd.OutOrStdout(), dump)
	return nil
}

func buildDump(res *driver.Result, builtins bool) unitDump {
	in := res.Interner
	dump := unitDump{Unit: res.Unit}

	// Serializable is the last seeded builtin.
	firstOwn := in.Builtins().Serializable + 1
	in.EachType(func(t types.Type) bool {
		if !builtins && t.ID < firstOwn {
			return true
		}
		td := typeDump{
			ID:   t.ID,
			Kind: t.Kind.String(),
			Type: in.Describe(t.ID),
		}
		if t.Raw.IsValid() && t.Raw != t.ID {
			td.Raw = t.Raw
		}
		if h, ok := in.HierarchyOf(t.ID); ok {
			if h.Super.IsValid() {
				td.Super = in.Describe(h.Super)
			}
			for _, iface := range h.Interfaces {
				td.Interfaces = append(td.Interfaces, in.Describe(iface))
			}
			if h.Enclosing.IsValid() {
				td.Enclosing = in.Describe(h.Enclosing)
			}
		}
		if t.Kind == types.KindTypeVar {
			if b := in.Bound(t.ID); b.IsValid() {
				td.Bound = in.Describe(b)
			}
			td.Type = t.Owner + "::" + t.Name
		}
		if info, ok := in.EnumInfo(t.ID); ok {
			td.Variant = info.Variant.String()
		}
		dump.Types = append(dump.Types, td)
		return true
	})

	in.EachMethod(func(m types.Method) bool {
		dump.Methods = append(dump.Methods, methodDump{
			ID:            m.ID,
			Signature:     in.DescribeMethod(m.ID),
			Parameterized: m.Parameterized,
			Erasure:       m.Erasure,
			Erased:        in.ErasedSignature(m.ID),
			Visibility:    m.Visibility.String(),
		})
		return true
	})

	excluded := make(map[string]string, len(res.Excluded))
	for _, e := range res.Excluded {
		excluded[e.Enum] = e.Code.ID() + " " + e.Error()
	}
	for _, er := range res.Enums {
		ed := enumDump{Name: er.Name, Cached: er.Cached}
		if er.OK {
			ed.Variant = er.Info.Variant.String()
			ed.Namespace = er.Info.Namespace
			ed.Member = er.Info.Member
			ed.Constants = er.Info.Constants
		} else if reason, ok := excluded[er.Name]; ok {
			ed.Excluded = reason
		}
		dump.Enums = append(dump.Enums, ed)
	}
	return dump
}

func renderDumpText(out io.Writer, dump unitDump) {
	fmt.Fprintf(out, "unit %s\n", dump.Unit)

	fmt.Fprintf(out, "\ntypes (%d)\n", len(dump.Types))
	for _, t := range dump.Types {
		fmt.Fprintf(out, "  #%-4d %-9s %s", t.ID, t.Kind, t.Type)
		if t.Bound != "" {
			fmt.Fprintf(out, " extends %s", t.Bound)
		}
		if t.Super != "" {
			fmt.Fprintf(out, " : %s", t.Super)
		}
		if len(t.Interfaces) > 0 {
			fmt.Fprintf(out, " implements %s", strings.Join(t.Interfaces, ", "))
		}
		if t.Raw != 0 {
			fmt.Fprintf(out, " raw=#%d", t.Raw)
		}
		if t.Variant != "" {
			fmt.Fprintf(out, " [%s]", t.Variant)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nmethods (%d)\n", len(dump.Methods))
	for _, m := range dump.Methods {
		fmt.Fprintf(out, "  #%-4d %s", m.ID, m.Signature)
		if m.Erasure != m.ID {
			fmt.Fprintf(out, "  erasure=#%d %s", m.Erasure, m.Erased)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nenums (%d)\n", len(dump.Enums))
	for _, e := range dump.Enums {
		if e.Excluded != "" {
			fmt.Fprintf(out, "  %s excluded: %s\n", e.Name, e.Excluded)
			continue
		}
		fmt.Fprintf(out, "  %s %s", e.Name, e.Variant)
		if e.Namespace != "" {
			fmt.Fprintf(out, " namespace=%s", e.Namespace)
		}
		if e.Member != "" {
			fmt.Fprintf(out, " value=%s", e.Member)
		}
		fmt.Fprintf(out, " {%s}", strings.Join(e.Constants, ", "))
		if e.Cached {
			fmt.Fprint(out, " (cached)")
		}
		fmt.Fprintln(out)
	}
}
