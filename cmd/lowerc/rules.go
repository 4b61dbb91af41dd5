package main

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"lowerc/internal/lowering"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the enum lowering rule for every variant and operation",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "text", "output format (text|json)")
	rulesCmd.Flags().String("variant", "", "only rules for this variant, e.g. BoxedOrdinal or NativeCustomValue(String)")
	rulesCmd.Flags().String("op", "", "only rules for this operation, e.g. compareTo")
}

type ruleJSON struct {
	Variant   string `json:"variant"`
	Operation string `json:"operation"`
	Strategy  string `json:"strategy"`
	Fault     string `json:"fault,omitempty"`
	NullFault string `json:"null_fault,omitempty"`
	Clinit    bool   `json:"clinit,omitempty"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	variant, err := cmd.Flags().GetString("variant")
	if err != nil {
		return fmt.Errorf("failed to get variant flag: %w", err)
	}
	opName, err := cmd.Flags().GetString("op")
	if err != nil {
		return fmt.Errorf("failed to get op flag: %w", err)
	}
	if opName != "" {
		if _, ok := lowering.ParseOperation(opName); !ok {
			return fmt.Errorf("unknown operation %q", opName)
		}
	}

	rules := filterRules(lowering.Table(), variant, opName)
	switch format {
	case "text":
		renderRulesText(cmd.OutOrStdout(), rules)
		return nil
	case "json":
		out := make([]ruleJSON, 0, len(rules))
		for _, r := range rules {
			out = append(out, toRuleJSON(r))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func filterRules(rules []lowering.Rule, variant, op string) []lowering.Rule {
	if variant == "" && op == "" {
		return rules
	}
	out := rules[:0:0]
	for _, r := range rules {
		if variant != "" && !strings.EqualFold(r.Variant.String(), variant) {
			continue
		}
		if op != "" && r.Op.String() != op {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toRuleJSON(r lowering.Rule) ruleJSON {
	rj := ruleJSON{
		Variant:   r.Variant.String(),
		Operation: r.Op.String(),
		Strategy:  r.Strategy.String(),
		Clinit:    r.Clinit,
	}
	if r.Fault != lowering.FaultNone {
		rj.Fault = r.Fault.String()
	}
	if r.NullFault != lowering.FaultNone {
		rj.NullFault = r.NullFault.String()
	}
	return rj
}

func renderRulesText(out io.Writer, rules []lowering.Rule) {
	header := []string{"VARIANT", "OPERATION", "STRATEGY", "FAULT", "ON NULL", "CLINIT"}
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rj := toRuleJSON(r)
		clinit := ""
		if rj.Clinit {
			clinit = "yes"
		}
		rows = append(rows, []string{rj.Variant, rj.Operation, rj.Strategy, dash(rj.Fault), dash(rj.NullFault), clinit})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	writeRow := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(cell)
				continue
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
