package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"lowerc/internal/diag"
)

// Pretty prints diagnostics in human-readable form. It walks bag.Items(),
// so callers should bag.Sort() first. Each diagnostic renders as
//
//	<file>: <SEV> <CODE>: <subject>: <message>
//
// followed by indented notes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	palette := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prefix := ""
		if path := formatPath(d.File, opts.PathMode, opts.BaseDir); path != "" {
			prefix = palette.path.Sprint(path) + ": "
		}
		sev := palette.severity(d.Severity).Sprint(d.Severity.String())
		code := palette.code.Sprint(d.Code.ID())
		if d.Subject != "" {
			fmt.Fprintf(w, "%s%s %s: %s: %s\n", prefix, sev, code, palette.subject.Sprint(d.Subject), d.Message)
		} else {
			fmt.Fprintf(w, "%s%s %s: %s\n", prefix, sev, code, d.Message)
		}
		if !opts.ShowNotes && d.Code != diag.ObsTimings {
			continue
		}
		for _, n := range d.Notes {
			if n.Subject != "" {
				fmt.Fprintf(w, "  %s %s: %s\n", palette.note.Sprint("note:"), n.Subject, n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", palette.note.Sprint("note:"), n.Msg)
		}
	}
}

// Short prints one line per diagnostic without notes or colour.
func Short(w io.Writer, bag *diag.Bag, mode PathMode, base string) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		path := formatPath(d.File, mode, base)
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(w, "%s:%s:%s:%s:%s\n", path, d.Subject, d.Severity.String(), d.Code.ID(), d.Message)
	}
}

type palette struct {
	path    *color.Color
	code    *color.Color
	subject *color.Color
	note    *color.Color
	err     *color.Color
	warn    *color.Color
	info    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		code:    color.New(color.FgHiBlack),
		subject: color.New(color.FgCyan),
		note:    color.New(color.FgBlue, color.Bold),
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.path, p.code, p.subject, p.note, p.err, p.warn, p.info} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}
