package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"lowerc/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.EnumInvalidCustomValueKind, "pkg.Color", "custom value of kind char is not supported").
		InFile("/home/user/project/decls/enums.toml").
		WithNote("pkg.Color.value", "declared here"))
	bag.Add(diag.New(diag.SevWarning, diag.EnumAmbiguousCustomValue, "pkg.Size", "two candidate members"))
	return bag
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/decls/enums.toml"},
		{"relative", PathModeRelative, "decls/enums.toml:"},
		{"basename", PathModeBasename, "enums.toml:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, sampleBag(), PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			if !strings.Contains(buf.String(), tt.contains) {
				t.Fatalf("expected %q in output:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestPrettyNotes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true})
	out := buf.String()
	if !strings.Contains(out, "ENM2001") || !strings.Contains(out, "note: pkg.Color.value: declared here") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	buf.Reset()
	Pretty(&buf, sampleBag(), PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed while disabled:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	Short(&buf, sampleBag(), PathModeBasename, "")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "-:pkg.Size:WARNING:ENM2002:two candidate members" {
		t.Fatalf("unexpected short line %q", lines[1])
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{IncludeNotes: true, Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || !out.Truncated {
		t.Fatalf("expected one truncated diagnostic, got %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Code != "ENM2001" || d.Subject != "pkg.Color" || len(d.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}
