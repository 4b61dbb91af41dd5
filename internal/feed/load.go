package feed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"lowerc/internal/diag"
)

// Format is the encoding of a feed file.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Decode reads one feed document. Unknown keys are errors in every format.
func Decode(data []byte, format Format) (*Unit, error) {
	var u Unit
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &u)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&u); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&u); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported feed format")
	}
	return &u, nil
}

// Load reads and decodes the feed file at path, stamping every record
// with the file name.
func Load(path string) (*Unit, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: unsupported feed extension %q", path, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse %s: %w", path, format, err)
	}
	for i := range u.Types {
		u.Types[i].File = path
	}
	for i := range u.Methods {
		u.Methods[i].File = path
	}
	return u, nil
}

// LoadFiles loads and merges every path. Files that fail to load are
// reported as FED3001 and skipped; ok is false if any failed.
func LoadFiles(paths []string, r diag.Reporter) (u *Unit, ok bool) {
	u = &Unit{}
	ok = true
	for _, path := range paths {
		part, err := Load(path)
		if err != nil {
			ok = false
			diag.ReportError(r, diag.FeedLoadError, path, err.Error()).InFile(path).Emit()
			continue
		}
		u.Merge(part)
	}
	return u, ok
}
