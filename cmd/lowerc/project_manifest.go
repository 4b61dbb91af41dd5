package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "lowerc.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Unit    unitConfig    `toml:"unit"`
	Compile compileConfig `toml:"compile"`
}

type unitConfig struct {
	Name  string   `toml:"name"`
	Decls []string `toml:"decls"`
}

// compileConfig mirrors the frontend's command-line options. Only jobs and
// disk_cache change what lowerc itself does; the rest is carried so a
// manifest can be shared with the frontend that produces the feeds.
type compileConfig struct {
	Classpath       []string `toml:"classpath"`
	Sourcepath      []string `toml:"sourcepath"`
	Bootclasspath   []string `toml:"bootclasspath"`
	Output          string   `toml:"output"`
	Encoding        string   `toml:"encoding"`
	Source          string   `toml:"source"`
	Omitfiles       []string `toml:"omitfiles"`
	NativeSourceZip []string `toml:"native_source_zip"`
	Jobs            int      `toml:"jobs"`
	DiskCache       bool     `toml:"disk_cache"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("unit") {
		return projectConfig{}, fmt.Errorf("%s: missing [unit]", path)
	}
	if !meta.IsDefined("unit", "name") || strings.TrimSpace(cfg.Unit.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [unit].name", path)
	}
	if !meta.IsDefined("unit", "decls") || len(cfg.Unit.Decls) == 0 {
		return projectConfig{}, fmt.Errorf("%s: missing [unit].decls", path)
	}
	if !meta.IsDefined("compile", "encoding") {
		cfg.Compile.Encoding = "UTF-8"
	}
	if !meta.IsDefined("compile", "source") {
		cfg.Compile.Source = "1.8"
	}
	if cfg.Compile.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [compile].jobs must not be negative", path)
	}
	return cfg, nil
}

// declFiles returns the manifest's feed files relative to its directory.
func (m *projectManifest) declFiles() []string {
	files := make([]string, 0, len(m.Config.Unit.Decls))
	for _, rel := range m.Config.Unit.Decls {
		if filepath.IsAbs(rel) {
			files = append(files, rel)
			continue
		}
		files = append(files, filepath.Join(m.Root, filepath.FromSlash(rel)))
	}
	return files
}

// resolveUnit picks the feed files for a command: explicit arguments win,
// otherwise the nearest lowerc.toml supplies them.
func resolveUnit(args []string) (name string, files []string, manifest *projectManifest, err error) {
	if len(args) > 0 {
		return "", args, nil, nil
	}
	manifest, ok, err := loadProjectManifest(".")
	if err != nil {
		return "", nil, nil, err
	}
	if !ok {
		return "", nil, nil, errors.New("no " + manifestName + " found\nplease pass the declaration files explicitly, e.g.:\n  lowerc check decls.toml")
	}
	return manifest.Config.Unit.Name, manifest.declFiles(), manifest, nil
}
