// Package project locates and reads the plume.toml manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the project root is identified by.
const ManifestName = "plume.toml"

// Manifest is a located, parsed plume.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML structure:
//
//	[package]
//	name = "demo"
//
//	[output]
//	dir = "build"          # optional, default "<file>_out"
//
//	[plugins]
//	disabled = ["py_generator"]
type Config struct {
	Package PackageConfig `toml:"package"`
	Output  OutputConfig  `toml:"output"`
	Plugins PluginsConfig `toml:"plugins"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type PluginsConfig struct {
	Disabled []string `toml:"disabled"`
}

// FindManifest walks up from startDir to locate plume.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// Load walks up from startDir, parses the nearest manifest and validates
// the required fields. ok is false when no manifest exists; that is not an
// error.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	return cfg, nil
}

// OutputDir resolves the output directory for a source file: the
// manifest's [output].dir relative to the project root when set, otherwise
// "<file>_out" next to the source.
func (m *Manifest) OutputDir(sourcePath string) string {
	if m != nil && strings.TrimSpace(m.Config.Output.Dir) != "" {
		dir := filepath.FromSlash(m.Config.Output.Dir)
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(m.Root, dir)
	}
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	return base + "_out"
}
