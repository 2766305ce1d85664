// Package config resolves project settings from .i18n-sync.yaml and the
// working directory layout.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Project holds the resolved settings of one run. Paths are absolute.
type Project struct {
	// Root is the project root directory.
	Root string
	// ConfigFile is the loaded .i18n-sync.yaml, empty when defaults are used.
	ConfigFile string
	// Resources is the directory holding the *.lproj folders.
	Resources string
	// Document is the YAML translation document path.
	Document string
	// AndroidRes is the Android res/ directory.
	AndroidRes string
	// BaseLocale is the development locale.
	BaseLocale string
	// Locales is the explicit locale set, nil when discovered from resources.
	Locales []string
}

// maxSearchDepth bounds the *.lproj search below the project root.
const maxSearchDepth = 4

// skipDirs are never searched for localized resources.
var skipDirs = map[string]bool{
	"Pods":         true,
	"Carthage":     true,
	"DerivedData":  true,
	"build":        true,
	"node_modules": true,
}

// Detect loads .i18n-sync.yaml from rootDir, falling back to defaults. When
// the Resources directory was not configured explicitly and the default does
// not exist, the first directory containing *.lproj folders is used.
func Detect(rootDir string) (*Project, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	f, err := LoadFile(absRoot)
	if err != nil {
		return nil, err
	}
	explicit := f != nil
	p := &Project{Root: absRoot}
	if explicit {
		p.ConfigFile = filepath.Join(absRoot, FileName)
	} else {
		f = Default()
	}

	p.Resources = p.Abs(f.Resources)
	p.Document = p.Abs(f.Document)
	p.AndroidRes = p.Abs(f.AndroidRes)
	p.BaseLocale = f.BaseLocale
	p.Locales = f.Locales

	if !explicit && !isDir(p.Resources) {
		if dir := findResources(absRoot); dir != "" {
			p.Resources = dir
		}
	}
	return p, nil
}

// Abs resolves path against the project root. Absolute paths are kept.
func (p *Project) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// findResources returns the shallowest directory under root that contains
// at least one *.lproj folder other than Base.lproj. Ties are broken by path.
func findResources(root string) string {
	var found []string
	bestDepth := maxSearchDepth + 1

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(filepath.Separator)) + 1
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || skipDirs[name] || strings.HasSuffix(name, ".lproj")) {
			return filepath.SkipDir
		}
		if depth > maxSearchDepth || depth > bestDepth {
			return filepath.SkipDir
		}
		if hasLproj(path) {
			if depth < bestDepth {
				bestDepth = depth
				found = found[:0]
			}
			found = append(found, path)
			return filepath.SkipDir
		}
		return nil
	})

	if len(found) == 0 {
		return ""
	}
	sort.Strings(found)
	return found[0]
}

// hasLproj reports whether dir directly contains a localized *.lproj folder.
func hasLproj(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() && strings.HasSuffix(name, ".lproj") && name != "Base.lproj" {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
