// Package lproj discovers and writes the localized resources of an iOS
// Resources directory (<locale>.lproj/<Section>.strings|.stringsdict).
package lproj

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Directory and file name conventions.
const (
	DirSuffix      = ".lproj"
	BaseDir        = "Base" + DirSuffix
	ExtStrings     = ".strings"
	ExtStringsdict = ".stringsdict"
)

// ErrNoLocales is returned by Scan when no *.lproj directory exists.
var ErrNoLocales = errors.New("no *.lproj directories found")

// Kind distinguishes the two resource formats.
type Kind int

const (
	// Strings is a .strings table.
	Strings Kind = iota
	// Stringsdict is a .stringsdict plural dictionary.
	Stringsdict
)

// Resource is one discovered file.
type Resource struct {
	// Section is the file name without extension, e.g. "Localizable".
	Section string
	// Locale is the directory name without .lproj, e.g. "pt-BR".
	Locale string
	Kind   Kind
	Path   string
	Data   []byte
}

// Scan reads every .strings and .stringsdict file of root/*.lproj. Base.lproj
// holds storyboard strings and is skipped. Results are ordered by locale,
// then file name.
func Scan(root string) ([]Resource, error) {
	dirs, err := Locales(root)
	if err != nil {
		return nil, err
	}

	var out []Resource
	for _, loc := range dirs {
		dir := filepath.Join(root, loc+DirSuffix)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			var kind Kind
			switch filepath.Ext(name) {
			case ExtStrings:
				kind = Strings
			case ExtStringsdict:
				kind = Stringsdict
			default:
				continue
			}
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			out = append(out, Resource{
				Section: strings.TrimSuffix(name, filepath.Ext(name)),
				Locale:  loc,
				Kind:    kind,
				Path:    path,
				Data:    data,
			})
		}
	}
	return out, nil
}

// Locales returns the locale of every *.lproj directory in root, sorted,
// without Base.
func Locales(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	var locales []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasSuffix(name, DirSuffix) || name == BaseDir {
			continue
		}
		locales = append(locales, strings.TrimSuffix(name, DirSuffix))
	}
	if len(locales) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoLocales)
	}
	sort.Strings(locales)
	return locales, nil
}

// Path returns root/<locale>.lproj/<name>.
func Path(root, locale, name string) string {
	return filepath.Join(root, locale+DirSuffix, name)
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename, so readers never see a partial file.
// Missing parent directories are created.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
