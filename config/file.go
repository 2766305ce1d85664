// Package config: .i18n-sync.yaml configuration file support.
//
// The file is optional. When present in the project root it fixes the
// resource paths and the locale set; command-line flags still override it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .i18n-sync.yaml structure.
type File struct {
	// Resources is the iOS directory holding the *.lproj folders.
	Resources string `yaml:"resources,omitempty"`
	// Document is the YAML translation document.
	Document string `yaml:"document,omitempty"`
	// AndroidRes is the Android res/ directory written by apply-android.
	AndroidRes string `yaml:"android_res,omitempty"`
	// BaseLocale anchors format specifier positions and owns values/.
	BaseLocale string `yaml:"base_locale,omitempty"`
	// Locales fixes the declared locale set. Empty means "whatever the
	// resources contain".
	Locales []string `yaml:"locales,omitempty"`
}

// Defaults for fields left out of the file.
const (
	DefaultResources  = "Resources"
	DefaultDocument   = "translations.yaml"
	DefaultAndroidRes = "app/src/main/res"
	DefaultBaseLocale = "en"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the configuration file name looked up in the project root.
const FileName = ".i18n-sync.yaml"

// LoadFile loads and validates .i18n-sync.yaml from the given directory.
// Returns nil if no file exists.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.Resources == "" {
		f.Resources = DefaultResources
	}
	if f.Document == "" {
		f.Document = DefaultDocument
	}
	if f.AndroidRes == "" {
		f.AndroidRes = DefaultAndroidRes
	}
	if f.BaseLocale == "" {
		f.BaseLocale = DefaultBaseLocale
	}
}

func (f *File) validate() error {
	if strings.ContainsAny(f.BaseLocale, " /\\") {
		return fmt.Errorf("invalid base_locale %q", f.BaseLocale)
	}
	if len(f.Locales) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(f.Locales))
	for i, l := range f.Locales {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("locale #%d is empty", i+1)
		}
		if seen[l] {
			return fmt.Errorf("locale %q listed twice", l)
		}
		seen[l] = true
	}
	if !seen[f.BaseLocale] {
		return fmt.Errorf("base_locale %q is not listed in locales", f.BaseLocale)
	}
	return nil
}
