// Package model is the in-memory translation document shared by every
// converter: plain string sections keyed by name, one reserved plurals
// section, and the set of declared locales.
//
// Sections and plural sections are distinct types so that their invariants
// (non-empty keys, closed plural category set) are checked when values are
// set rather than when the document is written out.
package model

import (
	"errors"
	"fmt"
	"sort"
)

// Reserved and well-known section names.
const (
	SectionLocalizable = "Localizable"
	SectionInfoPlist   = "InfoPlist"
	SectionPlurals     = "Plurals"
)

// ErrEmptyKey is returned when a value is set for an empty key.
var ErrEmptyKey = errors.New("empty key")

// ---------------------------------------------------------------------------
// Entries and sections
// ---------------------------------------------------------------------------

// Entry is one key with its per-locale values.
type Entry struct {
	Key    string
	values map[string]string
}

// Value returns the value for locale.
func (e *Entry) Value(locale string) (string, bool) {
	v, ok := e.values[locale]
	return v, ok
}

// Locales returns the locales that have a value, sorted.
func (e *Entry) Locales() []string {
	return sortedKeys(e.values)
}

// Section is an ordered group of entries, e.g. Localizable or InfoPlist.
type Section struct {
	Name string

	entries []*Entry
	index   map[string]int
	// headers holds the verbatim leading comment of each locale's file.
	headers map[string]string
}

// NewSection returns an empty section.
func NewSection(name string) *Section {
	return &Section{
		Name:    name,
		index:   make(map[string]int),
		headers: make(map[string]string),
	}
}

// Set stores value for (key, locale). It reports whether an existing value
// was replaced. Keys keep the position of their first insertion.
func (s *Section) Set(key, locale, value string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("section %s: %w", s.Name, ErrEmptyKey)
	}
	idx, ok := s.index[key]
	if !ok {
		idx = len(s.entries)
		s.entries = append(s.entries, &Entry{Key: key, values: make(map[string]string)})
		s.index[key] = idx
	}
	e := s.entries[idx]
	_, replaced := e.values[locale]
	e.values[locale] = value
	return replaced, nil
}

// Entry returns the entry for key, or nil.
func (s *Section) Entry(key string) *Entry {
	if idx, ok := s.index[key]; ok {
		return s.entries[idx]
	}
	return nil
}

// Has reports whether key has a value for locale.
func (s *Section) Has(key, locale string) bool {
	e := s.Entry(key)
	if e == nil {
		return false
	}
	_, ok := e.values[locale]
	return ok
}

// Entries returns the entries in insertion order.
func (s *Section) Entries() []*Entry { return s.entries }

// Len returns the number of keys.
func (s *Section) Len() int { return len(s.entries) }

// Keys returns the keys in insertion order.
func (s *Section) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// SortedKeys returns the keys in codepoint order.
func (s *Section) SortedKeys() []string {
	keys := s.Keys()
	sort.Strings(keys)
	return keys
}

// Locales returns every locale with at least one value, sorted.
func (s *Section) Locales() []string {
	seen := make(map[string]string)
	for _, e := range s.entries {
		for l := range e.values {
			seen[l] = ""
		}
	}
	return sortedKeys(seen)
}

// SetHeader records the header block of locale's file.
func (s *Section) SetHeader(locale, header string) {
	s.headers[locale] = header
}

// Header returns the header block recorded for locale.
func (s *Section) Header(locale string) (string, bool) {
	h, ok := s.headers[locale]
	return h, ok
}

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// Document is the root aggregate of one run.
type Document struct {
	// BaseLocale is the development language; it orders locales in output
	// and anchors format specifier positions.
	BaseLocale string
	// Plurals is the reserved plurals section. Never nil.
	Plurals *PluralsSection

	sections []*Section
	byName   map[string]*Section
	locales  []string
}

// NewDocument returns an empty document with the given base locale.
func NewDocument(baseLocale string) *Document {
	return &Document{
		BaseLocale: baseLocale,
		Plurals:    NewPluralsSection(),
		byName:     make(map[string]*Section),
	}
}

// Section returns the named section, or nil.
func (d *Document) Section(name string) *Section {
	return d.byName[name]
}

// AddSection returns the named section, creating it at the end if needed.
// The reserved plurals name is rejected.
func (d *Document) AddSection(name string) (*Section, error) {
	if name == SectionPlurals {
		return nil, fmt.Errorf("section name %q is reserved", name)
	}
	if name == "" {
		return nil, errors.New("empty section name")
	}
	if s, ok := d.byName[name]; ok {
		return s, nil
	}
	s := NewSection(name)
	d.sections = append(d.sections, s)
	d.byName[name] = s
	return s, nil
}

// Sections returns the sections in document order.
func (d *Document) Sections() []*Section { return d.sections }

// SortSections orders sections as Localizable, InfoPlist, then the rest
// alphabetically.
func (d *Document) SortSections() {
	rank := func(name string) int {
		switch name {
		case SectionLocalizable:
			return 0
		case SectionInfoPlist:
			return 1
		}
		return 2
	}
	sort.SliceStable(d.sections, func(i, j int) bool {
		a, b := d.sections[i].Name, d.sections[j].Name
		if rank(a) != rank(b) {
			return rank(a) < rank(b)
		}
		return a < b
	})
}

// SetLocales declares the locale set explicitly. An empty list reverts to
// deriving it from the entries.
func (d *Document) SetLocales(locales []string) {
	d.locales = dedupeSorted(locales)
}

// Locales returns the declared locales in codepoint order: the explicit set
// if one was given, otherwise every locale observed in any section.
func (d *Document) Locales() []string {
	if len(d.locales) > 0 {
		return append([]string(nil), d.locales...)
	}
	var all []string
	for _, s := range d.sections {
		all = append(all, s.Locales()...)
	}
	all = append(all, d.Plurals.Locales()...)
	return dedupeSorted(all)
}

// OrderedLocales returns Locales with the base locale moved first.
func (d *Document) OrderedLocales() []string {
	return BaseFirst(d.Locales(), d.BaseLocale)
}

// BaseFirst returns locales with base moved to the front if present.
func BaseFirst(locales []string, base string) []string {
	out := make([]string, 0, len(locales))
	for _, l := range locales {
		if l == base {
			out = append(out, l)
		}
	}
	for _, l := range locales {
		if l != base {
			out = append(out, l)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
