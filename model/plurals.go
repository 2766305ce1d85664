package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category is a CLDR plural category.
type Category string

// The six CLDR plural categories.
const (
	Zero  Category = "zero"
	One   Category = "one"
	Two   Category = "two"
	Few   Category = "few"
	Many  Category = "many"
	Other Category = "other"
)

// Categories lists every category in canonical order.
var Categories = []Category{Zero, One, Two, Few, Many, Other}

// ParseCategory validates s as a plural category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Category) rank() int {
	for i, x := range Categories {
		if x == c {
			return i
		}
	}
	return len(Categories)
}

// placeholderRe matches a stringsdict variable reference such as %#@files@.
var placeholderRe = regexp.MustCompile(`%#@[^@\s]+@`)

// PlaceholderRe returns the regexp matching %#@name@ references.
func PlaceholderRe() *regexp.Regexp { return placeholderRe }

// PluralForms holds one locale's variants of a plural entry.
type PluralForms struct {
	// Format is the localized sentence around the plural placeholder, e.g.
	// "You have %#@files@ left". Empty when the placeholder stands alone.
	Format string
	// Forms maps category to the text selected for that category.
	Forms map[Category]string
	// ValueType is the stringsdict value type of the plural argument when it
	// is not the default "d", e.g. "ld" or "u".
	ValueType string
}

// Categories returns the present categories in canonical order.
func (p PluralForms) Categories() []Category {
	cats := make([]Category, 0, len(p.Forms))
	for c := range p.Forms {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].rank() < cats[j].rank() })
	return cats
}

// Resolve returns the full localized string for category c: the category
// text substituted into the sentence template, or the category text alone
// when there is no surrounding sentence.
func (p PluralForms) Resolve(c Category) (string, bool) {
	text, ok := p.Forms[c]
	if !ok {
		return "", false
	}
	if p.Format == "" {
		return text, true
	}
	loc := placeholderRe.FindStringIndex(p.Format)
	if loc == nil {
		return text, true
	}
	return p.Format[:loc[0]] + text + p.Format[loc[1]:], true
}

// Variable returns the placeholder name used in Format, or "".
func (p PluralForms) Variable() string {
	m := placeholderRe.FindString(p.Format)
	if m == "" {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(m, "%#@"), "@")
}

// PluralEntry is one plural key with its per-locale forms.
type PluralEntry struct {
	Key     string
	locales map[string]PluralForms
}

// Forms returns the forms of locale.
func (e *PluralEntry) Forms(locale string) (PluralForms, bool) {
	f, ok := e.locales[locale]
	return f, ok
}

// Locales returns the locales that have forms, sorted.
func (e *PluralEntry) Locales() []string {
	return sortedKeys(e.locales)
}

// PluralsSection is the reserved section holding plural entries. Its key
// namespace is independent from the plain sections.
type PluralsSection struct {
	entries []*PluralEntry
	index   map[string]int
}

// NewPluralsSection returns an empty plurals section.
func NewPluralsSection() *PluralsSection {
	return &PluralsSection{index: make(map[string]int)}
}

// Set stores forms for (key, locale), replacing any previous forms. It
// reports whether a previous value was replaced. Category keys outside the
// CLDR set are rejected.
func (p *PluralsSection) Set(key, locale string, forms PluralForms) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("section %s: %w", SectionPlurals, ErrEmptyKey)
	}
	cp := PluralForms{Format: forms.Format, ValueType: forms.ValueType, Forms: make(map[Category]string, len(forms.Forms))}
	for c, v := range forms.Forms {
		if _, ok := ParseCategory(string(c)); !ok {
			return false, fmt.Errorf("plural %q (%s): unknown category %q", key, locale, c)
		}
		cp.Forms[c] = v
	}
	idx, ok := p.index[key]
	if !ok {
		idx = len(p.entries)
		p.entries = append(p.entries, &PluralEntry{Key: key, locales: make(map[string]PluralForms)})
		p.index[key] = idx
	}
	e := p.entries[idx]
	_, replaced := e.locales[locale]
	e.locales[locale] = cp
	return replaced, nil
}

// Entry returns the entry for key, or nil.
func (p *PluralsSection) Entry(key string) *PluralEntry {
	if idx, ok := p.index[key]; ok {
		return p.entries[idx]
	}
	return nil
}

// Entries returns the entries in insertion order.
func (p *PluralsSection) Entries() []*PluralEntry { return p.entries }

// Len returns the number of plural keys.
func (p *PluralsSection) Len() int { return len(p.entries) }

// SortedKeys returns the keys in codepoint order.
func (p *PluralsSection) SortedKeys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys
}

// Locales returns every locale with at least one plural entry, sorted.
func (p *PluralsSection) Locales() []string {
	seen := make(map[string]bool)
	for _, e := range p.entries {
		for l := range e.locales {
			seen[l] = true
		}
	}
	return sortedKeys(seen)
}
