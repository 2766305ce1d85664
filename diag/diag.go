// Package diag defines the diagnostics produced while converting between
// .strings, .stringsdict, the YAML document and Android resources.
//
// Every diagnostic implements error so it can be wrapped, returned and
// inspected with errors.As. A Report collects them for one run; nothing in
// this package is fatal by itself, callers decide what aborts.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Severity distinguishes advisory diagnostics from per-item failures.
type Severity int

const (
	// Warning is advisory: output is still produced.
	Warning Severity = iota
	// Error means one file or one key could not be processed.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single reported problem.
type Diagnostic interface {
	error
	Severity() Severity
}

// ---------------------------------------------------------------------------
// Diagnostic kinds
// ---------------------------------------------------------------------------

// ParseError reports malformed source syntax. It is fatal for the file
// being parsed only.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Severity() Severity { return Error }

// MissingTranslation reports a key that has no value for a declared locale.
type MissingTranslation struct {
	Section string
	Key     string
	Locale  string
}

func (m *MissingTranslation) Error() string {
	return fmt.Sprintf("%s: %q has no %s translation", m.Section, m.Key, m.Locale)
}

func (m *MissingTranslation) Severity() Severity { return Warning }

// DuplicateKey reports a key defined more than once for the same locale.
// The last definition wins unless the pipeline says otherwise.
type DuplicateKey struct {
	File    string
	Section string
	Key     string
	Locale  string
	Line    int
}

func (d *DuplicateKey) Error() string {
	where := d.File
	if where == "" {
		where = d.Section + "/" + d.Locale
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: duplicate key %q", where, d.Line, d.Key)
	}
	return fmt.Sprintf("%s: duplicate key %q", where, d.Key)
}

func (d *DuplicateKey) Severity() Severity { return Warning }

// MissingPluralOther reports a plural entry lacking the mandatory "other"
// category for a locale.
type MissingPluralOther struct {
	Key    string
	Locale string
}

func (m *MissingPluralOther) Error() string {
	return fmt.Sprintf("plural %q has no \"other\" form in %s", m.Key, m.Locale)
}

func (m *MissingPluralOther) Severity() Severity { return Warning }

// SpecifierMismatchError reports a translation whose format specifiers do
// not match the base locale's. Want and Got hold conversion kinds ("s",
// "d", ...) sorted for display.
type SpecifierMismatchError struct {
	Key        string
	Locale     string
	BaseLocale string
	Want       []string
	Got        []string
}

func (e *SpecifierMismatchError) Error() string {
	return fmt.Sprintf("%q in %s: format specifiers [%s] do not match %s [%s]",
		e.Key, e.Locale, strings.Join(e.Got, " "), e.BaseLocale, strings.Join(e.Want, " "))
}

func (e *SpecifierMismatchError) Severity() Severity { return Error }

// NameCollision reports two keys mapping to the same Android resource name.
// The first one keeps the name; the later one is skipped.
type NameCollision struct {
	Section string
	Key     string
	Name    string
}

func (n *NameCollision) Error() string {
	return fmt.Sprintf("%s: %q maps to resource name %q which is already used", n.Section, n.Key, n.Name)
}

func (n *NameCollision) Severity() Severity { return Warning }

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

// Report aggregates diagnostics in the order they were produced.
type Report struct {
	Items []Diagnostic
}

// Add appends d to the report. Nil diagnostics are ignored.
func (r *Report) Add(d Diagnostic) {
	if d == nil {
		return
	}
	r.Items = append(r.Items, d)
}

// Merge appends all diagnostics of o.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	r.Items = append(r.Items, o.Items...)
}

// Len returns the number of diagnostics.
func (r *Report) Len() int { return len(r.Items) }

// HasErrors reports whether any diagnostic has Error severity.
func (r *Report) HasErrors() bool {
	for _, d := range r.Items {
		if d.Severity() == Error {
			return true
		}
	}
	return false
}

// Missing returns the MissingTranslation diagnostics.
func (r *Report) Missing() []*MissingTranslation {
	var out []*MissingTranslation
	for _, d := range r.Items {
		if m, ok := d.(*MissingTranslation); ok {
			out = append(out, m)
		}
	}
	return out
}

// Others returns every diagnostic that is not a MissingTranslation.
func (r *Report) Others() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Items {
		if _, ok := d.(*MissingTranslation); !ok {
			out = append(out, d)
		}
	}
	return out
}

// MissingGroup lists the locales missing for one key.
type MissingGroup struct {
	Section string
	Key     string
	Locales []string
}

// GroupMissing folds MissingTranslation diagnostics into one line per key,
// ordered by section then key, locales sorted.
func (r *Report) GroupMissing() []MissingGroup {
	idx := make(map[[2]string]int)
	var groups []MissingGroup
	for _, m := range r.Missing() {
		k := [2]string{m.Section, m.Key}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, MissingGroup{Section: m.Section, Key: m.Key})
		}
		groups[i].Locales = append(groups[i].Locales, m.Locale)
	}
	for i := range groups {
		sort.Strings(groups[i].Locales)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Section != groups[j].Section {
			return groups[i].Section < groups[j].Section
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}
