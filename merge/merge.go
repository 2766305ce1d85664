// Package merge compares a freshly extracted document with the YAML
// document it replaces, the way msgmerge compares a template with an
// existing catalog: values are new, obsolete or changed.
package merge

import (
	"fmt"
	"sort"

	"github.com/minios-linux/i18nsync/model"
)

// Kind classifies a change.
type Kind int

const (
	// Added means the value exists only in the new document.
	Added Kind = iota
	// Removed means the value exists only in the previous document.
	Removed
	// Changed means both documents have a different value.
	Changed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "changed"
}

// Change is one differing (section, key, locale) value.
type Change struct {
	Kind    Kind
	Section string
	Key     string
	Locale  string
	Old     string
	New     string
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return fmt.Sprintf("+ %s.%s[%s] %q", c.Section, c.Key, c.Locale, c.New)
	case Removed:
		return fmt.Sprintf("- %s.%s[%s] %q", c.Section, c.Key, c.Locale, c.Old)
	}
	return fmt.Sprintf("~ %s.%s[%s] %q -> %q", c.Section, c.Key, c.Locale, c.Old, c.New)
}

// Summary counts changes by kind.
type Summary struct {
	Added, Removed, Changed int
}

// Summarize counts changes.
func Summarize(changes []Change) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Kind {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		case Changed:
			s.Changed++
		}
	}
	return s
}

// Diff lists every value that differs between previous and current,
// ordered by section, key, then locale. A nil previous document counts as
// empty. Plural values are compared per locale as a whole and rendered in
// the form "category=text; ...".
func Diff(previous, current *model.Document) []Change {
	if previous == nil {
		previous = model.NewDocument(current.BaseLocale)
	}
	var changes []Change

	names := make(map[string]bool)
	for _, s := range previous.Sections() {
		names[s.Name] = true
	}
	for _, s := range current.Sections() {
		names[s.Name] = true
	}
	for _, name := range sortedSet(names) {
		old, cur := flatten(previous.Section(name)), flatten(current.Section(name))
		changes = append(changes, diffMaps(name, old, cur)...)
	}

	changes = append(changes, diffMaps(model.SectionPlurals, flattenPlurals(previous.Plurals), flattenPlurals(current.Plurals))...)
	return changes
}

type slot struct {
	key, locale string
}

func flatten(sec *model.Section) map[slot]string {
	out := make(map[slot]string)
	if sec == nil {
		return out
	}
	for _, e := range sec.Entries() {
		for _, l := range e.Locales() {
			v, _ := e.Value(l)
			out[slot{e.Key, l}] = v
		}
	}
	return out
}

func flattenPlurals(p *model.PluralsSection) map[slot]string {
	out := make(map[slot]string)
	for _, e := range p.Entries() {
		for _, l := range e.Locales() {
			forms, _ := e.Forms(l)
			out[slot{e.Key, l}] = renderForms(forms)
		}
	}
	return out
}

func renderForms(f model.PluralForms) string {
	s := ""
	if f.Format != "" {
		s = "format=" + f.Format
	}
	for _, c := range f.Categories() {
		if s != "" {
			s += "; "
		}
		s += string(c) + "=" + f.Forms[c]
	}
	return s
}

func diffMaps(section string, old, cur map[slot]string) []Change {
	slots := make(map[slot]bool, len(old)+len(cur))
	for k := range old {
		slots[k] = true
	}
	for k := range cur {
		slots[k] = true
	}
	ordered := make([]slot, 0, len(slots))
	for k := range slots {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].key != ordered[j].key {
			return ordered[i].key < ordered[j].key
		}
		return ordered[i].locale < ordered[j].locale
	})

	var changes []Change
	for _, k := range ordered {
		o, inOld := old[k]
		n, inCur := cur[k]
		c := Change{Section: section, Key: k.key, Locale: k.locale, Old: o, New: n}
		switch {
		case !inOld:
			c.Kind = Added
		case !inCur:
			c.Kind = Removed
		case o != n:
			c.Kind = Changed
		default:
			continue
		}
		changes = append(changes, c)
	}
	return changes
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
