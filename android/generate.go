package android

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/format"
	"github.com/minios-linux/i18nsync/locale"
	"github.com/minios-linux/i18nsync/model"
)

// Resource file names inside res/.
const (
	StringsXML       = "strings.xml"
	LocalesConfigXML = "locales_config.xml"
)

// Options configures Generate.
type Options struct {
	// BaseLocale owns values/ and anchors format specifier positions.
	// Defaults to the document's base locale.
	BaseLocale string
	// Locales to generate. Defaults to the document's declared locales.
	Locales []string
	// Existing is the current values/strings.xml, if any. Its
	// translatable="false" resources are carried over into the new file.
	Existing *File
}

// OutputFile is one generated file, Path relative to the res/ directory.
type OutputFile struct {
	Path string
	Data []byte
}

// Output is the generated resource tree.
type Output struct {
	Files []OutputFile
}

// resource is one document key bound to its Android resource name.
type resource struct {
	section string
	key     string
	name    string
	// values maps locale to converted text.
	values map[string]string
}

// pluralResource is one plural key with converted items per locale.
type pluralResource struct {
	key   string
	name  string
	items map[string][]pluralItem
}

type pluralItem struct {
	quantity string
	text     string
}

// Generate projects doc into Android resources: one strings.xml per locale
// and xml/locales_config.xml. Values go through the format specifier
// converter; a value whose specifiers do not match the base locale is left
// out for that locale only and reported.
func Generate(doc *model.Document, opts Options) (*Output, *diag.Report) {
	report := &diag.Report{}
	base := opts.BaseLocale
	if base == "" {
		base = doc.BaseLocale
	}
	locales := opts.Locales
	if len(locales) == 0 {
		locales = doc.Locales()
	}
	if base == "" && len(locales) > 0 {
		base = locales[0]
	}
	if !contains(locales, base) {
		locales = append([]string{base}, locales...)
	}
	locales = model.BaseFirst(locales, base)

	taken := make(map[string]bool)
	if opts.Existing != nil {
		for _, e := range opts.Existing.NonTranslatable() {
			if e.Kind == KindString {
				taken[e.Name] = true
			}
		}
	}

	conv := format.Converter{Base: base}
	var resources []resource
	for _, sec := range doc.Sections() {
		for _, key := range sec.SortedKeys() {
			name := ResourceName(key)
			if taken[name] {
				report.Add(&diag.NameCollision{Section: sec.Name, Key: key, Name: name})
				continue
			}
			taken[name] = true

			e := sec.Entry(key)
			values := make(map[string]string)
			for _, l := range locales {
				if v, ok := e.Value(l); ok {
					values[l] = v
				}
			}
			converted, mismatches := conv.ConvertLocales(key, values)
			for _, mm := range mismatches {
				report.Add(mm)
			}
			resources = append(resources, resource{section: sec.Name, key: key, name: name, values: converted})
		}
	}

	pluralTaken := make(map[string]bool)
	if opts.Existing != nil {
		for _, e := range opts.Existing.NonTranslatable() {
			if e.Kind == KindPlurals {
				pluralTaken[e.Name] = true
			}
		}
	}
	var plurals []pluralResource
	for _, key := range doc.Plurals.SortedKeys() {
		name := ResourceName(key)
		if pluralTaken[name] {
			report.Add(&diag.NameCollision{Section: model.SectionPlurals, Key: key, Name: name})
			continue
		}
		pluralTaken[name] = true

		e := doc.Plurals.Entry(key)
		pr := pluralResource{key: key, name: name, items: make(map[string][]pluralItem)}
		baseForms, hasBase := e.Forms(base)
		for _, l := range locales {
			forms, ok := e.Forms(l)
			if !ok {
				continue
			}
			var items []pluralItem
			for _, c := range forms.Categories() {
				text, _ := forms.Resolve(c)
				if l == base || !hasBase {
					text, _ = format.Convert(text)
				} else {
					converted, mm := convertPluralItem(text, baseForms, c)
					if mm != nil {
						mm.Key, mm.Locale, mm.BaseLocale = key, l, base
						report.Add(mm)
						items = nil
						break
					}
					text = converted
				}
				items = append(items, pluralItem{quantity: string(c), text: text})
			}
			if len(items) > 0 {
				pr.items[l] = items
			}
		}
		plurals = append(plurals, pr)
	}

	out := &Output{}
	written := make(map[string]bool)
	for _, l := range locales {
		dir := locale.ValuesDir(l, base)
		if written[dir] {
			continue
		}
		written[dir] = true

		f := NewFile()
		if l == base && opts.Existing != nil {
			for _, e := range opts.Existing.NonTranslatable() {
				f.Add(e)
			}
		}
		section := ""
		for _, r := range resources {
			v, ok := r.values[l]
			if !ok {
				continue
			}
			if r.section != section {
				section = r.section
				f.Entries = append(f.Entries, &Entry{Kind: KindComment, Comment: section})
			}
			f.Add(&Entry{Kind: KindString, Name: r.name, Translatable: true, Value: v})
		}
		first := true
		for _, pr := range plurals {
			items := pr.items[l]
			if len(items) == 0 {
				continue
			}
			if first {
				f.Entries = append(f.Entries, &Entry{Kind: KindComment, Comment: model.SectionPlurals})
				first = false
			}
			e := &Entry{Kind: KindPlurals, Name: pr.name, Translatable: true, Plurals: make(map[string]string)}
			for _, it := range items {
				e.Plurals[it.quantity] = it.text
				e.PluralOrder = append(e.PluralOrder, it.quantity)
			}
			f.Add(e)
		}

		data := f.MarshalTarget()
		if l == base {
			data = f.Marshal()
		}
		out.Files = append(out.Files, OutputFile{Path: filepath.Join(dir, StringsXML), Data: data})
	}

	out.Files = append(out.Files, OutputFile{
		Path: filepath.Join("xml", LocalesConfigXML),
		Data: LocalesConfig(locales),
	})
	return out, report
}

// convertPluralItem converts one non-base plural item against the base
// locale's item of the same category, then against the base "other" item.
// Items the base has no counterpart for are converted standalone.
func convertPluralItem(text string, base model.PluralForms, c model.Category) (string, *diag.SpecifierMismatchError) {
	var firstErr *diag.SpecifierMismatchError
	for _, bc := range []model.Category{c, model.Other} {
		baseText, ok := base.Resolve(bc)
		if !ok {
			continue
		}
		_, args := format.Convert(baseText)
		out, _, err := format.ConvertWith(text, args)
		if err == nil {
			return out, nil
		}
		var mm *diag.SpecifierMismatchError
		if firstErr == nil && errors.As(err, &mm) {
			firstErr = mm
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	out, _ := format.Convert(text)
	return out, nil
}

// LocalesConfig renders xml/locales_config.xml for the given iOS locales.
func LocalesConfig(locales []string) []byte {
	var b bytes.Buffer
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<locale-config xmlns:android=\"http://schemas.android.com/apk/res/android\">\n")
	for _, tag := range locale.AndroidTags(locales) {
		fmt.Fprintf(&b, "    <locale android:name=\"%s\"/>\n", tag)
	}
	b.WriteString("</locale-config>\n")
	return b.Bytes()
}

// ResourceName maps a key to a valid Android resource name: every character
// outside [A-Za-z0-9_] becomes '_', and a leading digit gets a '_' prefix.
func ResourceName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
