// Package extract builds a translation document from the .strings and
// .stringsdict files of every locale.
//
// Extraction always completes: files that fail to parse are reported and
// skipped, missing translations are reported as advisory diagnostics.
package extract

import (
	"errors"
	"sort"
	"strings"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/model"
	"github.com/minios-linux/i18nsync/stringsdict"
	"github.com/minios-linux/i18nsync/stringsfile"
)

// Input is one resource file read by the caller.
type Input struct {
	// Section is derived from the file name, e.g. "Localizable".
	Section string
	// Locale is the iOS locale identifier, e.g. "en" or "pt-BR".
	Locale string
	// Path names the file in diagnostics.
	Path string
	Data []byte
}

// Options configures a run.
type Options struct {
	// BaseLocale is recorded on the document and parsed first.
	BaseLocale string
	// Locales declares the locale set. When empty it is the union of the
	// input locales.
	Locales []string
}

// Route returns the section a key belongs to. Keys with the NS or CF prefix
// are Info.plist keys and always go to InfoPlist.
func Route(section, key string) string {
	if strings.HasPrefix(key, "NS") || strings.HasPrefix(key, "CF") {
		return model.SectionInfoPlist
	}
	return section
}

// routed is a value read from one file but owned by another section.
type routed struct {
	in    Input
	key   string
	value string
	line  int
}

// Run parses strings and plurals into a new document.
func Run(stringsInputs, pluralInputs []Input, opts Options) (*model.Document, *diag.Report) {
	doc := model.NewDocument(opts.BaseLocale)
	report := &diag.Report{}

	var pending []routed
	for _, in := range ordered(stringsInputs, opts.BaseLocale) {
		f, err := stringsfile.Parse(in.Data)
		if err != nil {
			report.Add(parseError(in, err))
			continue
		}
		sec, err := doc.AddSection(in.Section)
		if err != nil {
			report.Add(&diag.ParseError{File: in.Path, Reason: err.Error()})
			continue
		}
		sec.SetHeader(in.Locale, f.Header)
		for _, d := range f.Duplicates {
			d.File, d.Section, d.Locale = in.Path, in.Section, in.Locale
			report.Add(d)
		}
		for _, key := range f.Keys() {
			value, _ := f.Get(key)
			if Route(in.Section, key) != in.Section {
				pending = append(pending, routed{in: in, key: key, value: value, line: f.Line(key)})
				continue
			}
			replaced, err := sec.Set(key, in.Locale, value)
			if err != nil {
				report.Add(&diag.ParseError{File: in.Path, Line: f.Line(key), Reason: err.Error()})
				continue
			}
			if replaced {
				report.Add(&diag.DuplicateKey{File: in.Path, Section: in.Section, Key: key, Locale: in.Locale, Line: f.Line(key)})
			}
		}
	}

	// Routed keys are applied after every native file so that a value read
	// from InfoPlist.strings itself wins.
	for _, r := range pending {
		sec, _ := doc.AddSection(model.SectionInfoPlist)
		if sec.Has(r.key, r.in.Locale) {
			report.Add(&diag.DuplicateKey{File: r.in.Path, Section: model.SectionInfoPlist, Key: r.key, Locale: r.in.Locale, Line: r.line})
			continue
		}
		if _, err := sec.Set(r.key, r.in.Locale, r.value); err != nil {
			report.Add(&diag.ParseError{File: r.in.Path, Line: r.line, Reason: err.Error()})
		}
	}

	for _, in := range ordered(pluralInputs, opts.BaseLocale) {
		f, err := stringsdict.Parse(in.Data)
		if err != nil {
			report.Add(parseError(in, err))
			continue
		}
		for _, e := range f.Entries {
			replaced, err := doc.Plurals.Set(e.Key, in.Locale, e.PluralForms())
			if err != nil {
				report.Add(&diag.ParseError{File: in.Path, Line: e.Line, Reason: err.Error()})
				continue
			}
			if replaced {
				report.Add(&diag.DuplicateKey{File: in.Path, Section: model.SectionPlurals, Key: e.Key, Locale: in.Locale, Line: e.Line})
			}
		}
	}

	doc.SortSections()
	if len(opts.Locales) > 0 {
		doc.SetLocales(opts.Locales)
	} else {
		var observed []string
		for _, in := range stringsInputs {
			observed = append(observed, in.Locale)
		}
		for _, in := range pluralInputs {
			observed = append(observed, in.Locale)
		}
		doc.SetLocales(observed)
	}

	report.Merge(Audit(doc))
	return doc, report
}

// Audit reports every (section, key, locale) without a value for one of the
// document's declared locales, and every plural form lacking "other".
// Sections are visited in document order, keys in codepoint order.
func Audit(doc *model.Document) *diag.Report {
	report := &diag.Report{}
	locales := doc.Locales()

	for _, sec := range doc.Sections() {
		for _, key := range sec.SortedKeys() {
			for _, l := range locales {
				if !sec.Has(key, l) {
					report.Add(&diag.MissingTranslation{Section: sec.Name, Key: key, Locale: l})
				}
			}
		}
	}

	for _, key := range doc.Plurals.SortedKeys() {
		e := doc.Plurals.Entry(key)
		for _, l := range locales {
			forms, ok := e.Forms(l)
			if !ok {
				report.Add(&diag.MissingTranslation{Section: model.SectionPlurals, Key: key, Locale: l})
				continue
			}
			if _, ok := forms.Forms[model.Other]; !ok {
				report.Add(&diag.MissingPluralOther{Key: key, Locale: l})
			}
		}
	}
	return report
}

// ordered returns inputs sorted by section, base locale first, then locale.
func ordered(inputs []Input, base string) []Input {
	out := append([]Input(nil), inputs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		if (a.Locale == base) != (b.Locale == base) {
			return a.Locale == base
		}
		return a.Locale < b.Locale
	})
	return out
}

func parseError(in Input, err error) diag.Diagnostic {
	var pe *diag.ParseError
	if errors.As(err, &pe) {
		pe.File = in.Path
		return pe
	}
	return &diag.ParseError{File: in.Path, Reason: err.Error()}
}
