// Package apply projects a translation document back into per-locale
// .strings and .stringsdict files.
package apply

import (
	"fmt"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/langmeta"
	"github.com/minios-linux/i18nsync/model"
	"github.com/minios-linux/i18nsync/stringsdict"
	"github.com/minios-linux/i18nsync/stringsfile"
)

// File extensions of generated files.
const (
	ExtStrings     = ".strings"
	ExtStringsdict = ".stringsdict"
)

// HeaderKey identifies the header of one section in one locale.
type HeaderKey struct {
	Section string
	Locale  string
}

// File is one generated resource file.
type File struct {
	Section string
	Locale  string
	// Name is the file name inside the locale's .lproj directory.
	Name string
	Data []byte
}

// Result holds the files of one run and the diagnostics raised while
// building them.
type Result struct {
	Files  []File
	Report *diag.Report
}

// Run renders every section of doc for each of locales (the document's
// declared locales when empty). Keys are written in codepoint order; keys
// without a value for a locale are left out and reported. Headers are taken
// from the document, then from headers, then DefaultHeader.
func Run(doc *model.Document, locales []string, headers map[HeaderKey]string) Result {
	if len(locales) == 0 {
		locales = doc.Locales()
	}
	locales = model.BaseFirst(locales, doc.BaseLocale)
	res := Result{Report: &diag.Report{}}

	for _, sec := range doc.Sections() {
		keys := sec.SortedKeys()
		for _, l := range locales {
			pairs := make([]stringsfile.Pair, 0, len(keys))
			for _, k := range keys {
				v, ok := sec.Entry(k).Value(l)
				if !ok {
					res.Report.Add(&diag.MissingTranslation{Section: sec.Name, Key: k, Locale: l})
					continue
				}
				pairs = append(pairs, stringsfile.Pair{Key: k, Value: v})
			}
			res.Files = append(res.Files, File{
				Section: sec.Name,
				Locale:  l,
				Name:    sec.Name + ExtStrings,
				Data:    stringsfile.Serialize(header(sec, l, headers), pairs),
			})
		}
	}

	if doc.Plurals.Len() > 0 {
		keys := doc.Plurals.SortedKeys()
		for _, l := range locales {
			var entries []*stringsdict.Entry
			for _, k := range keys {
				forms, ok := doc.Plurals.Entry(k).Forms(l)
				if !ok {
					res.Report.Add(&diag.MissingTranslation{Section: model.SectionPlurals, Key: k, Locale: l})
					continue
				}
				if _, ok := forms.Forms[model.Other]; !ok {
					res.Report.Add(&diag.MissingPluralOther{Key: k, Locale: l})
				}
				entries = append(entries, stringsdict.NewEntry(k, forms))
			}
			if len(entries) == 0 {
				continue
			}
			res.Files = append(res.Files, File{
				Section: model.SectionLocalizable,
				Locale:  l,
				Name:    model.SectionLocalizable + ExtStringsdict,
				Data:    stringsdict.Serialize(entries),
			})
		}
	}
	return res
}

// header picks the header of one file. A header captured from the parsed
// file is kept even when empty; DefaultHeader is used only when nothing was
// captured or supplied.
func header(sec *model.Section, locale string, external map[HeaderKey]string) string {
	if h, ok := sec.Header(locale); ok {
		return h
	}
	if h := external[HeaderKey{Section: sec.Name, Locale: locale}]; h != "" {
		return h
	}
	return DefaultHeader(sec.Name, locale)
}

// DefaultHeader returns the header written to files that have none yet.
func DefaultHeader(section, locale string) string {
	return fmt.Sprintf("/* \n  %s%s\n  \n  %s\n*/", section, ExtStrings, langmeta.Resolve(locale).Name)
}
