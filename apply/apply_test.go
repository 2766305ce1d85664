package apply

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/i18nsync/extract"
	"github.com/minios-linux/i18nsync/model"
	"github.com/minios-linux/i18nsync/stringsdict"
	"github.com/minios-linux/i18nsync/stringsfile"
)

func findFile(t *testing.T, files []File, name, locale string) File {
	t.Helper()
	for _, f := range files {
		if f.Name == name && f.Locale == locale {
			return f
		}
	}
	t.Fatalf("no %s for %s", name, locale)
	return File{}
}

func TestRunCancelRoundTrip(t *testing.T) {
	t.Parallel()

	doc, report := extract.Run([]extract.Input{
		{Section: "Localizable", Locale: "en", Data: []byte(`"cancel" = "Cancel";`)},
		{Section: "Localizable", Locale: "ru", Data: []byte(`"cancel" = "Отмена";`)},
	}, nil, extract.Options{BaseLocale: "en", Locales: []string{"en", "ru"}})
	if report.Len() != 0 {
		t.Fatalf("extract diagnostics: %v", report.Items)
	}

	res := Run(doc, nil, nil)
	if res.Report.Len() != 0 {
		t.Fatalf("apply diagnostics: %v", res.Report.Items)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(res.Files))
	}
	want := map[string]string{
		"en": "\"cancel\" = \"Cancel\";\n",
		"ru": "\"cancel\" = \"Отмена\";\n",
	}
	for _, f := range res.Files {
		if string(f.Data) != want[f.Locale] {
			t.Errorf("%s: output = %q, want %q", f.Locale, f.Data, want[f.Locale])
		}
	}
}

func TestRunKeepsEmptyCapturedHeader(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	sec, _ := doc.AddSection(model.SectionLocalizable)
	sec.Set("ok", "en", "OK")
	sec.SetHeader("en", "")

	res := Run(doc, []string{"en"}, map[HeaderKey]string{
		{Section: "Localizable", Locale: "en"}: "/* external */",
	})
	f := findFile(t, res.Files, "Localizable.strings", "en")
	if want := "\"ok\" = \"OK\";\n"; string(f.Data) != want {
		t.Errorf("output = %q, want %q", f.Data, want)
	}
}

func TestRunSortsKeysAndKeepsHeader(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	sec, _ := doc.AddSection(model.SectionLocalizable)
	for _, k := range []string{"zeta", "Alpha", "beta"} {
		sec.Set(k, "en", strings.ToUpper(k))
	}
	sec.SetHeader("en", "// Localizable")

	res := Run(doc, []string{"en"}, nil)
	f := findFile(t, res.Files, "Localizable.strings", "en")
	want := "// Localizable\n\n\"Alpha\" = \"ALPHA\";\n\"beta\" = \"BETA\";\n\"zeta\" = \"ZETA\";\n"
	if string(f.Data) != want {
		t.Errorf("output mismatch:\n got %q\nwant %q", f.Data, want)
	}
}

func TestRunHeaderPrecedence(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	sec, _ := doc.AddSection(model.SectionInfoPlist)
	sec.Set("CFBundleName", "en", "Notes")
	sec.Set("CFBundleName", "de", "Notizen")
	sec.SetHeader("en", "/* from document */")

	res := Run(doc, nil, map[HeaderKey]string{
		{Section: "InfoPlist", Locale: "en"}: "/* external en */",
		{Section: "InfoPlist", Locale: "de"}: "/* external de */",
	})
	en := findFile(t, res.Files, "InfoPlist.strings", "en")
	de := findFile(t, res.Files, "InfoPlist.strings", "de")
	if h := stringsfile.ParseHeader(en.Data); h != "/* from document */" {
		t.Errorf("en header = %q", h)
	}
	if h := stringsfile.ParseHeader(de.Data); h != "/* external de */" {
		t.Errorf("de header = %q", h)
	}
}

func TestRunDefaultHeaderAndHeaderOnly(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	sec, _ := doc.AddSection(model.SectionLocalizable)
	sec.Set("ok", "en", "OK")

	res := Run(doc, []string{"en", "ru"}, nil)
	ru := findFile(t, res.Files, "Localizable.strings", "ru")
	want := "/* \n  Localizable.strings\n  \n  Russian\n*/\n"
	if string(ru.Data) != want {
		t.Errorf("ru output = %q, want %q", ru.Data, want)
	}

	missing := res.Report.Missing()
	if len(missing) != 1 || missing[0].Key != "ok" || missing[0].Locale != "ru" {
		t.Errorf("unexpected missing: %v", res.Report.Items)
	}
}

func TestRunWritesStringsdict(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	doc.Plurals.Set("files_left", "en", model.PluralForms{
		Format: "You have %#@files@ left",
		Forms:  map[model.Category]string{model.One: "%d file", model.Other: "%d files"},
	})
	doc.Plurals.Set("apples", "en", model.PluralForms{
		Forms: map[model.Category]string{model.Other: "%d apples"},
	})

	res := Run(doc, []string{"en"}, nil)
	f := findFile(t, res.Files, "Localizable.stringsdict", "en")

	parsed, err := stringsdict.Parse(f.Data)
	if err != nil {
		t.Fatalf("parse generated stringsdict: %v", err)
	}
	if diff := cmp.Diff([]string{"apples", "files_left"}, parsed.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	got, _ := parsed.Get("files_left").Resolve(model.One)
	if got != "You have %d file left" {
		t.Errorf("Resolve(one) = %q", got)
	}
}

func TestDefaultHeader(t *testing.T) {
	t.Parallel()

	got := DefaultHeader("InfoPlist", "pt-BR")
	want := "/* \n  InfoPlist.strings\n  \n  Portuguese (Brazil)\n*/"
	if got != want {
		t.Errorf("DefaultHeader = %q, want %q", got, want)
	}
}
