package android

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/model"
)

func testDocument(t *testing.T) *model.Document {
	t.Helper()
	doc := model.NewDocument("en")
	loc, err := doc.AddSection(model.SectionLocalizable)
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	loc.Set("cancel", "en", "Cancel")
	loc.Set("cancel", "ru", "Отмена")
	loc.Set("wants", "en", "%@ wants %d items")
	loc.Set("wants", "de", "%d Artikel für %@")
	loc.Set("wants", "ru", "%@ хочет")
	loc.Set("welcome.title", "en", "Tom's \"place\"")

	doc.Plurals.Set("files_left", "en", model.PluralForms{
		Format: "%#@files@ left",
		Forms:  map[model.Category]string{model.One: "%ld file", model.Other: "%ld files"},
	})
	doc.Plurals.Set("files_left", "ru", model.PluralForms{
		Forms: map[model.Category]string{
			model.One:   "Остался %ld файл",
			model.Few:   "Осталось %ld файла",
			model.Many:  "Осталось %ld файлов",
			model.Other: "Осталось %ld файла",
		},
	})
	doc.SetLocales([]string{"en", "de", "ru", "zh-Hans"})
	return doc
}

func outputFile(t *testing.T, out *Output, path string) *File {
	t.Helper()
	for _, f := range out.Files {
		if f.Path == path {
			parsed, err := Parse(f.Data)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			return parsed
		}
	}
	t.Fatalf("%s not generated", path)
	return nil
}

func TestGenerate_Layout(t *testing.T) {
	t.Parallel()

	out, _ := Generate(testDocument(t), Options{})

	var paths []string
	for _, f := range out.Files {
		paths = append(paths, f.Path)
	}
	want := []string{
		"values/strings.xml",
		"values-de/strings.xml",
		"values-ru/strings.xml",
		"values-zh-rCN/strings.xml",
		"xml/locales_config.xml",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_ConvertsAndEscapes(t *testing.T) {
	t.Parallel()

	out, report := Generate(testDocument(t), Options{})

	en := outputFile(t, out, "values/strings.xml")
	if v, _ := valueOf(en, "wants"); v != "%1$s wants %2$d items" {
		t.Errorf("en wants = %q", v)
	}
	if v, _ := valueOf(en, "welcome_title"); v != `Tom's "place"` {
		t.Errorf("en welcome_title = %q", v)
	}

	de := outputFile(t, out, "values-de/strings.xml")
	if v, _ := valueOf(de, "wants"); v != "%2$d Artikel für %1$s" {
		t.Errorf("de wants = %q", v)
	}

	ru := outputFile(t, out, "values-ru/strings.xml")
	if _, ok := valueOf(ru, "wants"); ok {
		t.Error("mismatching ru value should be dropped")
	}
	if v, _ := valueOf(ru, "cancel"); v != "Отмена" {
		t.Errorf("ru cancel = %q", v)
	}

	var mm *diag.SpecifierMismatchError
	found := false
	for _, d := range report.Items {
		if errors.As(d, &mm) && mm.Locale == "ru" && mm.Key == "wants" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a specifier mismatch for ru, got %v", report.Items)
	}
}

func TestGenerate_Plurals(t *testing.T) {
	t.Parallel()

	out, _ := Generate(testDocument(t), Options{})

	en := outputFile(t, out, "values/strings.xml")
	p := entryOf(en, "files_left")
	if p == nil || p.Kind != KindPlurals {
		t.Fatalf("files_left plurals missing: %+v", p)
	}
	if diff := cmp.Diff([]string{"one", "other"}, p.PluralOrder); diff != "" {
		t.Errorf("en quantities mismatch (-want +got):\n%s", diff)
	}
	if p.Plurals["one"] != "%1$d file left" {
		t.Errorf("en one = %q", p.Plurals["one"])
	}

	ru := outputFile(t, out, "values-ru/strings.xml")
	rp := entryOf(ru, "files_left")
	if diff := cmp.Diff([]string{"one", "few", "many", "other"}, rp.PluralOrder); diff != "" {
		t.Errorf("ru quantities mismatch (-want +got):\n%s", diff)
	}
	if rp.Plurals["few"] != "Осталось %1$d файла" {
		t.Errorf("ru few = %q", rp.Plurals["few"])
	}
}

func TestGenerate_PluralsAgainstBase(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	doc.Plurals.Set("user_files", "en", model.PluralForms{
		Forms: map[model.Category]string{
			model.One:   "%@ has one file",
			model.Other: "%@ has %d files",
		},
	})
	doc.Plurals.Set("user_files", "de", model.PluralForms{
		Forms: map[model.Category]string{
			model.One:   "Eine Datei für %@",
			model.Other: "%d Dateien für %@",
		},
	})
	doc.Plurals.Set("user_files", "fr", model.PluralForms{
		Forms: map[model.Category]string{
			model.Other: "%d fichiers pour %d",
		},
	})
	doc.SetLocales([]string{"en", "de", "fr"})

	out, report := Generate(doc, Options{})

	de := outputFile(t, out, "values-de/strings.xml")
	p := entryOf(de, "user_files")
	if p == nil {
		t.Fatal("de user_files missing")
	}
	if got := p.Plurals["one"]; got != "Eine Datei für %1$s" {
		t.Errorf("de one = %q", got)
	}
	if got := p.Plurals["other"]; got != "%2$d Dateien für %1$s" {
		t.Errorf("de other = %q", got)
	}

	fr := outputFile(t, out, "values-fr/strings.xml")
	if entryOf(fr, "user_files") != nil {
		t.Error("fr user_files written despite mismatched specifiers")
	}
	var mm *diag.SpecifierMismatchError
	found := false
	for _, d := range report.Items {
		if errors.As(d, &mm) && mm.Key == "user_files" && mm.Locale == "fr" && mm.BaseLocale == "en" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a specifier mismatch for fr, got %v", report.Items)
	}
}

func TestGenerate_LocalesConfig(t *testing.T) {
	t.Parallel()

	out, _ := Generate(testDocument(t), Options{})
	var data string
	for _, f := range out.Files {
		if f.Path == "xml/locales_config.xml" {
			data = string(f.Data)
		}
	}
	want := `<?xml version="1.0" encoding="utf-8"?>
<locale-config xmlns:android="http://schemas.android.com/apk/res/android">
    <locale android:name="de"/>
    <locale android:name="en"/>
    <locale android:name="ru"/>
    <locale android:name="zh-CN"/>
</locale-config>
`
	if data != want {
		t.Errorf("locales_config mismatch:\n got %s\nwant %s", data, want)
	}
}

func TestGenerate_PreservesNonTranslatable(t *testing.T) {
	t.Parallel()

	existing, err := Parse([]byte(`<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name" translatable="false">Notes</string>
    <string name="cancel" translatable="false">X</string>
    <string name="stale">Old</string>
</resources>
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, report := Generate(testDocument(t), Options{Existing: existing})

	var data string
	for _, f := range out.Files {
		if f.Path == "values/strings.xml" {
			data = string(f.Data)
		}
	}
	if !strings.Contains(data, `<string name="app_name" translatable="false">Notes</string>`) {
		t.Errorf("translatable=false resource not kept:\n%s", data)
	}
	if strings.Contains(data, "stale") {
		t.Errorf("translatable resource from the old file should not survive:\n%s", data)
	}

	var nc *diag.NameCollision
	found := false
	for _, d := range report.Items {
		if errors.As(d, &nc) && nc.Key == "cancel" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a name collision for cancel, got %v", report.Items)
	}
}

func TestGenerate_NameCollision(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	sec, _ := doc.AddSection(model.SectionLocalizable)
	sec.Set("a.b", "en", "first")
	sec.Set("a-b", "en", "second")

	out, report := Generate(doc, Options{})
	en := outputFile(t, out, "values/strings.xml")
	// "a-b" sorts before "a.b" and keeps the name.
	if v, _ := valueOf(en, "a_b"); v != "second" {
		t.Errorf("a_b = %q", v)
	}
	if report.Len() != 1 {
		t.Errorf("expected one collision, got %v", report.Items)
	}
}

func TestResourceName(t *testing.T) {
	tests := []struct {
		key, want string
	}{
		{"cancel", "cancel"},
		{"welcome.title", "welcome_title"},
		{"Hello World!", "Hello_World_"},
		{"3d_touch", "_3d_touch"},
		{"ключ", "____"},
	}
	for _, tc := range tests {
		if got := ResourceName(tc.key); got != tc.want {
			t.Errorf("ResourceName(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}
