package extract

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/model"
)

func stringsInput(section, locale, body string) Input {
	return Input{
		Section: section,
		Locale:  locale,
		Path:    locale + ".lproj/" + section + ".strings",
		Data:    []byte(body),
	}
}

const ruPlurals = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>files</key>
	<dict>
		<key>NSStringLocalizedFormatKey</key>
		<string>%#@files@</string>
		<key>files</key>
		<dict>
			<key>NSStringFormatSpecTypeKey</key>
			<string>NSStringPluralRuleType</string>
			<key>NSStringFormatValueTypeKey</key>
			<string>d</string>
			<key>one</key>
			<string>%d файл</string>
			<key>few</key>
			<string>%d файла</string>
			<key>many</key>
			<string>%d файлов</string>
			<key>other</key>
			<string>%d файла</string>
		</dict>
	</dict>
</dict>
</plist>
`

func TestRunCancel(t *testing.T) {
	t.Parallel()

	doc, report := Run([]Input{
		stringsInput("Localizable", "ru", `"cancel" = "Отмена";`),
		stringsInput("Localizable", "en", `"cancel" = "Cancel";`),
	}, nil, Options{BaseLocale: "en", Locales: []string{"en", "ru"}})

	if report.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", report.Items)
	}
	sec := doc.Section(model.SectionLocalizable)
	if sec == nil {
		t.Fatal("Localizable section missing")
	}
	e := sec.Entry("cancel")
	if v, _ := e.Value("en"); v != "Cancel" {
		t.Errorf("en = %q, want Cancel", v)
	}
	if v, _ := e.Value("ru"); v != "Отмена" {
		t.Errorf("ru = %q, want Отмена", v)
	}
}

func TestRunRoutesInfoPlistKeys(t *testing.T) {
	t.Parallel()

	doc, report := Run([]Input{
		stringsInput("Localizable", "en", "\"CFBundleDisplayName\" = \"Notes\";\n\"ok\" = \"OK\";\n"),
	}, nil, Options{BaseLocale: "en"})

	if report.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", report.Items)
	}
	if doc.Section(model.SectionLocalizable).Has("CFBundleDisplayName", "en") {
		t.Error("CFBundleDisplayName should not stay in Localizable")
	}
	info := doc.Section(model.SectionInfoPlist)
	if info == nil || !info.Has("CFBundleDisplayName", "en") {
		t.Fatal("CFBundleDisplayName not routed to InfoPlist")
	}
	var names []string
	for _, s := range doc.Sections() {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"Localizable", "InfoPlist"}, names); diff != "" {
		t.Errorf("section order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunNativeInfoPlistWins(t *testing.T) {
	t.Parallel()

	doc, report := Run([]Input{
		stringsInput("Localizable", "en", `"NSCameraUsageDescription" = "from Localizable";`),
		stringsInput("InfoPlist", "en", `"NSCameraUsageDescription" = "from InfoPlist";`),
	}, nil, Options{BaseLocale: "en"})

	v, _ := doc.Section(model.SectionInfoPlist).Entry("NSCameraUsageDescription").Value("en")
	if v != "from InfoPlist" {
		t.Errorf("value = %q, want the InfoPlist.strings one", v)
	}
	var dup *diag.DuplicateKey
	if len(report.Items) != 1 || !errors.As(report.Items[0], &dup) {
		t.Fatalf("expected one DuplicateKey, got %v", report.Items)
	}
	if dup.File != "en.lproj/Localizable.strings" {
		t.Errorf("duplicate reported for %q", dup.File)
	}
}

func TestRunMissingTranslations(t *testing.T) {
	t.Parallel()

	_, report := Run([]Input{
		stringsInput("Localizable", "en", "\"a\" = \"A\";\n\"b\" = \"B\";\n"),
		stringsInput("Localizable", "de", `"a" = "A";`),
	}, nil, Options{BaseLocale: "en", Locales: []string{"en", "de", "ru"}})

	var got []diag.MissingTranslation
	for _, m := range report.Missing() {
		got = append(got, *m)
	}
	want := []diag.MissingTranslation{
		{Section: "Localizable", Key: "a", Locale: "ru"},
		{Section: "Localizable", Key: "b", Locale: "de"},
		{Section: "Localizable", Key: "b", Locale: "ru"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestRunParseErrorContinues(t *testing.T) {
	t.Parallel()

	doc, report := Run([]Input{
		stringsInput("Localizable", "en", `"ok" = "OK";`),
		stringsInput("Localizable", "de", `"ok" = "OK"`),
	}, nil, Options{BaseLocale: "en"})

	var pe *diag.ParseError
	found := false
	for _, d := range report.Items {
		if errors.As(d, &pe) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ParseError, got %v", report.Items)
	}
	if pe.File != "de.lproj/Localizable.strings" {
		t.Errorf("ParseError.File = %q", pe.File)
	}
	if !doc.Section(model.SectionLocalizable).Has("ok", "en") {
		t.Error("valid file was not extracted")
	}
	// de is still a declared locale, so its keys are reported missing.
	if n := len(report.Missing()); n != 1 {
		t.Errorf("expected 1 missing translation, got %d", n)
	}
}

func TestRunEmptyKey(t *testing.T) {
	t.Parallel()

	doc, report := Run([]Input{
		stringsInput("Localizable", "en", "\"\" = \"x\";\n\"a\" = \"b\";\n"),
	}, nil, Options{BaseLocale: "en"})

	if diff := cmp.Diff([]string{"a"}, doc.Section(model.SectionLocalizable).Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	var pe *diag.ParseError
	n := 0
	for _, d := range report.Items {
		if errors.As(d, &pe) {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected 1 ParseError, got %v", report.Items)
	}
	if pe.Line != 1 || pe.Reason != "section Localizable: empty key" {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestRunHeaders(t *testing.T) {
	t.Parallel()

	doc, _ := Run([]Input{
		stringsInput("Localizable", "en", "/* English */\n\n\"a\" = \"A\";\n"),
	}, nil, Options{BaseLocale: "en"})

	h, ok := doc.Section(model.SectionLocalizable).Header("en")
	if !ok || h != "/* English */" {
		t.Errorf("header = %q, %v", h, ok)
	}
}

func TestRunPlurals(t *testing.T) {
	t.Parallel()

	doc, report := Run(nil, []Input{
		{Section: "Localizable", Locale: "ru", Path: "ru.lproj/Localizable.stringsdict", Data: []byte(ruPlurals)},
		{Section: "Localizable", Locale: "en", Path: "en.lproj/Localizable.stringsdict", Data: []byte("<plist><dict/></plist>")},
	}, Options{BaseLocale: "en"})

	e := doc.Plurals.Entry("files")
	if e == nil {
		t.Fatal("plural entry missing")
	}
	forms, ok := e.Forms("ru")
	if !ok {
		t.Fatal("ru forms missing")
	}
	cats := forms.Categories()
	if diff := cmp.Diff([]model.Category{model.One, model.Few, model.Many, model.Other}, cats); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	missing := report.Missing()
	if len(missing) != 1 || missing[0].Locale != "en" || missing[0].Section != model.SectionPlurals {
		t.Errorf("unexpected missing report: %v", report.Items)
	}
}

func TestAuditMissingOther(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("en")
	doc.Plurals.Set("items", "en", model.PluralForms{Forms: map[model.Category]string{model.One: "%d item"}})

	report := Audit(doc)
	var mo *diag.MissingPluralOther
	if report.Len() != 1 || !errors.As(report.Items[0], &mo) {
		t.Fatalf("expected MissingPluralOther, got %v", report.Items)
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		section, key, want string
	}{
		{"Localizable", "CFBundleDisplayName", "InfoPlist"},
		{"Localizable", "NSCameraUsageDescription", "InfoPlist"},
		{"Main", "ok", "Main"},
		{"Localizable", "Nsfoo", "Localizable"},
	}
	for _, tc := range tests {
		if got := Route(tc.section, tc.key); got != tc.want {
			t.Errorf("Route(%q, %q) = %q, want %q", tc.section, tc.key, got, tc.want)
		}
	}
}
