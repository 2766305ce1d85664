package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/i18nsync/config"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLangHelpers(t *testing.T) {
	langs := []string{"en", "pt-BR", "zh-Hant"}
	if got := langColumnWidth(langs); got != len("zh-Hant") {
		t.Fatalf("langColumnWidth() = %d, want %d", got, len("zh-Hant"))
	}

	cell := langCell("pt-BR", 7)
	if !strings.Contains(cell, "🇧🇷") || !strings.HasSuffix(cell, "pt-BR  ") {
		t.Fatalf("langCell() = %q, want flag and padded locale", cell)
	}
}

func TestCleanLocales(t *testing.T) {
	got := cleanLocales([]string{" de ", "", "fr", "de"})
	want := []string{"de", "fr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cleanLocales() = %#v, want %#v", got, want)
	}
}

func TestStaleLocales(t *testing.T) {
	got := staleLocales([]string{"de", "fr", "pt-BR"}, []string{"en", "de", "pt-BR"})
	want := []string{"fr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("staleLocales() = %#v, want %#v", got, want)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("ok"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	if !fileExists(filePath) {
		t.Fatalf("fileExists(file) = false, want true")
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(directory) = true, want false")
	}
	if fileExists(filepath.Join(dir, "missing.txt")) {
		t.Fatalf("fileExists(missing) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// End-to-end commands
// ---------------------------------------------------------------------------

const enStrings = `/*
  Localizable.strings
  English
*/

"cancel" = "Cancel";
"items_count" = "Items for %@: %d";
"CFBundleDisplayName" = "Notes";
`

const deStrings = `/*
  Localizable.strings
  German
*/

"cancel" = "Abbrechen";
"items_count" = "%d Artikel für %@";
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func TestExtractApplyAndroid(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"Resources/en.lproj/Localizable.strings": enStrings,
		"Resources/de.lproj/Localizable.strings": deStrings,
	})
	proj, err := config.Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if err := runExtract(proj, false, false); err != nil {
		t.Fatalf("runExtract: %v", err)
	}
	doc := readFile(t, proj.Document)
	for _, want := range []string{
		"Localizable:\n",
		"  cancel:\n    en: Cancel\n    de: Abbrechen\n",
		"InfoPlist:\n  CFBundleDisplayName:\n    en: Notes\n",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	if err := runApply(proj, false); err != nil {
		t.Fatalf("runApply: %v", err)
	}
	de := readFile(t, filepath.Join(dir, "Resources", "de.lproj", "Localizable.strings"))
	if !strings.HasPrefix(de, "/*\n  Localizable.strings\n  German\n*/\n\n") {
		t.Errorf("de header not kept:\n%s", de)
	}
	if !strings.Contains(de, `"cancel" = "Abbrechen";`) {
		t.Errorf("de strings missing cancel:\n%s", de)
	}
	if strings.Contains(de, "CFBundleDisplayName") {
		t.Errorf("InfoPlist key written to Localizable:\n%s", de)
	}
	info := readFile(t, filepath.Join(dir, "Resources", "en.lproj", "InfoPlist.strings"))
	if !strings.Contains(info, `"CFBundleDisplayName" = "Notes";`) {
		t.Errorf("InfoPlist.strings missing routed key:\n%s", info)
	}

	if err := runApplyAndroid(proj, false); err != nil {
		t.Fatalf("runApplyAndroid: %v", err)
	}
	values := readFile(t, filepath.Join(proj.AndroidRes, "values-de", "strings.xml"))
	if !strings.Contains(values, `name="cancel">Abbrechen<`) {
		t.Errorf("values-de missing cancel:\n%s", values)
	}
	if !strings.Contains(values, `%2$d Artikel für %1$s`) {
		t.Errorf("values-de specifiers not reordered:\n%s", values)
	}
	if !fileExists(filepath.Join(proj.AndroidRes, "values", "strings.xml")) {
		t.Error("values/strings.xml not written")
	}
	if !fileExists(filepath.Join(proj.AndroidRes, "xml", "locales_config.xml")) {
		t.Error("xml/locales_config.xml not written")
	}
}

func TestExtractStrictAndDryRun(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"Resources/en.lproj/Localizable.strings": `"cancel" = "Cancel";` + "\n" + `"ok" = "OK";` + "\n",
		"Resources/de.lproj/Localizable.strings": `"cancel" = "Abbrechen";` + "\n",
	})
	proj, err := config.Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if err := runExtract(proj, true, true); !errors.Is(err, errIncomplete) {
		t.Fatalf("runExtract(strict) = %v, want errIncomplete", err)
	}
	if fileExists(proj.Document) {
		t.Fatal("dry run wrote the document")
	}

	if err := runExtract(proj, false, false); err != nil {
		t.Fatalf("runExtract: %v", err)
	}
	if !fileExists(proj.Document) {
		t.Fatal("document not written")
	}
}

func TestExtractWithoutResources(t *testing.T) {
	dir := t.TempDir()
	proj, err := config.Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if err := runExtract(proj, false, false); err == nil {
		t.Fatal("expected error without *.lproj directories")
	}
}

func TestApplyMissingDocument(t *testing.T) {
	dir := t.TempDir()
	proj, err := config.Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if err := runApply(proj, false); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestLocaleStats(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"translations.yaml": "Localizable:\n  cancel:\n    en: Cancel\n    de: Abbrechen\n  ok:\n    en: OK\n",
	})
	proj, err := config.Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	doc, err := loadDocument(proj)
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}

	stats := localeStats(doc)
	if got := stats["en"]; got.translated != 2 || got.total != 2 || got.percent() != 100 {
		t.Errorf("en stats = %+v", got)
	}
	if got := stats["de"]; got.translated != 1 || got.total != 2 || got.percent() != 50 {
		t.Errorf("de stats = %+v", got)
	}
	if err := runStatus(proj); err != nil {
		t.Fatalf("runStatus: %v", err)
	}
}
