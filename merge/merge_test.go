package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/i18nsync/model"
)

func TestDiffAddedRemovedChanged(t *testing.T) {
	previous := model.NewDocument("en")
	ps, _ := previous.AddSection(model.SectionLocalizable)
	ps.Set("keep", "en", "Keep")
	ps.Set("obsolete", "en", "Gone")
	ps.Set("edit", "en", "Old")

	current := model.NewDocument("en")
	cs, _ := current.AddSection(model.SectionLocalizable)
	cs.Set("keep", "en", "Keep")
	cs.Set("edit", "en", "New")
	cs.Set("edit", "ru", "Новый")
	cs.Set("new", "en", "Fresh")

	got := Diff(previous, current)
	want := []Change{
		{Kind: Changed, Section: "Localizable", Key: "edit", Locale: "en", Old: "Old", New: "New"},
		{Kind: Added, Section: "Localizable", Key: "edit", Locale: "ru", New: "Новый"},
		{Kind: Added, Section: "Localizable", Key: "new", Locale: "en", New: "Fresh"},
		{Kind: Removed, Section: "Localizable", Key: "obsolete", Locale: "en", Old: "Gone"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
	if s := Summarize(got); s != (Summary{Added: 2, Removed: 1, Changed: 1}) {
		t.Errorf("Summarize = %+v", s)
	}
}

func TestDiffNilPrevious(t *testing.T) {
	current := model.NewDocument("en")
	sec, _ := current.AddSection(model.SectionInfoPlist)
	sec.Set("CFBundleName", "en", "Notes")

	got := Diff(nil, current)
	if len(got) != 1 || got[0].Kind != Added || got[0].Section != "InfoPlist" {
		t.Errorf("unexpected changes: %v", got)
	}
}

func TestDiffPlurals(t *testing.T) {
	previous := model.NewDocument("en")
	previous.Plurals.Set("files", "en", model.PluralForms{Forms: map[model.Category]string{model.Other: "%d files"}})

	current := model.NewDocument("en")
	current.Plurals.Set("files", "en", model.PluralForms{Forms: map[model.Category]string{
		model.One:   "%d file",
		model.Other: "%d files",
	}})

	got := Diff(previous, current)
	want := []Change{{
		Kind: Changed, Section: "Plurals", Key: "files", Locale: "en",
		Old: "other=%d files",
		New: "one=%d file; other=%d files",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIdentical(t *testing.T) {
	doc := model.NewDocument("en")
	sec, _ := doc.AddSection(model.SectionLocalizable)
	sec.Set("ok", "en", "OK")
	if got := Diff(doc, doc); len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}
}

func TestChangeString(t *testing.T) {
	c := Change{Kind: Changed, Section: "Localizable", Key: "ok", Locale: "de", Old: "Ok", New: "OK"}
	if got, want := c.String(), `~ Localizable.ok[de] "Ok" -> "OK"`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
