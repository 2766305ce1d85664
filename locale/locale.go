// Package locale maps iOS locale identifiers to Android resource
// qualifiers and back.
//
// Most identifiers follow a mechanical rule (lowercase language, "-r" plus
// uppercase region), but script subtags and a few region variants need
// explicit table entries: Android has no script qualifier in the classic
// values-xx-rYY form, so zh-Hans is published as zh-rCN and the tags that
// need the "b+" form are pinned.
package locale

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Pair is one explicit iOS ↔ Android mapping.
type Pair struct {
	IOS     string
	Android string
}

// Table lists the mappings that do not follow the default transform, plus
// the common region variants so that they are pinned explicitly.
var Table = []Pair{
	{IOS: "zh-Hans", Android: "zh-rCN"},
	{IOS: "zh-Hant", Android: "zh-rTW"},
	{IOS: "zh-Hant-HK", Android: "zh-rHK"},
	{IOS: "zh-HK", Android: "zh-rHK"},
	{IOS: "pt-BR", Android: "pt-rBR"},
	{IOS: "pt-PT", Android: "pt-rPT"},
	{IOS: "en-GB", Android: "en-rGB"},
	{IOS: "en-AU", Android: "en-rAU"},
	{IOS: "es-MX", Android: "es-rMX"},
	{IOS: "es-419", Android: "b+es+419"},
	{IOS: "fr-CA", Android: "fr-rCA"},
	{IOS: "sr-Latn", Android: "b+sr+Latn"},
	{IOS: "sr-Cyrl", Android: "b+sr+Cyrl"},
	{IOS: "nb", Android: "nb"},
}

var (
	toAndroid = make(map[string]string, len(Table))
	toIOS     = make(map[string]string, len(Table))
)

func init() {
	for _, p := range Table {
		toAndroid[strings.ToLower(p.IOS)] = p.Android
		// First pair wins for the reverse direction (zh-rHK -> zh-Hant-HK).
		if _, ok := toIOS[strings.ToLower(p.Android)]; !ok {
			toIOS[strings.ToLower(p.Android)] = p.IOS
		}
	}
}

// ToAndroid returns the Android resource qualifier for an iOS locale
// identifier. It never fails: identifiers missing from Table use the
// default transform.
func ToAndroid(ios string) string {
	id := normalize(ios)
	if q, ok := toAndroid[strings.ToLower(id)]; ok {
		return q
	}
	return defaultQualifier(id)
}

// ToIOS returns the iOS identifier for an Android qualifier (with or
// without the "values-" prefix).
func ToIOS(qualifier string) string {
	q := strings.TrimPrefix(strings.TrimSpace(qualifier), "values-")
	if id, ok := toIOS[strings.ToLower(q)]; ok {
		return id
	}
	if strings.HasPrefix(q, "b+") {
		return strings.Join(strings.Split(q[2:], "+"), "-")
	}
	if idx := strings.Index(q, "-r"); idx >= 0 {
		return strings.ToLower(q[:idx]) + "-" + strings.ToUpper(q[idx+2:])
	}
	return strings.ToLower(q)
}

// ToAndroidTag returns the BCP-47 spelling of the Android qualifier for
// ios, as used in locales_config.xml: zh-Hans -> zh-rCN -> "zh-CN".
func ToAndroidTag(ios string) string {
	q := ToAndroid(ios)
	if strings.HasPrefix(q, "b+") {
		return strings.Join(strings.Split(q[2:], "+"), "-")
	}
	return strings.Replace(q, "-r", "-", 1)
}

// ValuesDir returns the Android values directory for ios. The base locale
// lives in the unqualified "values" directory.
func ValuesDir(ios, base string) string {
	if ios == base {
		return "values"
	}
	return "values-" + ToAndroid(ios)
}

// AndroidTags maps, de-duplicates and sorts a locale list for
// locales_config.xml.
func AndroidTags(locales []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range locales {
		tag := ToAndroidTag(l)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func normalize(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "_", "-")
}

// defaultQualifier applies the mechanical transform: lowercase language,
// then "-r" and the uppercase region when a region subtag is present. A
// script subtag is dropped; tags that need Android's "b+" form are listed in
// Table.
func defaultQualifier(id string) string {
	if id == "" {
		return ""
	}
	tag, err := language.Raw.Parse(id)
	if err != nil {
		return fallbackQualifier(id)
	}
	base, _, region := tag.Raw()
	lang := strings.ToLower(base.String())
	if region != (language.Region{}) {
		return lang + "-r" + strings.ToUpper(region.String())
	}
	return lang
}

// fallbackQualifier handles identifiers that are not valid BCP-47 by
// splitting on the first separator.
func fallbackQualifier(id string) string {
	parts := strings.SplitN(id, "-", 2)
	lang := strings.ToLower(parts[0])
	if len(parts) == 2 && parts[1] != "" {
		return lang + "-r" + strings.ToUpper(parts[1])
	}
	return lang
}
