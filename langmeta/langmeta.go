// Package langmeta provides a shared language metadata registry
// (English names, native names and emoji flags) used for default .strings
// headers and CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the English name written into default file headers.
	Name   string
	Native string
	Flag   string
}

// Registry contains canonical language metadata keyed by iOS locale
// identifier. Locale variants are resolved in Resolve() via normalization
// and base fallback.
var Registry = map[string]Meta{
	"ar":      {Name: "Arabic", Native: "العربية", Flag: "🇸🇦"},
	"be":      {Name: "Belarusian", Native: "Беларуская", Flag: "🇧🇾"},
	"bg":      {Name: "Bulgarian", Native: "Български", Flag: "🇧🇬"},
	"ca":      {Name: "Catalan", Native: "Català", Flag: "🇪🇸"},
	"cs":      {Name: "Czech", Native: "Čeština", Flag: "🇨🇿"},
	"da":      {Name: "Danish", Native: "Dansk", Flag: "🇩🇰"},
	"de":      {Name: "German", Native: "Deutsch", Flag: "🇩🇪"},
	"el":      {Name: "Greek", Native: "Ελληνικά", Flag: "🇬🇷"},
	"en":      {Name: "English", Native: "English", Flag: "🇺🇸"},
	"en-AU":   {Name: "English (Australia)", Native: "English (Australia)", Flag: "🇦🇺"},
	"en-GB":   {Name: "English (UK)", Native: "English (UK)", Flag: "🇬🇧"},
	"es":      {Name: "Spanish", Native: "Español", Flag: "🇪🇸"},
	"es-419":  {Name: "Spanish (Latin America)", Native: "Español (Latinoamérica)", Flag: "🌎"},
	"es-MX":   {Name: "Spanish (Mexico)", Native: "Español (México)", Flag: "🇲🇽"},
	"fi":      {Name: "Finnish", Native: "Suomi", Flag: "🇫🇮"},
	"fr":      {Name: "French", Native: "Français", Flag: "🇫🇷"},
	"fr-CA":   {Name: "French (Canada)", Native: "Français (Canada)", Flag: "🇨🇦"},
	"he":      {Name: "Hebrew", Native: "עברית", Flag: "🇮🇱"},
	"hi":      {Name: "Hindi", Native: "हिन्दी", Flag: "🇮🇳"},
	"hr":      {Name: "Croatian", Native: "Hrvatski", Flag: "🇭🇷"},
	"hu":      {Name: "Hungarian", Native: "Magyar", Flag: "🇭🇺"},
	"id":      {Name: "Indonesian", Native: "Bahasa Indonesia", Flag: "🇮🇩"},
	"it":      {Name: "Italian", Native: "Italiano", Flag: "🇮🇹"},
	"ja":      {Name: "Japanese", Native: "日本語", Flag: "🇯🇵"},
	"kk":      {Name: "Kazakh", Native: "Қазақ тілі", Flag: "🇰🇿"},
	"ko":      {Name: "Korean", Native: "한국어", Flag: "🇰🇷"},
	"ms":      {Name: "Malay", Native: "Bahasa Melayu", Flag: "🇲🇾"},
	"nb":      {Name: "Norwegian Bokmål", Native: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":      {Name: "Dutch", Native: "Nederlands", Flag: "🇳🇱"},
	"pl":      {Name: "Polish", Native: "Polski", Flag: "🇵🇱"},
	"pt-BR":   {Name: "Portuguese (Brazil)", Native: "Português (Brasil)", Flag: "🇧🇷"},
	"pt-PT":   {Name: "Portuguese (Portugal)", Native: "Português (Portugal)", Flag: "🇵🇹"},
	"ro":      {Name: "Romanian", Native: "Română", Flag: "🇷🇴"},
	"ru":      {Name: "Russian", Native: "Русский", Flag: "🇷🇺"},
	"sk":      {Name: "Slovak", Native: "Slovenčina", Flag: "🇸🇰"},
	"sr":      {Name: "Serbian", Native: "Српски", Flag: "🇷🇸"},
	"sv":      {Name: "Swedish", Native: "Svenska", Flag: "🇸🇪"},
	"th":      {Name: "Thai", Native: "ไทย", Flag: "🇹🇭"},
	"tr":      {Name: "Turkish", Native: "Türkçe", Flag: "🇹🇷"},
	"uk":      {Name: "Ukrainian", Native: "Українська", Flag: "🇺🇦"},
	"vi":      {Name: "Vietnamese", Native: "Tiếng Việt", Flag: "🇻🇳"},
	"zh-Hans": {Name: "Chinese Simplified", Native: "简体中文", Flag: "🇨🇳"},
	"zh-Hant": {Name: "Chinese Traditional", Native: "繁體中文", Flag: "🇹🇼"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		switch len(parts[i]) {
		case 2:
			parts[i] = strings.ToUpper(parts[i])
		case 4:
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		}
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for locale identifiers,
// supporting variants like pt_BR, pt-BR, and locale fallbacks. Unknown
// codes get their English name from CLDR when it has one, otherwise the
// code itself.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	if tag, err := language.Parse(normalized); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return Meta{Name: name, Native: display.Self.Name(tag)}
		}
	}
	return Meta{Name: lang}
}
