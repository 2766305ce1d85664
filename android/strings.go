// Package android reads and writes Android strings.xml resource files and
// generates the Android resource tree from a translation document.
//
// Supported resource types:
//   - <string>        simple key/value string
//   - <string-array>  ordered list of strings
//   - <plurals>       quantity-keyed plural forms (zero/one/two/few/many/other)
//
// Resources with translatable="false" are only ever written to the default
// values/strings.xml.
package android

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/minios-linux/i18nsync/locale"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// EntryKind identifies the type of a resource entry.
type EntryKind int

const (
	// KindString is a plain <string> resource.
	KindString EntryKind = iota
	// KindStringArray is a <string-array> resource.
	KindStringArray
	// KindPlurals is a <plurals> resource.
	KindPlurals
	// KindComment is an XML comment (not a resource).
	KindComment
)

// Entry represents a single item in a strings.xml file.
// It may be a string resource, a string-array, a plurals block, or a comment.
type Entry struct {
	// Kind is the resource type.
	Kind EntryKind

	// --- shared fields (KindString / KindStringArray / KindPlurals) ---

	// Name is the resource name (attribute name="…"). Empty for comments.
	Name string
	// Translatable reflects the translatable="…" attribute. Defaults to true.
	Translatable bool

	// --- KindString ---

	// Value is the text with Android escapes decoded. Values that carry
	// inline markup (Markup) keep their source text, apart from \'.
	Value string
	// UseCDATA indicates the source value was wrapped in <![CDATA[...]]>.
	UseCDATA bool
	// Markup is set when the value contains inline elements such as
	// <xliff:g>; it is written back without XML escaping.
	Markup bool

	// --- KindStringArray ---

	// Items holds the <item> values in document order.
	Items []string
	// ItemCDATA mirrors Items: true when the corresponding <item> used CDATA.
	ItemCDATA []bool

	// --- KindPlurals ---

	// Plurals maps quantity keyword (zero/one/two/few/many/other) to text.
	Plurals map[string]string
	// PluralOrder preserves the order of quantity keywords.
	PluralOrder []string
	// PluralCDATA mirrors PluralOrder: true when the corresponding <item> used CDATA.
	PluralCDATA map[string]bool

	// --- KindComment ---

	// Comment is the raw comment text (without <!-- -->). Empty for resources.
	Comment string
}

// IsComment reports whether this entry is an XML comment.
func (e *Entry) IsComment() bool { return e.Kind == KindComment }

// IsTranslatable reports whether this resource should be translated.
func (e *Entry) IsTranslatable() bool {
	return e.Kind != KindComment && e.Translatable
}

// File represents a parsed Android strings.xml file.
type File struct {
	// Entries in document order (resources + comments).
	Entries []*Entry
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses an Android strings.xml file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// cdataSet holds resource names (and array/plural item paths) that used CDATA
// in the source XML. Built by scanCDATA before XML parsing.
type cdataSet map[string]bool

// cdataKey returns a lookup key for a resource or sub-item.
//
//	string:      "name"
//	string-array item: "name[0]", "name[1]", …
//	plurals item:      "name#one", "name#other", …
func cdataKey(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + suffix
}

// scanCDATA scans raw XML bytes for CDATA sections and records which resource
// elements contained them. Go's encoding/xml decoder transparently unwraps
// CDATA into CharData, so they are detected beforehand.
var (
	reStringCDATA     = regexp.MustCompile(`<string\s[^>]*name="([^"]+)"[^>]*>\s*<!\[CDATA\[`)
	reArrayBlock      = regexp.MustCompile(`(?s)<string-array\s[^>]*name="([^"]+)"[^>]*>(.*?)</string-array>`)
	reItem            = regexp.MustCompile(`(?s)<item[^>]*>(\s*<!\[CDATA\[)?`)
	rePluralsBlock    = regexp.MustCompile(`(?s)<plurals\s[^>]*name="([^"]+)"[^>]*>(.*?)</plurals>`)
	rePluralItemCDATA = regexp.MustCompile(`(?s)<item\s[^>]*quantity="([^"]+)"[^>]*>\s*<!\[CDATA\[`)
)

func scanCDATA(data []byte) cdataSet {
	result := cdataSet{}
	s := string(data)

	for _, m := range reStringCDATA.FindAllStringSubmatch(s, -1) {
		result[m[1]] = true
	}

	for _, m := range reArrayBlock.FindAllStringSubmatch(s, -1) {
		name, block := m[1], m[2]
		for i, item := range reItem.FindAllString(block, -1) {
			if strings.Contains(item, "<![CDATA[") {
				result[cdataKey(name, fmt.Sprintf("[%d]", i))] = true
			}
		}
	}

	for _, m := range rePluralsBlock.FindAllStringSubmatch(s, -1) {
		name, block := m[1], m[2]
		for _, pm := range rePluralItemCDATA.FindAllStringSubmatch(block, -1) {
			result[cdataKey(name, "#"+pm[1])] = true
		}
	}

	return result
}

// Parse parses Android strings.xml data.
func Parse(data []byte) (*File, error) {
	f := NewFile()

	cdata := scanCDATA(data)

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	inResources := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break // EOF or error
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "resources" {
				inResources = true
				continue
			}
			if !inResources {
				continue
			}

			switch t.Name.Local {
			case "string":
				e, err := parseStringElement(dec, t, cdata)
				if err != nil {
					return nil, err
				}
				f.Add(e)

			case "string-array":
				e, err := parseStringArrayElement(dec, t, cdata)
				if err != nil {
					return nil, err
				}
				f.Add(e)

			case "plurals":
				e, err := parsePluralsElement(dec, t, cdata)
				if err != nil {
					return nil, err
				}
				f.Add(e)

			default:
				dec.Skip()
			}

		case xml.Comment:
			if inResources {
				comment := strings.TrimSpace(string(t))
				if comment != "" {
					f.Entries = append(f.Entries, &Entry{
						Kind:    KindComment,
						Comment: comment,
					})
				}
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}

	return f, nil
}

// Add appends an entry.
func (f *File) Add(e *Entry) {
	f.Entries = append(f.Entries, e)
}

// parseAttrs extracts name and translatable from a start element.
func parseAttrs(elem xml.StartElement) (name string, translatable bool) {
	translatable = true // default
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "name":
			name = attr.Value
		case "translatable":
			if strings.EqualFold(attr.Value, "false") {
				translatable = false
			}
		}
	}
	return
}

// parseStringElement parses a <string> element already opened.
func parseStringElement(dec *xml.Decoder, elem xml.StartElement, cdata cdataSet) (*Entry, error) {
	name, translatable := parseAttrs(elem)
	value, markup, err := readText(dec)
	if err != nil {
		return nil, fmt.Errorf("reading <string name=%q>: %w", name, err)
	}
	return &Entry{
		Kind:         KindString,
		Name:         name,
		Translatable: translatable,
		Value:        value,
		UseCDATA:     cdata[name],
		Markup:       markup,
	}, nil
}

// parseStringArrayElement parses a <string-array> element already opened.
func parseStringArrayElement(dec *xml.Decoder, elem xml.StartElement, cdata cdataSet) (*Entry, error) {
	name, translatable := parseAttrs(elem)
	e := &Entry{
		Kind:         KindStringArray,
		Name:         name,
		Translatable: translatable,
	}

	depth := 1
	itemIdx := 0
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <string-array name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				value, _, err := readText(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <item> in <string-array name=%q>: %w", name, err)
				}
				e.Items = append(e.Items, value)
				e.ItemCDATA = append(e.ItemCDATA, cdata[cdataKey(name, fmt.Sprintf("[%d]", itemIdx))])
				itemIdx++
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// parsePluralsElement parses a <plurals> element already opened.
func parsePluralsElement(dec *xml.Decoder, elem xml.StartElement, cdata cdataSet) (*Entry, error) {
	name, translatable := parseAttrs(elem)
	e := &Entry{
		Kind:         KindPlurals,
		Name:         name,
		Translatable: translatable,
		Plurals:      make(map[string]string),
		PluralCDATA:  make(map[string]bool),
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <plurals name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				var quantity string
				for _, attr := range t.Attr {
					if attr.Name.Local == "quantity" {
						quantity = attr.Value
						break
					}
				}
				value, _, err := readText(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <item quantity=%q> in <plurals name=%q>: %w", quantity, name, err)
				}
				if quantity != "" {
					e.Plurals[quantity] = value
					e.PluralOrder = append(e.PluralOrder, quantity)
					e.PluralCDATA[quantity] = cdata[cdataKey(name, "#"+quantity)]
				}
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// readText reads an element's content. Plain text has its Android escapes
// decoded; content with inline elements is returned as source text.
func readText(dec *xml.Decoder) (string, bool, error) {
	var b strings.Builder
	markup, err := readElementContent(dec, &b)
	if err != nil {
		return "", false, err
	}
	if markup {
		return b.String(), true, nil
	}
	return Unescape(b.String()), false, nil
}

// readElementContent reads the full inner content of an XML element until its
// matching close tag, reconstructing inline child elements (e.g., <xliff:g>)
// as raw text. It reports whether any child element was seen. Apostrophes
// are unescaped (\' → ') in both cases.
func readElementContent(dec *xml.Decoder, b *strings.Builder) (markup bool, err error) {
	depth := 1
	for depth > 0 {
		var tok xml.Token
		tok, err = dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.WriteString(unescapeAndroidApostrophe(string(t)))
		case xml.Comment:
			// skip XML comments inside elements
		case xml.ProcInst:
			// skip processing instructions
		case xml.StartElement:
			depth++
			markup = true
			b.WriteString("<")
			if t.Name.Space != "" {
				b.WriteString(t.Name.Space)
				b.WriteString(":")
			}
			b.WriteString(t.Name.Local)
			for _, attr := range t.Attr {
				b.WriteString(fmt.Sprintf(` %s="%s"`, attr.Name.Local, attr.Value))
			}
			b.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</")
				if t.Name.Space != "" {
					b.WriteString(t.Name.Space)
					b.WriteString(":")
				}
				b.WriteString(t.Name.Local)
				b.WriteString(">")
			}
		}
	}
	return
}

// unescapeAndroidApostrophe converts Android-escaped apostrophes (\') to
// plain apostrophes (').
func unescapeAndroidApostrophe(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// NonTranslatable returns the resources marked translatable="false".
func (f *File) NonTranslatable() []*Entry {
	var out []*Entry
	for _, e := range f.Entries {
		if e.Kind != KindComment && !e.Translatable {
			out = append(out, e)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal produces the XML for the default values/strings.xml, including
// resources marked translatable="false".
func (f *File) Marshal() []byte {
	return f.marshal(true)
}

// MarshalTarget produces the XML for a translated locale file, omitting
// resources marked translatable="false" (they live only in the source file).
func (f *File) MarshalTarget() []byte {
	return f.marshal(false)
}

func (f *File) marshal(includeNonTranslatable bool) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources>\n")

	for _, e := range f.Entries {
		if !includeNonTranslatable && !e.IsTranslatable() && e.Kind != KindComment {
			continue
		}

		switch e.Kind {
		case KindComment:
			b.WriteString(fmt.Sprintf("    <!-- %s -->\n", e.Comment))

		case KindString:
			content := marshalStringValue(e.Value, e.UseCDATA, e.Markup)
			b.WriteString(fmt.Sprintf("    <string %s>%s</string>\n", attrs(e), content))

		case KindStringArray:
			b.WriteString(fmt.Sprintf("    <string-array %s>\n", attrs(e)))
			for i, item := range e.Items {
				useCDATA := i < len(e.ItemCDATA) && e.ItemCDATA[i]
				b.WriteString(fmt.Sprintf("        <item>%s</item>\n", marshalStringValue(item, useCDATA, false)))
			}
			b.WriteString("    </string-array>\n")

		case KindPlurals:
			b.WriteString(fmt.Sprintf("    <plurals %s>\n", attrs(e)))
			for _, q := range e.PluralOrder {
				useCDATA := e.PluralCDATA != nil && e.PluralCDATA[q]
				content := marshalStringValue(e.Plurals[q], useCDATA, false)
				b.WriteString(fmt.Sprintf("        <item quantity=\"%s\">%s</item>\n", q, content))
			}
			b.WriteString("    </plurals>\n")
		}
	}

	b.WriteString("</resources>\n")
	return []byte(b.String())
}

func attrs(e *Entry) string {
	s := fmt.Sprintf(`name="%s"`, e.Name)
	if !e.Translatable {
		s += ` translatable="false"`
	}
	return s
}

// marshalStringValue encodes a string value for XML output. CDATA values
// get Android escaping only; markup values are written as they were read
// with apostrophes re-escaped.
func marshalStringValue(s string, useCDATA, markup bool) string {
	switch {
	case useCDATA:
		return "<![CDATA[" + escape(s, false) + "]]>"
	case markup:
		return escapeAndroidApostrophe(s)
	}
	return Escape(s)
}

// ---------------------------------------------------------------------------
// Escaping
// ---------------------------------------------------------------------------

// Escape encodes s as strings.xml element text: XML entities for &, < and >,
// backslash escapes for quotes, backslash, newline and tab, and a leading @
// or ? escaped so it is not read as a resource reference.
func Escape(s string) string {
	return escape(s, true)
}

func escape(s string, entities bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '@', '?':
			if i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case '&', '<', '>':
			if !entities {
				b.WriteRune(r)
				continue
			}
			switch r {
			case '&':
				b.WriteString("&amp;")
			case '<':
				b.WriteString("&lt;")
			default:
				b.WriteString("&gt;")
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Unescape decodes Android backslash escapes in element text that has
// already been XML-decoded.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			b.WriteByte('u')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// escapeAndroidApostrophe escapes apostrophes for Android AAPT without
// double-escaping (strips any existing \' first, then re-escapes).
func escapeAndroidApostrophe(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// ---------------------------------------------------------------------------
// Resource tree
// ---------------------------------------------------------------------------

// DetectLocales scans an Android res/ directory for values-XX/ directories
// that contain strings.xml and returns their iOS locale identifiers.
func DetectLocales(resDir string) []string {
	entries, err := os.ReadDir(resDir)
	if err != nil {
		return nil
	}

	var locales []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "values-") {
			continue
		}
		if _, err := os.Stat(filepath.Join(resDir, name, StringsXML)); err == nil {
			locales = append(locales, locale.ToIOS(name))
		}
	}
	sort.Strings(locales)
	return locales
}

// SourceStringsXMLPath returns the path to the default (source) strings.xml.
func SourceStringsXMLPath(resDir string) string {
	return filepath.Join(resDir, "values", StringsXML)
}
