// Package stringsdict implements reading and writing of Apple .stringsdict
// plural rule files.
//
// Only the narrow subset of the property-list format that .stringsdict uses
// is understood: <dict>, <array> and scalar elements (read as strings).
// Each top-level key maps to a dictionary like
//
//	<key>files_left</key>
//	<dict>
//	    <key>NSStringLocalizedFormatKey</key>
//	    <string>You have %#@files@ left</string>
//	    <key>files</key>
//	    <dict>
//	        <key>NSStringFormatSpecTypeKey</key>
//	        <string>NSStringPluralRuleType</string>
//	        <key>NSStringFormatValueTypeKey</key>
//	        <string>d</string>
//	        <key>one</key>
//	        <string>%d file</string>
//	        <key>other</key>
//	        <string>%d files</string>
//	    </dict>
//	</dict>
//
// The sentence around the %#@files@ placeholder is kept: Resolve produces
// "You have %d file left" for "one".
package stringsdict

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/model"
)

// Keys with a fixed meaning inside a .stringsdict entry.
const (
	KeyLocalizedFormat = "NSStringLocalizedFormatKey"
	KeySpecType        = "NSStringFormatSpecTypeKey"
	KeyValueType       = "NSStringFormatValueTypeKey"
	PluralRuleType     = "NSStringPluralRuleType"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Entry is one plural key.
type Entry struct {
	Key string
	// Format is the full NSStringLocalizedFormatKey value.
	Format string
	// Variable is the placeholder name referenced by Format.
	Variable string
	// ValueType is NSStringFormatValueTypeKey, e.g. "d" or "ld".
	ValueType string
	// Forms maps category to the raw category text.
	Forms map[model.Category]string
	// Line is where the key was defined.
	Line int
}

// Sentence returns Format when it has text around the placeholder, "" when
// the placeholder stands alone.
func (e *Entry) Sentence() string {
	if strings.TrimSpace(e.Format) == "%#@"+e.Variable+"@" {
		return ""
	}
	return e.Format
}

// PluralForms converts the entry to the document representation.
func (e *Entry) PluralForms() model.PluralForms {
	forms := make(map[model.Category]string, len(e.Forms))
	for c, v := range e.Forms {
		forms[c] = v
	}
	pf := model.PluralForms{Format: e.Sentence(), Forms: forms}
	if e.ValueType != "d" {
		pf.ValueType = e.ValueType
	}
	return pf
}

// Resolve returns the final localized string for c with the surrounding
// sentence applied.
func (e *Entry) Resolve(c model.Category) (string, bool) {
	return e.PluralForms().Resolve(c)
}

// NewEntry builds an Entry from document forms. When forms has no sentence
// the placeholder variable is derived from key.
func NewEntry(key string, forms model.PluralForms) *Entry {
	e := &Entry{Key: key, ValueType: forms.ValueType, Forms: make(map[model.Category]string, len(forms.Forms))}
	if e.ValueType == "" {
		e.ValueType = "d"
	}
	for c, v := range forms.Forms {
		e.Forms[c] = v
	}
	if v := forms.Variable(); v != "" {
		e.Variable = v
		e.Format = forms.Format
	} else {
		e.Variable = variableName(key)
		e.Format = "%#@" + e.Variable + "@"
	}
	return e
}

func variableName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "value"
	}
	return b.String()
}

// File represents a parsed .stringsdict file.
type File struct {
	// Entries in document order.
	Entries []*Entry
	index   map[string]int
}

// Get returns the entry for key, or nil.
func (f *File) Get(key string) *Entry {
	if idx, ok := f.index[key]; ok {
		return f.Entries[idx]
	}
	return nil
}

// Keys returns the plural keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		keys[i] = e.Key
	}
	return keys
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .stringsdict file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		var pe *diag.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return f, nil
}

// Parse parses .stringsdict content.
func Parse(data []byte) (*File, error) {
	p := &plistParser{dec: xml.NewDecoder(bytes.NewReader(data))}
	root, err := p.document()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return &File{index: make(map[string]int)}, nil
	}
	if root.kind != nodeDict {
		return nil, &diag.ParseError{Line: root.line, Reason: "plist root must be a <dict>"}
	}

	f := &File{index: make(map[string]int)}
	for i, key := range root.keys {
		e, err := buildEntry(key, root.values[i])
		if err != nil {
			return nil, err
		}
		if idx, ok := f.index[key]; ok {
			f.Entries[idx] = e
			continue
		}
		f.index[key] = len(f.Entries)
		f.Entries = append(f.Entries, e)
	}
	return f, nil
}

func buildEntry(key string, n *node) (*Entry, error) {
	fail := func(format string, args ...any) error {
		return &diag.ParseError{Line: n.line, Reason: fmt.Sprintf("plural %q: ", key) + fmt.Sprintf(format, args...)}
	}
	if n.kind != nodeDict {
		return nil, fail("value must be a <dict>")
	}
	formatNode := n.get(KeyLocalizedFormat)
	if formatNode == nil || formatNode.kind != nodeString {
		return nil, fail("missing %s", KeyLocalizedFormat)
	}
	refs := model.PlaceholderRe().FindAllString(formatNode.text, -1)
	switch {
	case len(refs) == 0:
		return nil, fail("%s has no %%#@variable@ placeholder", KeyLocalizedFormat)
	case len(refs) > 1:
		return nil, fail("%s references %d variables, only one is supported", KeyLocalizedFormat, len(refs))
	}
	variable := strings.TrimSuffix(strings.TrimPrefix(refs[0], "%#@"), "@")

	rules := n.get(variable)
	if rules == nil || rules.kind != nodeDict {
		return nil, fail("missing rule dictionary %q", variable)
	}

	e := &Entry{
		Key:       key,
		Format:    formatNode.text,
		Variable:  variable,
		ValueType: "d",
		Forms:     make(map[model.Category]string),
		Line:      n.line,
	}
	for i, k := range rules.keys {
		v := rules.values[i]
		if v.kind != nodeString {
			return nil, fail("%q must be a string", k)
		}
		switch k {
		case KeySpecType:
			if v.text != PluralRuleType {
				return nil, fail("unsupported %s %q", KeySpecType, v.text)
			}
		case KeyValueType:
			e.ValueType = v.text
		default:
			c, ok := model.ParseCategory(k)
			if !ok {
				return nil, fail("unknown plural category %q", k)
			}
			e.Forms[c] = v.text
		}
	}
	if _, ok := e.Forms[model.Other]; !ok {
		return nil, fail("missing %q category", model.Other)
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Plist grammar
// ---------------------------------------------------------------------------

type nodeKind int

const (
	nodeString nodeKind = iota
	nodeDict
	nodeArray
)

// node is one plist value. Only the shapes .stringsdict uses are modelled.
type node struct {
	kind nodeKind
	line int
	// text holds the value of scalar elements.
	text string
	// keys and values hold dictionary members in order.
	keys   []string
	values []*node
	// items holds array members.
	items []*node
}

func (n *node) get(key string) *node {
	for i, k := range n.keys {
		if k == key {
			return n.values[i]
		}
	}
	return nil
}

type plistParser struct {
	dec *xml.Decoder
}

func (p *plistParser) line() int {
	l, _ := p.dec.InputPos()
	return l
}

func (p *plistParser) errorf(format string, args ...any) error {
	return &diag.ParseError{Line: p.line(), Reason: fmt.Sprintf(format, args...)}
}

// next returns the next start or end element, skipping whitespace, comments,
// processing instructions and the DOCTYPE directive.
func (p *plistParser) next() (xml.Token, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, p.errorf("unexpected text %q", strings.TrimSpace(string(t)))
			}
		}
	}
}

// document parses an optional <plist> wrapper around a single value.
// An input without any element yields a nil node.
func (p *plistParser) document() (*node, error) {
	tok, err := p.next()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, p.wrap(err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil, p.errorf("unexpected closing element")
	}
	if start.Name.Local != "plist" {
		return p.value(start)
	}

	tok, err = p.next()
	if err != nil {
		return nil, p.wrap(err)
	}
	if _, ok := tok.(xml.EndElement); ok {
		return nil, nil
	}
	root, err := p.value(tok.(xml.StartElement))
	if err != nil {
		return nil, err
	}
	tok, err = p.next()
	if err != nil {
		return nil, p.wrap(err)
	}
	if end, ok := tok.(xml.EndElement); !ok || end.Name.Local != "plist" {
		return nil, p.errorf("<plist> must contain exactly one value")
	}
	return root, nil
}

func (p *plistParser) wrap(err error) error {
	if err == io.EOF {
		return p.errorf("unexpected end of file")
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &diag.ParseError{Line: se.Line, Reason: se.Msg}
	}
	return p.errorf("%v", err)
}

func (p *plistParser) value(start xml.StartElement) (*node, error) {
	line := p.line()
	switch start.Name.Local {
	case "dict":
		return p.dict(line)
	case "array":
		return p.array(line)
	case "string", "integer", "real", "date", "data":
		text, err := p.text(start.Name.Local)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeString, line: line, text: text}, nil
	case "true", "false":
		if _, err := p.text(start.Name.Local); err != nil {
			return nil, err
		}
		return &node{kind: nodeString, line: line, text: start.Name.Local}, nil
	}
	return nil, p.errorf("unexpected element <%s>", start.Name.Local)
}

func (p *plistParser) dict(line int) (*node, error) {
	n := &node{kind: nodeDict, line: line}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, p.wrap(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return n, nil
		case xml.StartElement:
			if t.Name.Local != "key" {
				return nil, p.errorf("expected <key> in <dict>, found <%s>", t.Name.Local)
			}
			key, err := p.text("key")
			if err != nil {
				return nil, err
			}
			vt, err := p.next()
			if err != nil {
				return nil, p.wrap(err)
			}
			vs, ok := vt.(xml.StartElement)
			if !ok {
				return nil, p.errorf("key %q has no value", key)
			}
			v, err := p.value(vs)
			if err != nil {
				return nil, err
			}
			n.keys = append(n.keys, key)
			n.values = append(n.values, v)
		}
	}
}

func (p *plistParser) array(line int) (*node, error) {
	n := &node{kind: nodeArray, line: line}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, p.wrap(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return n, nil
		case xml.StartElement:
			v, err := p.value(t)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, v)
		}
	}
}

// text reads character data up to the end of the current element.
func (p *plistParser) text(elem string) (string, error) {
	var b strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", p.wrap(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			return "", p.errorf("unexpected element <%s> inside <%s>", t.Name.Local, elem)
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
`

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Serialize renders entries as a .stringsdict plist in the given order.
// Categories are written in CLDR order.
func Serialize(entries []*Entry) []byte {
	var b bytes.Buffer
	b.WriteString(plistHeader)
	b.WriteString("<dict>\n")
	for _, e := range entries {
		valueType := e.ValueType
		if valueType == "" {
			valueType = "d"
		}
		writeKey(&b, 1, e.Key)
		b.WriteString("\t<dict>\n")
		writeKey(&b, 2, KeyLocalizedFormat)
		writeString(&b, 2, e.Format)
		writeKey(&b, 2, e.Variable)
		b.WriteString("\t\t<dict>\n")
		writeKey(&b, 3, KeySpecType)
		writeString(&b, 3, PluralRuleType)
		writeKey(&b, 3, KeyValueType)
		writeString(&b, 3, valueType)
		for _, c := range model.Categories {
			if v, ok := e.Forms[c]; ok {
				writeKey(&b, 3, string(c))
				writeString(&b, 3, v)
			}
		}
		b.WriteString("\t\t</dict>\n")
		b.WriteString("\t</dict>\n")
	}
	b.WriteString("</dict>\n</plist>\n")
	return b.Bytes()
}

func writeKey(b *bytes.Buffer, depth int, k string) {
	fmt.Fprintf(b, "%s<key>%s</key>\n", strings.Repeat("\t", depth), textEscaper.Replace(k))
}

func writeString(b *bytes.Buffer, depth int, v string) {
	fmt.Fprintf(b, "%s<string>%s</string>\n", strings.Repeat("\t", depth), textEscaper.Replace(v))
}
