// Package yamldoc reads and writes the YAML translation document.
//
// The document is a mapping from section name to key to locale to value:
//
//	Localizable:
//	  cancel:
//	    en: Cancel
//	    ru: Отмена
//	InfoPlist:
//	  CFBundleDisplayName:
//	    en: Notes
//
// The reserved Plurals section maps key to locale to plural categories, with
// an optional sentence template under "format":
//
//	Plurals:
//	  files_left:
//	    en:
//	      format: '%#@files@ left'
//	      one: '%d file'
//	      other: '%d files'
//
// A value type other than "d" is kept under "value_type".
//
// Files written by the first version of the tool, a flat mapping from key
// to locale to value, are read into the Localizable section.
package yamldoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/model"
)

// Reserved keys of a plural locale mapping.
const (
	// FormatKey holds the sentence template.
	FormatKey = "format"
	// ValueTypeKey holds the stringsdict value type when it is not "d".
	ValueTypeKey = "value_type"
)

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal renders doc as YAML. Sections keep document order with Plurals
// last, keys are sorted, and locales are listed base locale first then in
// codepoint order.
func Marshal(doc *model.Document) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	for _, sec := range doc.Sections() {
		secNode := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range sec.SortedKeys() {
			e := sec.Entry(key)
			locNode := &yaml.Node{Kind: yaml.MappingNode}
			for _, l := range model.BaseFirst(e.Locales(), doc.BaseLocale) {
				v, _ := e.Value(l)
				locNode.Content = append(locNode.Content, scalar(l), scalar(v))
			}
			secNode.Content = append(secNode.Content, scalar(key), locNode)
		}
		root.Content = append(root.Content, scalar(sec.Name), secNode)
	}

	if doc.Plurals.Len() > 0 {
		secNode := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range doc.Plurals.SortedKeys() {
			e := doc.Plurals.Entry(key)
			locNode := &yaml.Node{Kind: yaml.MappingNode}
			for _, l := range model.BaseFirst(e.Locales(), doc.BaseLocale) {
				forms, _ := e.Forms(l)
				formNode := &yaml.Node{Kind: yaml.MappingNode}
				if forms.Format != "" {
					formNode.Content = append(formNode.Content, scalar(FormatKey), scalar(forms.Format))
				}
				if forms.ValueType != "" && forms.ValueType != "d" {
					formNode.Content = append(formNode.Content, scalar(ValueTypeKey), scalar(forms.ValueType))
				}
				for _, c := range forms.Categories() {
					formNode.Content = append(formNode.Content, scalar(string(c)), scalar(forms.Forms[c]))
				}
				locNode.Content = append(locNode.Content, scalar(l), formNode)
			}
			secNode.Content = append(secNode.Content, scalar(key), locNode)
		}
		root.Content = append(root.Content, scalar(model.SectionPlurals), secNode)
	}

	if len(root.Content) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// scalar returns a string node. The explicit tag makes the encoder quote
// values such as "no" or "1.0" that would otherwise read back as another
// type; empty strings are always quoted.
func scalar(v string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	if v == "" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ParseFile reads and parses a YAML document. Errors carry path.
func ParseFile(path, baseLocale string) (*model.Document, *diag.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, report, err := Unmarshal(data, baseLocale)
	if err != nil {
		var pe *diag.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, nil, err
	}
	for _, d := range report.Items {
		if dup, ok := d.(*diag.DuplicateKey); ok {
			dup.File = path
		}
	}
	return doc, report, nil
}

// Unmarshal parses a YAML document. Structural problems are returned as
// *diag.ParseError with the offending line; keys defined twice are
// reported as DuplicateKey warnings and the later value wins. Null values
// are treated as missing translations.
func Unmarshal(data []byte, baseLocale string) (*model.Document, *diag.Report, error) {
	doc := model.NewDocument(baseLocale)
	report := &diag.Report{}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, nil, &diag.ParseError{Reason: err.Error()}
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return doc, report, nil
	}
	root := node.Content[0]
	if isNull(root) {
		return doc, report, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, failf(root, "document root must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		nameNode, body := root.Content[i], root.Content[i+1]
		name := nameNode.Value

		if isNull(body) {
			if name != model.SectionPlurals {
				if _, err := doc.AddSection(name); err != nil {
					return nil, nil, failf(nameNode, "%v", err)
				}
			}
			continue
		}
		if body.Kind != yaml.MappingNode {
			return nil, nil, failf(body, "section %q must be a mapping", name)
		}

		var err error
		switch {
		case name == model.SectionPlurals:
			err = readPlurals(doc, body, report)
		case isLegacyEntry(body):
			err = readEntry(doc, model.SectionLocalizable, name, nameNode, body, report)
		default:
			err = readSection(doc, name, nameNode, body, report)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	doc.SortSections()
	return doc, report, nil
}

func readSection(doc *model.Document, name string, nameNode, body *yaml.Node, report *diag.Report) error {
	if _, err := doc.AddSection(name); err != nil {
		return failf(nameNode, "%v", err)
	}
	for j := 0; j+1 < len(body.Content); j += 2 {
		keyNode, locNode := body.Content[j], body.Content[j+1]
		if isNull(locNode) {
			continue
		}
		if locNode.Kind != yaml.MappingNode {
			return failf(locNode, "%s.%s must map locales to strings", name, keyNode.Value)
		}
		if err := readEntry(doc, name, keyNode.Value, keyNode, locNode, report); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(doc *model.Document, section, key string, keyNode, locNode *yaml.Node, report *diag.Report) error {
	sec, err := doc.AddSection(section)
	if err != nil {
		return failf(keyNode, "%v", err)
	}
	for k := 0; k+1 < len(locNode.Content); k += 2 {
		lNode, vNode := locNode.Content[k], locNode.Content[k+1]
		if isNull(vNode) {
			continue
		}
		if vNode.Kind != yaml.ScalarNode {
			return failf(vNode, "%s.%s.%s must be a string", section, key, lNode.Value)
		}
		replaced, err := sec.Set(key, lNode.Value, vNode.Value)
		if err != nil {
			return failf(keyNode, "%v", err)
		}
		if replaced {
			report.Add(&diag.DuplicateKey{Section: section, Key: key, Locale: lNode.Value, Line: lNode.Line})
		}
	}
	return nil
}

func readPlurals(doc *model.Document, body *yaml.Node, report *diag.Report) error {
	for j := 0; j+1 < len(body.Content); j += 2 {
		keyNode, locNode := body.Content[j], body.Content[j+1]
		key := keyNode.Value
		if isNull(locNode) {
			continue
		}
		if locNode.Kind != yaml.MappingNode {
			return failf(locNode, "plural %q must map locales to categories", key)
		}
		for k := 0; k+1 < len(locNode.Content); k += 2 {
			lNode, formNode := locNode.Content[k], locNode.Content[k+1]
			if isNull(formNode) {
				continue
			}
			if formNode.Kind != yaml.MappingNode {
				return failf(formNode, "plural %q (%s) must map categories to strings", key, lNode.Value)
			}
			forms := model.PluralForms{Forms: make(map[model.Category]string)}
			for m := 0; m+1 < len(formNode.Content); m += 2 {
				cNode, vNode := formNode.Content[m], formNode.Content[m+1]
				if vNode.Kind != yaml.ScalarNode {
					return failf(vNode, "plural %q (%s) %s must be a string", key, lNode.Value, cNode.Value)
				}
				switch cNode.Value {
				case FormatKey:
					forms.Format = vNode.Value
					continue
				case ValueTypeKey:
					forms.ValueType = vNode.Value
					continue
				}
				c, ok := model.ParseCategory(cNode.Value)
				if !ok {
					return failf(cNode, "plural %q (%s): unknown category %q", key, lNode.Value, cNode.Value)
				}
				forms.Forms[c] = vNode.Value
			}
			replaced, err := doc.Plurals.Set(key, lNode.Value, forms)
			if err != nil {
				return failf(keyNode, "%v", err)
			}
			if replaced {
				report.Add(&diag.DuplicateKey{Section: model.SectionPlurals, Key: key, Locale: lNode.Value, Line: lNode.Line})
			}
		}
	}
	return nil
}

// isLegacyEntry reports whether a top-level mapping is a flat-format entry
// (locale -> string) rather than a section (key -> locale map).
func isLegacyEntry(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	for i := 1; i < len(n.Content); i += 2 {
		if n.Content[i].Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func failf(n *yaml.Node, format string, args ...any) error {
	return &diag.ParseError{Line: n.Line, Reason: fmt.Sprintf(format, args...)}
}
