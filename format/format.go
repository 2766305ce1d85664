// Package format rewrites iOS printf-style format specifiers into Android's
// positional form.
//
// iOS templates use %@ for objects and C length modifiers (%ld, %lld). On
// Android every argument is addressed positionally, %1$s, %2$d, so that
// translations may reorder arguments. Positions are taken from the base
// locale's template; other locales are matched to it by specifier kind and
// per-kind occurrence, not by textual order.
package format

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/minios-linux/i18nsync/diag"
)

// specRe matches one printf conversion. The space flag is deliberately not
// recognised so that text like "50% off" stays literal.
var specRe = regexp.MustCompile(`%(?:([1-9][0-9]*)\$)?([-+0#']*)([0-9]+|\*)?(?:\.([0-9]+|\*))?(hh|h|ll|l|q|z|t|j|L)?([@dDiuUxXoOfFeEgGaAcCsSp%])`)

// Specifier is one conversion found in a template.
type Specifier struct {
	// Start and End delimit the specifier in the template.
	Start, End int
	// Index is the explicit 1-based position (%2$@), 0 when absent.
	Index int
	// Flags, Width and Precision are kept from the source.
	Flags     string
	Width     string
	Precision string
	// Verb is the Android conversion: s, d, f, x, ...
	Verb byte
	// Literal marks "%%" and stringsdict placeholders, which are copied as-is.
	Literal bool
}

// Arg is one argument slot of a converted template.
type Arg struct {
	Position int
	Kind     byte
}

// Scan returns the specifiers of tmpl in textual order.
func Scan(tmpl string) []Specifier {
	var out []Specifier
	for _, m := range specRe.FindAllStringSubmatchIndex(tmpl, -1) {
		s := Specifier{Start: m[0], End: m[1]}
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return tmpl[m[2*i]:m[2*i+1]]
		}
		conv := group(6)[0]
		if conv == '%' || conv == '@' && strings.Contains(group(2), "#") {
			s.Literal = true
			out = append(out, s)
			continue
		}
		if idx := group(1); idx != "" {
			s.Index, _ = strconv.Atoi(idx)
		}
		s.Flags = strings.ReplaceAll(group(2), "'", ",")
		if w := group(3); w != "*" {
			s.Width = w
		}
		if p := group(4); p != "*" {
			s.Precision = p
		}
		s.Verb = androidVerb(conv)
		out = append(out, s)
	}
	return out
}

func androidVerb(c byte) byte {
	switch c {
	case '@', 's', 'S', 'p':
		return 's'
	case 'd', 'D', 'i', 'u', 'U':
		return 'd'
	case 'O':
		return 'o'
	case 'F':
		return 'f'
	case 'C':
		return 'c'
	}
	return c
}

// android renders the specifier at position pos.
func (s Specifier) android(pos int) string {
	var b strings.Builder
	b.WriteByte('%')
	b.WriteString(strconv.Itoa(pos))
	b.WriteByte('$')
	b.WriteString(s.Flags)
	b.WriteString(s.Width)
	if s.Precision != "" {
		b.WriteByte('.')
		b.WriteString(s.Precision)
	}
	b.WriteByte(s.Verb)
	return b.String()
}

// Convert rewrites a base-locale template. Each specifier takes its 1-based
// occurrence index as position unless it already names one. Converting an
// already positional Android template returns it unchanged.
func Convert(tmpl string) (string, []Arg) {
	specs := Scan(tmpl)
	positions := make([]int, len(specs))
	n := 0
	for i, s := range specs {
		if s.Literal {
			continue
		}
		n++
		positions[i] = n
		if s.Index > 0 {
			positions[i] = s.Index
		}
	}
	return render(tmpl, specs, positions)
}

// ConvertWith rewrites a non-base template, assigning each specifier the
// base position of the same kind and per-kind occurrence. The kind multiset
// must equal the base's, and an explicit %N$ must name a base argument of
// the same kind; otherwise a *diag.SpecifierMismatchError is returned with
// Key and Locale left for the caller to fill in.
func ConvertWith(tmpl string, base []Arg) (string, []Arg, error) {
	specs := Scan(tmpl)

	var got []string
	for _, s := range specs {
		if !s.Literal {
			got = append(got, string(s.Verb))
		}
	}
	want := make([]string, len(base))
	for i, a := range base {
		want[i] = string(a.Kind)
	}
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, "") != strings.Join(want, "") {
		return "", nil, &diag.SpecifierMismatchError{Want: want, Got: got}
	}

	queues := make(map[byte][]int)
	kindAt := make(map[int]byte, len(base))
	for _, a := range base {
		queues[a.Kind] = append(queues[a.Kind], a.Position)
		kindAt[a.Position] = a.Kind
	}
	positions := make([]int, len(specs))
	for i, s := range specs {
		if s.Literal {
			continue
		}
		q := queues[s.Verb]
		if s.Index > 0 {
			if k, ok := kindAt[s.Index]; !ok || k != s.Verb {
				return "", nil, &diag.SpecifierMismatchError{Want: want, Got: got}
			}
			positions[i] = s.Index
			for j, p := range q {
				if p == s.Index {
					queues[s.Verb] = append(q[:j:j], q[j+1:]...)
					break
				}
			}
			continue
		}
		if len(q) == 0 {
			// Explicit indexes consumed this kind's slots; fall back to
			// textual order.
			positions[i] = i + 1
			continue
		}
		positions[i] = q[0]
		queues[s.Verb] = q[1:]
	}
	out, args := render(tmpl, specs, positions)
	return out, args, nil
}

func render(tmpl string, specs []Specifier, positions []int) (string, []Arg) {
	var b strings.Builder
	var args []Arg
	last := 0
	for i, s := range specs {
		b.WriteString(tmpl[last:s.Start])
		last = s.End
		if s.Literal {
			b.WriteString(tmpl[s.Start:s.End])
			continue
		}
		b.WriteString(s.android(positions[i]))
		args = append(args, Arg{Position: positions[i], Kind: s.Verb})
	}
	b.WriteString(tmpl[last:])
	return b.String(), args
}

// Converter converts all locale values of a key against a configured base
// locale.
type Converter struct {
	// Base is the locale whose templates define argument positions.
	Base string
}

// ConvertLocales converts values (locale -> iOS template) of key. The base
// is c.Base when present, otherwise the first locale in codepoint order.
// Values whose specifiers do not match the base are left out of the result
// and reported.
func (c Converter) ConvertLocales(key string, values map[string]string) (map[string]string, []*diag.SpecifierMismatchError) {
	out := make(map[string]string, len(values))
	if len(values) == 0 {
		return out, nil
	}
	base := c.Base
	if _, ok := values[base]; !ok {
		locales := make([]string, 0, len(values))
		for l := range values {
			locales = append(locales, l)
		}
		sort.Strings(locales)
		base = locales[0]
	}

	converted, args := Convert(values[base])
	out[base] = converted

	var errs []*diag.SpecifierMismatchError
	locales := make([]string, 0, len(values))
	for l := range values {
		if l != base {
			locales = append(locales, l)
		}
	}
	sort.Strings(locales)
	for _, l := range locales {
		v, _, err := ConvertWith(values[l], args)
		if err != nil {
			mm := err.(*diag.SpecifierMismatchError)
			mm.Key, mm.Locale, mm.BaseLocale = key, l, base
			errs = append(errs, mm)
			continue
		}
		out[l] = v
	}
	return out, errs
}
