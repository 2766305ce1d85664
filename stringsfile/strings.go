// Package stringsfile implements reading and writing of Apple .strings
// files (property-list string tables).
//
// Format: one statement per entry,
//
//	"key" = "value";
//
// with C-style escapes inside the quotes. Comments may be written as
// "// ..." lines or "/* ... */" blocks. The comment run that precedes the
// first statement is the file header; it is kept verbatim and written back
// unchanged. Other comments are not preserved.
//
// Serialization is canonical: header, one blank line, then one statement per
// line in the order given by the caller. Parsing canonical output and
// serializing it again yields identical bytes.
package stringsfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/minios-linux/i18nsync/diag"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Pair is one key/value statement.
type Pair struct {
	Key   string
	Value string
}

// entry is a parsed statement with its source line.
type entry struct {
	key   string
	value string
	line  int
}

// File represents a parsed .strings file.
type File struct {
	// Header is the verbatim comment block before the first statement.
	Header string
	// Duplicates records keys that were defined more than once. The last
	// value wins; the key keeps its first position.
	Duplicates []*diag.DuplicateKey

	entries []entry
	index   map[string]int
}

// New returns an empty File with the given header.
func New(header string) *File {
	return &File{Header: header, index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .strings file from disk. Parse errors and
// duplicate warnings carry path as their file name.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*diag.ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	for _, d := range f.Duplicates {
		d.File = path
	}
	return f, nil
}

// Parse parses .strings content. UTF-8 and UTF-16 (with byte order mark)
// input is accepted; line endings are normalised to \n.
func Parse(data []byte) (*File, error) {
	text, err := decode(data)
	if err != nil {
		return nil, &diag.ParseError{Reason: fmt.Sprintf("decoding: %v", err)}
	}

	f := New("")
	p := &parser{src: text, line: 1}

	header, err := p.header()
	if err != nil {
		return nil, err
	}
	f.Header = header

	for {
		if err := p.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if p.eof() {
			break
		}
		line := p.line
		key, err := p.token("key")
		if err != nil {
			return nil, err
		}
		if err := p.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if !p.accept('=') {
			return nil, p.errorf(p.line, "missing '=' after key %q", key)
		}
		if err := p.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		value, err := p.token("value")
		if err != nil {
			return nil, err
		}
		if err := p.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if !p.accept(';') {
			return nil, p.errorf(p.line, "missing ';' after value of key %q", key)
		}
		f.set(key, value, line)
	}
	return f, nil
}

// ParseHeader returns the header block of data without parsing the body.
// It never fails; unreadable input yields "".
func ParseHeader(data []byte) string {
	text, err := decode(data)
	if err != nil {
		return ""
	}
	p := &parser{src: text, line: 1}
	h, err := p.header()
	if err != nil {
		return ""
	}
	return h
}

func decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(out), "\r\n", "\n"), nil
}

func (f *File) set(key, value string, line int) {
	if idx, ok := f.index[key]; ok {
		f.Duplicates = append(f.Duplicates, &diag.DuplicateKey{Key: key, Line: line})
		f.entries[idx].value = value
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, entry{key: key, value: value, line: line})
}

// parser is a hand-written scanner over the decoded text.
type parser struct {
	src  string
	pos  int
	line int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) hasPrefix(s string) bool { return strings.HasPrefix(p.src[p.pos:], s) }

func (p *parser) accept(c byte) bool {
	if !p.eof() && p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(line int, format string, args ...any) *diag.ParseError {
	return &diag.ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// header consumes the leading comment run and returns it verbatim, from the
// first comment through the end of the last one.
func (p *parser) header() (string, error) {
	start, end := -1, -1
	for {
		p.skipSpace()
		if !p.hasPrefix("//") && !p.hasPrefix("/*") {
			break
		}
		if start < 0 {
			start = p.pos
		}
		if err := p.skipComment(); err != nil {
			return "", err
		}
		end = p.pos
	}
	if start < 0 {
		return "", nil
	}
	return p.src[start:end], nil
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case '\n':
			p.line++
		case ' ', '\t', '\r', '\f', '\v':
		default:
			return
		}
		p.pos++
	}
}

// skipComment consumes one comment. Line comments stop before the newline.
func (p *parser) skipComment() error {
	if p.hasPrefix("//") {
		if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
			p.pos += i
		} else {
			p.pos = len(p.src)
		}
		return nil
	}
	startLine := p.line
	i := strings.Index(p.src[p.pos+2:], "*/")
	if i < 0 {
		return p.errorf(startLine, "unterminated comment")
	}
	body := p.src[p.pos : p.pos+2+i+2]
	p.line += strings.Count(body, "\n")
	p.pos += len(body)
	return nil
}

func (p *parser) skipSpaceAndComments() error {
	for {
		p.skipSpace()
		if p.hasPrefix("//") || p.hasPrefix("/*") {
			if err := p.skipComment(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

// token reads a quoted string or a bare word (old-style plist allows
// unquoted alphanumeric strings).
func (p *parser) token(what string) (string, error) {
	if p.eof() {
		return "", p.errorf(p.line, "unexpected end of file, expected %s", what)
	}
	if p.peek() == '"' {
		return p.quoted()
	}
	start := p.pos
	for !p.eof() && isBareChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf(p.line, "expected quoted %s, found %q", what, p.peek())
	}
	return p.src[start:p.pos], nil
}

func isBareChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '$' || c == ':' || c == '/' || c == '-'
}

func (p *parser) quoted() (string, error) {
	startLine := p.line
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf(startLine, "unterminated string")
		}
		c := p.peek()
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\n':
			return "", p.errorf(p.line, "unescaped newline in string")
		case '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return p.errorf(p.line, "unterminated string")
	}
	c := p.peek()
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case '\n':
		p.line++
		b.WriteByte('\n')
	case 'U', 'u':
		r, err := p.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && (p.hasPrefix(`\U`) || p.hasPrefix(`\u`)) {
			save := p.pos
			p.pos += 2
			if r2, err := p.hex4(); err == nil {
				if dec := utf16.DecodeRune(r, r2); dec != 0xFFFD {
					b.WriteRune(dec)
					return nil
				}
			}
			p.pos = save
		}
		b.WriteRune(r)
	default:
		// \" \\ \' and any unknown escape yield the character itself.
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) hex4() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errorf(p.line, "truncated \\U escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errorf(p.line, "invalid \\U escape %q", p.src[p.pos:p.pos+4])
	}
	p.pos += 4
	return rune(n), nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.entries))
	for i, e := range f.entries {
		keys[i] = e.key
	}
	return keys
}

// Get returns the value for key and whether it was found.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok {
		return f.entries[idx].value, true
	}
	return "", false
}

// Line returns the source line of key's first definition, or 0.
func (f *File) Line(key string) int {
	if idx, ok := f.index[key]; ok {
		return f.entries[idx].line
	}
	return 0
}

// Set sets key to value, appending the key if it is new.
func (f *File) Set(key, value string) {
	if idx, ok := f.index[key]; ok {
		f.entries[idx].value = value
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, entry{key: key, value: value})
}

// Len returns the number of keys.
func (f *File) Len() int { return len(f.entries) }

// Pairs returns the statements in document order.
func (f *File) Pairs() []Pair {
	out := make([]Pair, len(f.entries))
	for i, e := range f.entries {
		out[i] = Pair{Key: e.key, Value: e.value}
	}
	return out
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the file with its keys in document order.
func (f *File) Marshal() []byte {
	return Serialize(f.Header, f.Pairs())
}

// WriteFile serialises and writes to path, creating parent directories
// with 0755 permissions.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, f.Marshal(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Serialize renders header and pairs in the given order. A non-empty header
// is followed by exactly one blank line before the first statement; a file
// without statements ends right after the header line.
func Serialize(header string, pairs []Pair) []byte {
	var buf bytes.Buffer
	if header != "" {
		buf.WriteString(header)
		buf.WriteByte('\n')
		if len(pairs) > 0 {
			buf.WriteByte('\n')
		}
	}
	for _, kv := range pairs {
		buf.WriteByte('"')
		buf.WriteString(Escape(kv.Key))
		buf.WriteString(`" = "`)
		buf.WriteString(Escape(kv.Value))
		buf.WriteString("\";\n")
	}
	return buf.Bytes()
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// Escape quotes s for use inside a .strings literal.
func Escape(s string) string {
	return escaper.Replace(s)
}
