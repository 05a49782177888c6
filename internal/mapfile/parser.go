package mapfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("mapfile: syntax error")

type tokKind int

const (
	tokEOF tokKind = iota
	tokOpenBrace
	tokCloseBrace
	tokOpenParen
	tokCloseParen
	tokOpenBracket
	tokCloseBracket
	tokString
	tokWord
)

type token struct {
	kind tokKind
	text string
	line int
}

type lexer struct {
	src  []byte
	pos  int
	line int

	// comments seen before the first token, for the header
	header   []string
	sawToken bool
	peeked   *token
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (l *lexer) standalone(i int) bool {
	return i+1 >= len(l.src) || isSpace(l.src[i+1])
}

func (l *lexer) peek() (token, error) {
	if l.peeked == nil {
		t, err := l.scan()
		if err != nil {
			return token{}, err
		}
		l.peeked = &t
	}
	return *l.peeked, nil
}

func (l *lexer) next() (token, error) {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t, nil
	}
	return l.scan()
}

func (l *lexer) scan() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			l.line++
			l.pos++
			continue
		}
		if isSpace(c) {
			l.pos++
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			end := bytes.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				end = len(l.src) - l.pos
			}
			text := string(bytes.TrimRight(l.src[l.pos+2:l.pos+end], "\r"))
			// "// entity N" markers are regenerated by Write.
			if !l.sawToken && !strings.HasPrefix(text, " entity ") {
				l.header = append(l.header, text)
			}
			l.pos += end
			continue
		}
		break
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	l.sawToken = true

	c := l.src[l.pos]
	line := l.line
	switch c {
	case '"':
		end := bytes.IndexByte(l.src[l.pos+1:], '"')
		if end < 0 {
			return token{}, fmt.Errorf("%w: line %d: unterminated string", ErrSyntax, line)
		}
		text := string(l.src[l.pos+1 : l.pos+1+end])
		l.line += bytes.Count(l.src[l.pos+1:l.pos+1+end], []byte{'\n'})
		l.pos += end + 2
		return token{kind: tokString, text: text, line: line}, nil
	case '{', '}':
		// Texture names may start with a brace, e.g. {fence.
		if l.standalone(l.pos) {
			l.pos++
			k := tokOpenBrace
			if c == '}' {
				k = tokCloseBrace
			}
			return token{kind: k, text: string(c), line: line}, nil
		}
	case '(':
		l.pos++
		return token{kind: tokOpenParen, text: "(", line: line}, nil
	case ')':
		l.pos++
		return token{kind: tokCloseParen, text: ")", line: line}, nil
	case '[':
		l.pos++
		return token{kind: tokOpenBracket, text: "[", line: line}, nil
	case ']':
		l.pos++
		return token{kind: tokCloseBracket, text: "]", line: line}, nil
	}

	start := l.pos
	for l.pos < len(l.src) && !isSpace(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokWord, text: string(l.src[start:l.pos]), line: line}, nil
}

func (l *lexer) expect(k tokKind, what string) (token, error) {
	t, err := l.next()
	if err != nil {
		return t, err
	}
	if t.kind != k {
		return t, fmt.Errorf("%w: line %d: expected %s, got %q", ErrSyntax, t.line, what, t.text)
	}
	return t, nil
}

func (l *lexer) number() (float64, error) {
	t, err := l.expect(tokWord, "number")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: bad number %q", ErrSyntax, t.line, t.text)
	}
	return v, nil
}

// ParseFile reads and parses a .map file.
func ParseFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapfile: read %s: %w", path, err)
	}
	m, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse reads all of r and parses it.
func Parse(r io.Reader) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("mapfile: read: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses map text. Input that is not valid UTF-8 is decoded as
// Windows-1252, which is what older editors wrote.
func ParseBytes(data []byte) (*Map, error) {
	m := &Map{}
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("mapfile: decode windows-1252: %w", err)
		}
		data = decoded
		m.Legacy = true
	}

	l := &lexer{src: data, line: 1}
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokEOF {
			break
		}
		if t.kind != tokOpenBrace {
			return nil, fmt.Errorf("%w: line %d: expected entity, got %q", ErrSyntax, t.line, t.text)
		}
		ent, err := parseEntity(l, t.line)
		if err != nil {
			return nil, err
		}
		m.Entities = append(m.Entities, ent)
	}
	m.Header = l.header
	return m, nil
}

func parseEntity(l *lexer, line int) (Entity, error) {
	ent := Entity{Line: line}
	for {
		t, err := l.next()
		if err != nil {
			return ent, err
		}
		switch t.kind {
		case tokCloseBrace:
			return ent, nil
		case tokString:
			v, err := l.expect(tokString, "attribute value")
			if err != nil {
				return ent, err
			}
			ent.Attrs = append(ent.Attrs, Attr{Key: t.text, Value: v.text})
		case tokOpenBrace:
			b, err := parseBrush(l, t.line)
			if err != nil {
				return ent, err
			}
			ent.Brushes = append(ent.Brushes, b)
		case tokEOF:
			return ent, fmt.Errorf("%w: line %d: unterminated entity", ErrSyntax, line)
		default:
			return ent, fmt.Errorf("%w: line %d: unexpected %q in entity", ErrSyntax, t.line, t.text)
		}
	}
}

func parseBrush(l *lexer, line int) (Brush, error) {
	b := Brush{Line: line}
	for {
		t, err := l.peek()
		if err != nil {
			return b, err
		}
		switch t.kind {
		case tokCloseBrace:
			l.next()
			return b, nil
		case tokOpenParen:
			f, err := parseFace(l)
			if err != nil {
				return b, err
			}
			b.Faces = append(b.Faces, f)
		case tokEOF:
			return b, fmt.Errorf("%w: line %d: unterminated brush", ErrSyntax, line)
		default:
			return b, fmt.Errorf("%w: line %d: unexpected %q in brush", ErrSyntax, t.line, t.text)
		}
	}
}

func parsePoint(l *lexer) (mgl64.Vec3, error) {
	var p mgl64.Vec3
	if _, err := l.expect(tokOpenParen, "("); err != nil {
		return p, err
	}
	for i := 0; i < 3; i++ {
		v, err := l.number()
		if err != nil {
			return p, err
		}
		p[i] = v
	}
	_, err := l.expect(tokCloseParen, ")")
	return p, err
}

func parseAxis(l *lexer) (mgl64.Vec4, error) {
	var a mgl64.Vec4
	if _, err := l.expect(tokOpenBracket, "["); err != nil {
		return a, err
	}
	for i := 0; i < 4; i++ {
		v, err := l.number()
		if err != nil {
			return a, err
		}
		a[i] = v
	}
	_, err := l.expect(tokCloseBracket, "]")
	return a, err
}

func parseFace(l *lexer) (Face, error) {
	var f Face
	for i := 0; i < 3; i++ {
		p, err := parsePoint(l)
		if err != nil {
			return f, err
		}
		f.Points[i] = p
	}

	tex, err := l.next()
	if err != nil {
		return f, err
	}
	if tex.kind != tokWord && tex.kind != tokString {
		return f, fmt.Errorf("%w: line %d: expected texture name, got %q", ErrSyntax, tex.line, tex.text)
	}
	f.Texture = tex.text
	faceLine := tex.line

	nt, err := l.peek()
	if err != nil {
		return f, err
	}
	if nt.kind == tokOpenBracket {
		f.Valve = true
		if f.U, err = parseAxis(l); err != nil {
			return f, err
		}
		if f.V, err = parseAxis(l); err != nil {
			return f, err
		}
	} else {
		for i := 0; i < 2; i++ {
			if f.Offset[i], err = l.number(); err != nil {
				return f, err
			}
		}
	}
	if f.Rotation, err = l.number(); err != nil {
		return f, err
	}
	for i := 0; i < 2; i++ {
		if f.Scale[i], err = l.number(); err != nil {
			return f, err
		}
	}

	// Quake 2 style surface flags trail on the same line; skip them.
	for {
		t, err := l.peek()
		if err != nil {
			return f, err
		}
		if t.kind != tokWord || t.line != faceLine {
			break
		}
		l.next()
	}
	return f, nil
}
