// Package converr defines the error taxonomy shared by every conversion
// stage. Errors carry enough identity to locate the offending input.
package converr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a conversion failure.
type Kind int

const (
	Unknown Kind = iota
	DegenerateBrush
	UnsupportedImageFormat
	PaletteReductionFailed
	EmptyConversionUnit
	ExternalCompilerFailure
	IoFailure
	MissingTexture
	InvalidEntity
	Skipped
)

var kindNames = [...]string{
	Unknown:                 "Unknown",
	DegenerateBrush:         "DegenerateBrush",
	UnsupportedImageFormat:  "UnsupportedImageFormat",
	PaletteReductionFailed:  "PaletteReductionFailed",
	EmptyConversionUnit:     "EmptyConversionUnit",
	ExternalCompilerFailure: "ExternalCompilerFailure",
	IoFailure:               "IoFailure",
	MissingTexture:          "MissingTexture",
	InvalidEntity:           "InvalidEntity",
	Skipped:                 "Skipped",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrDegenerateBrush         = errors.New("degenerate brush")
	ErrUnsupportedImageFormat  = errors.New("unsupported image format")
	ErrPaletteReductionFailed  = errors.New("palette reduction failed")
	ErrEmptyConversionUnit     = errors.New("empty conversion unit")
	ErrExternalCompilerFailure = errors.New("external compiler failure")
	ErrIoFailure               = errors.New("io failure")
	ErrMissingTexture          = errors.New("missing texture")
	ErrInvalidEntity           = errors.New("invalid entity")
	ErrSkipped                 = errors.New("skipped")
)

var sentinels = map[Kind]error{
	DegenerateBrush:         ErrDegenerateBrush,
	UnsupportedImageFormat:  ErrUnsupportedImageFormat,
	PaletteReductionFailed:  ErrPaletteReductionFailed,
	EmptyConversionUnit:     ErrEmptyConversionUnit,
	ExternalCompilerFailure: ErrExternalCompilerFailure,
	IoFailure:               ErrIoFailure,
	MissingTexture:          ErrMissingTexture,
	InvalidEntity:           ErrInvalidEntity,
	Skipped:                 ErrSkipped,
}

// Error is a failure scoped to one conversion unit. Entity and Brush are
// -1 when unknown; Line is the 1-based source line of the brush or entity.
type Error struct {
	Kind    Kind
	Entity  int
	Brush   int
	Line    int
	Texture string
	Path    string
	Err     error
}

// New returns an Error of kind k with unknown identity.
func New(k Kind, err error) *Error {
	return &Error{Kind: k, Entity: -1, Brush: -1, Err: err}
}

// Newf is New with a formatted cause.
func Newf(k Kind, format string, args ...any) *Error {
	return New(k, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	var ids []string
	if e.Entity >= 0 {
		ids = append(ids, fmt.Sprintf("entity %d", e.Entity))
	}
	if e.Brush >= 0 {
		ids = append(ids, fmt.Sprintf("brush %d", e.Brush))
	}
	if e.Line > 0 {
		ids = append(ids, fmt.Sprintf("line %d", e.Line))
	}
	if e.Texture != "" {
		ids = append(ids, fmt.Sprintf("texture %q", e.Texture))
	}
	if e.Path != "" {
		ids = append(ids, e.Path)
	}
	if len(ids) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(ids, " "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// WithEntity sets the entity index unless it is already known.
func (e *Error) WithEntity(i int) *Error {
	if e.Entity < 0 {
		e.Entity = i
	}
	return e
}

// WithBrush sets brush identity.
func (e *Error) WithBrush(index, line int) *Error {
	e.Brush = index
	e.Line = line
	return e
}

// WithTexture sets the texture name.
func (e *Error) WithTexture(name string) *Error {
	e.Texture = name
	return e
}

// WithPath sets the file path involved.
func (e *Error) WithPath(p string) *Error {
	e.Path = p
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Unknown
}

// Wrap converts err into an *Error of kind k. An existing *Error in the
// chain is returned as a copy with its kind and identity; callers may set
// fields on the result without touching the original.
func Wrap(k Kind, err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		cp := *ce
		return &cp
	}
	return New(k, err)
}
