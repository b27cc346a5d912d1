// Package input binds free-text entry buffers to typed numeric values.
//
// A Field is the single owner of an entry's state: the raw text, the result of
// parsing it, and the validity flag derived from that result. The edit handler
// and the renderer share the same *Field, so they can never disagree. Fields are
// not safe for concurrent use; the application processes events one at a time.
package input

import "fmt"

// Parser converts entry text into a typed value.
type Parser[T any] func(text string) (T, error)

// Style selects how an entry is drawn.
type Style string

const (
	StyleOK    Style = "ok"    // buffer parsed, drawn normally
	StyleError Style = "error" // buffer rejected, drawn with the error style
)

// View is a snapshot of a Field for rendering.
type View struct {
	Text  string `json:"text"`
	Valid bool   `json:"valid"`
	Style Style  `json:"style"`
	Error string `json:"error,omitempty"`
}

// Field is an editable text value paired with its most recent parse result.
type Field[T any] struct {
	parse  Parser[T]
	text   string
	parsed T
	valid  bool
	err    error
}

// NewField returns a valid field whose buffer shows initial.
func NewField[T any](initial T, parse Parser[T]) *Field[T] {
	return &Field[T]{
		parse:  parse,
		text:   fmt.Sprint(initial),
		parsed: initial,
		valid:  true,
	}
}

// NewFieldText returns a field whose buffer holds text, parsed as if the user
// had typed it.
func NewFieldText[T any](text string, parse Parser[T]) *Field[T] {
	f := &Field[T]{parse: parse}
	f.Edit(text)
	return f
}

// Edit replaces the buffer with text and parses it. It returns the parsed
// value and whether parsing succeeded. On failure the zero value is returned
// and the buffer still holds the rejected text.
func (f *Field[T]) Edit(text string) (T, bool) {
	v, err := f.parse(text)
	if err != nil {
		var zero T
		f.text, f.parsed, f.valid, f.err = text, zero, false, err
		return zero, false
	}
	f.text, f.parsed, f.valid, f.err = text, v, true, nil
	return v, true
}

// Set replaces the buffer with the text of v, as NewField does. It is used
// when the value changes without going through the entry.
func (f *Field[T]) Set(v T) {
	f.text, f.parsed, f.valid, f.err = fmt.Sprint(v), v, true, nil
}

// Text returns the current buffer.
func (f *Field[T]) Text() string { return f.text }

// Valid reports whether the buffer parsed successfully.
func (f *Field[T]) Valid() bool { return f.valid }

// Parsed returns the value parsed from the current buffer, if any.
func (f *Field[T]) Parsed() (T, bool) { return f.parsed, f.valid }

// Err returns the parse error for the current buffer, or nil.
func (f *Field[T]) Err() error { return f.err }

// Style returns the drawing style matching the field's validity.
func (f *Field[T]) Style() Style {
	if f.valid {
		return StyleOK
	}
	return StyleError
}

// View returns a snapshot of the field.
func (f *Field[T]) View() View {
	v := View{Text: f.text, Valid: f.valid, Style: f.Style()}
	if f.err != nil {
		v.Error = f.err.Error()
	}
	return v
}
