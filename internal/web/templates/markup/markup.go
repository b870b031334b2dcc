// Package markup writes HTML for hand-written templ components.
package markup

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer accumulates the first write error so components can emit markup
// without checking every call
type Writer struct {
	w   io.Writer
	err error
}

func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as is
func (m *Writer) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Rawf formats trusted markup; args must not carry user input
func (m *Writer) Rawf(format string, args ...any) {
	m.Raw(fmt.Sprintf(format, args...))
}

// Text writes s escaped for element content or a quoted attribute value
func (m *Writer) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Textf formats then escapes
func (m *Writer) Textf(format string, args ...any) {
	m.Text(fmt.Sprintf(format, args...))
}

// If writes s only when cond holds
func (m *Writer) If(cond bool, s string) {
	if cond {
		m.Raw(s)
	}
}

// Component renders c in place
func (m *Writer) Component(ctx context.Context, c templ.Component) {
	if m.err != nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

func (m *Writer) Err() error {
	return m.err
}
