// Package output renders CLI messages with optional colour.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used for CLI messages.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Renderer writes messages to stdout and errors to stderr.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	styles *Styles
}

// NewRenderer creates a renderer. Colour is disabled when noColor is set or
// the environment asks for it (NO_COLOR).
func NewRenderer(out, errOut io.Writer, noColor bool) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if noColor || termenv.EnvNoColor() {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{out: out, errOut: errOut, styles: newStyles(lr)}
}

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to stdout.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to stdout.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a bold title line.
func (r *Renderer) Header(title string) {
	r.Println(r.styles.Header.Render(title))
}

// Muted writes a dimmed line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// Success writes a success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render("✓ " + msg))
}

// Error writes an error line to stderr.
func (r *Renderer) Error(err error) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: "+err.Error()))
}
