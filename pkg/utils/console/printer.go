package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes colour-coded, user facing messages
type Printer struct {
	w       io.Writer
	info    *color.Color
	success *color.Color
	failure *color.Color
}

// Option is a functional option for Printer configuration
type Option func(*Printer)

// WithWriter sets the output destination
func WithWriter(w io.Writer) Option {
	return func(p *Printer) {
		p.w = w
	}
}

// WithoutColor disables ANSI colour sequences regardless of the terminal
func WithoutColor() Option {
	return func(p *Printer) {
		p.info.DisableColor()
		p.success.DisableColor()
		p.failure.DisableColor()
	}
}

// New creates a Printer writing to stdout by default
func New(opts ...Option) *Printer {
	p := &Printer{
		w:       os.Stdout,
		info:    color.New(color.FgYellow),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Info prints "INFO: <msg>" in yellow
func (p *Printer) Info(format string, args ...any) {
	p.info.Fprintln(p.w, "INFO: "+fmt.Sprintf(format, args...))
}

// Success prints msg in green
func (p *Printer) Success(format string, args ...any) {
	p.success.Fprintln(p.w, fmt.Sprintf(format, args...))
}

// Error prints "ERROR: <msg>" in red
func (p *Printer) Error(format string, args ...any) {
	p.failure.Fprintln(p.w, "ERROR: "+fmt.Sprintf(format, args...))
}

// Println prints an uncoloured line
func (p *Printer) Println(format string, args ...any) {
	fmt.Fprintln(p.w, fmt.Sprintf(format, args...))
}
