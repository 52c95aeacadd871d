package log

import (
	"io"
	"os"
	"regexp"
	"sync"
)

// ConsoleOutput writes formatted entries to a writer, one per line.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns an output writing to stderr.
func NewConsoleOutput() *ConsoleOutput { return &ConsoleOutput{w: os.Stderr} }

// NewWriterOutput returns an output writing to the provided writer.
func NewWriterOutput(w io.Writer) *ConsoleOutput { return &ConsoleOutput{w: w} }

// Write appends a newline and writes the formatted entry.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(formatted); err != nil {
		return err
	}
	_, err := o.w.Write([]byte{'\n'})
	return err
}

// Close is a no-op for console outputs.
func (o *ConsoleOutput) Close() error { return nil }

// NullOutput discards all entries. Useful in tests.
type NullOutput struct{}

func (NullOutput) Write(*Entry, []byte) error { return nil }
func (NullOutput) Close() error               { return nil }

// MaskingOutput wraps another output and masks secret-shaped substrings in
// the formatted bytes before they are written. Because it operates on the
// rendered line, it covers messages and field values from every component.
type MaskingOutput struct {
	inner       Output
	pattern     *regexp.Regexp
	replacement []byte
}

// NewMaskingOutput wraps inner so that every match of pattern is replaced by
// replacement before the line is emitted.
func NewMaskingOutput(inner Output, pattern *regexp.Regexp, replacement string) *MaskingOutput {
	return &MaskingOutput{inner: inner, pattern: pattern, replacement: []byte(replacement)}
}

// Write masks and forwards the formatted entry.
func (o *MaskingOutput) Write(entry *Entry, formatted []byte) error {
	return o.inner.Write(entry, o.pattern.ReplaceAll(formatted, o.replacement))
}

// Close closes the wrapped output.
func (o *MaskingOutput) Close() error { return o.inner.Close() }
