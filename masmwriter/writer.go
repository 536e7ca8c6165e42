// Package masmwriter renders a compiled program as MASM-dialect assembly
// text. It buffers instructions between structural events (labels, segment
// closes) and runs the peephole optimizer over each buffered batch before
// printing it, per spec §4.6.
package masmwriter

import (
	"fmt"
	"io"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/internal/ngi"
	"github.com/EndlessCheng/mpython/optimize"
)

const tab = "    "

// Writer accepts segment/label/instruction/data events and renders them to
// an underlying io.Writer. It is not safe for concurrent use; the generator
// only ever drives one Writer, sequentially, per spec §5.
type Writer struct {
	ew       *ngi.ErrWriter
	optimize bool
	batch    []instr.Instruction
}

// Option configures a Writer at construction time.
type Option func(*Writer)

// Optimize toggles the peephole passes. Enabled by default; disabling it
// prints each batch verbatim, useful for debugging codegen output directly.
func Optimize(v bool) Option {
	return func(w *Writer) { w.optimize = v }
}

// New builds a Writer over w.
func New(w io.Writer, opts ...Option) *Writer {
	mw := &Writer{ew: ngi.NewErrWriter(w), optimize: true}
	for _, opt := range opts {
		opt(mw)
	}
	return mw
}

// Assume emits the `assume cs:.., ds:..` line and a trailing blank line.
func (w *Writer) Assume(csSegment, dsSegment string) {
	fmt.Fprintf(w.ew, "assume cs:%s, ds:%s\n\n", csSegment, dsSegment)
}

// OpenSegment emits a `<name> segment` header.
func (w *Writer) OpenSegment(name string) {
	fmt.Fprintf(w.ew, "%s segment\n", name)
}

// CloseSegment flushes any pending batch, then emits `<name> ends` followed
// by a blank line.
func (w *Writer) CloseSegment(name string) error {
	if err := w.flush(); err != nil {
		return err
	}
	fmt.Fprintf(w.ew, "%s ends\n\n", name)
	return w.ew.Err
}

// Data emits one `db` directive, indented.
func (w *Writer) Data(d instr.Data) {
	fmt.Fprintf(w.ew, "%s%s\n", tab, d.String())
}

// Label flushes any pending batch, then emits `<name>:`.
func (w *Writer) Label(name string) error {
	if err := w.flush(); err != nil {
		return err
	}
	fmt.Fprintf(w.ew, "%s:\n", name)
	return w.ew.Err
}

// Code buffers one instruction into the current batch; it is not rendered
// until the next Label or CloseSegment flushes it.
func (w *Writer) Code(ins instr.Instruction) {
	w.batch = append(w.batch, ins)
}

// End emits the `end <entry>` trailer naming the program's entry label.
func (w *Writer) End(entry string) {
	fmt.Fprintf(w.ew, "end %s\n", entry)
}

// Close reports the first write error encountered, if any.
func (w *Writer) Close() error {
	return w.ew.Err
}

func (w *Writer) flush() error {
	batch := w.batch
	if w.optimize {
		batch = optimize.Batch(batch)
	}
	for _, ins := range batch {
		fmt.Fprintf(w.ew, "%s%s\n", tab, ins.String())
	}
	w.batch = nil
	return w.ew.Err
}
