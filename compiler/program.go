package compiler

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/masmwriter"
)

// codeItem is one element of Program's code list: either a label marker or
// an instruction, never both.
type codeItem struct {
	label   instr.Label
	ins     instr.Instruction
	isLabel bool
}

// Program accumulates the data and code sections as a module is lowered.
// Both start empty at construction, grow during Compile, and are handed to
// an assembly writer, in order, by WriteTo.
type Program struct {
	data  []instr.Data
	codes []codeItem

	entryLabel string
	logger     *logrus.Logger
	verbose    bool

	funcNames map[string]bool
	active    *FuncCtx
}

// Option configures a Program at construction time.
type Option func(*Program) error

// EntryLabel overrides the default `start` program entry label.
func EntryLabel(name string) Option {
	return func(p *Program) error {
		if name == "" {
			return errors.New("entry label must not be empty")
		}
		p.entryLabel = name
		return nil
	}
}

// WithLogger attaches the logger used for Verbose diagnostics. The zero
// value falls back to logrus's standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Program) error {
		if l != nil {
			p.logger = l
		}
		return nil
	}
}

// Verbose enables per-instruction debug logging as the generator emits code.
func Verbose(v bool) Option {
	return func(p *Program) error { p.verbose = v; return nil }
}

// New builds a Program ready to compile a Module.
func New(opts ...Option) (*Program, error) {
	p := &Program{
		entryLabel: "start",
		logger:     logrus.StandardLogger(),
		funcNames:  make(map[string]bool),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, errors.Wrap(err, "configure compiler")
		}
	}
	return p, nil
}

func (p *Program) emit(ins instr.Instruction) {
	if p.verbose && p.active != nil {
		p.logger.Debugf("asm %s: %s", p.active.Name, ins.String())
	}
	p.codes = append(p.codes, codeItem{ins: ins})
}

func (p *Program) emitLabel(name string) {
	p.codes = append(p.codes, codeItem{label: instr.Label(name), isLabel: true})
}

// WriteTo renders the compiled program through w: the data segment, the
// code segment (entry label, prelude, every function body), and the `end`
// trailer. Call it only after a successful Compile.
func (p *Program) WriteTo(w *masmwriter.Writer) error {
	w.Assume("code", "data")

	w.OpenSegment("data")
	w.Data(instr.NewData(""))
	for _, d := range p.data {
		w.Data(d)
	}
	if err := w.CloseSegment("data"); err != nil {
		return errors.Wrap(err, "flush data segment")
	}

	w.OpenSegment("code")
	if err := w.Label(p.entryLabel); err != nil {
		return errors.Wrap(err, "emit entry label")
	}
	for _, item := range p.codes {
		if item.isLabel {
			if err := w.Label(string(item.label)); err != nil {
				return errors.Wrapf(err, "emit label %s", item.label)
			}
			continue
		}
		w.Code(item.ins)
	}
	if err := w.CloseSegment("code"); err != nil {
		return errors.Wrap(err, "flush code segment")
	}
	w.End(p.entryLabel)

	return w.Close()
}
