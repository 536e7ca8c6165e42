package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/mpast"
)

// reservedNames are identifiers the generator treats as builtins; a user
// function may not shadow them.
var reservedNames = map[string]bool{
	"putchar": true,
	"print":   true,
	"range":   true,
}

// Compile lowers a whole module: it registers every top-level function,
// emits the program prelude, then lowers each function body in source
// order, except main, which is lowered last. Labels are numbered per
// function, so this order does not change any label name.
func (p *Program) Compile(mod *mpast.Module) error {
	var funcs []*mpast.FunctionDef
	for _, stmt := range mod.Body {
		fn, ok := stmt.(*mpast.FunctionDef)
		if !ok {
			return errors.WithStack(&UnsupportedSyntaxError{
				Func:   "<module>",
				Detail: fmt.Sprintf("only function definitions are allowed at module scope, got %T", stmt),
			})
		}
		if reservedNames[fn.Name] {
			return errors.WithStack(&UnsupportedSyntaxError{
				Func:   fn.Name,
				Detail: fmt.Sprintf("%q is a builtin name and cannot be redefined", fn.Name),
			})
		}
		if p.funcNames[fn.Name] {
			return errors.WithStack(&UnsupportedSyntaxError{
				Func:   fn.Name,
				Detail: fmt.Sprintf("function %q is defined more than once", fn.Name),
			})
		}
		p.funcNames[fn.Name] = true
		funcs = append(funcs, fn)
	}

	if !p.funcNames["main"] {
		return errors.WithStack(&UnsupportedSyntaxError{
			Func:   "<module>",
			Detail: "module has no main function",
		})
	}

	p.emit(instr.MovI(instr.Reg(instr.AX), instr.Sym("data")))
	p.emit(instr.MovI(instr.Reg(instr.DS), instr.Reg(instr.AX)))
	p.emit(instr.JmpI("", "main"))

	var main *mpast.FunctionDef
	for _, fn := range funcs {
		if fn.Name == "main" {
			main = fn
			continue
		}
		if err := p.lowerFunction(fn); err != nil {
			return err
		}
	}
	return p.lowerFunction(main)
}

// lowerFunction emits one function's label, prologue, body and (if the body
// doesn't already end in one) an implicit bare return.
func (p *Program) lowerFunction(fn *mpast.FunctionDef) error {
	if p.active != nil {
		return errors.WithStack(&UnsupportedSyntaxError{
			Func:   fn.Name,
			Detail: "nested function definitions are not supported",
		})
	}

	ctx := NewFuncCtx(fn)
	p.active = ctx
	defer func() { p.active = nil }()

	p.emitLabel(fn.Name)
	p.emit(instr.PushI(instr.Reg(instr.BP)))
	p.emit(instr.MovI(instr.Reg(instr.BP), instr.Reg(instr.SP)))
	p.emit(instr.SubI(instr.Reg(instr.SP), instr.MustImm(2*ctx.FrameSize())))

	if err := lowerBody(ctx, p, fn.Body); err != nil {
		return errors.Wrapf(err, "function %s", fn.Name)
	}

	if !endsInReturn(fn.Body) {
		if err := lowerReturn(ctx, p, nil); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	return nil
}

func endsInReturn(body []mpast.Node) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*mpast.Return)
	return ok
}
