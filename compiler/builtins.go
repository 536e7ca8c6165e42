package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/mpast"
)

// putchar lowers `putchar(expr)`: expr is lowered through the general
// expression path and popped into ax. For the common case of a bare
// variable, this degenerates to the source's direct `mov ax, [bp+off]` once
// the push/pop collapse peephole removes the intervening push/pop — the
// general form additionally covers arithmetic arguments like `putchar(g +
// 97)` (see DESIGN.md).
func putchar(ctx *FuncCtx, prog *Program, args []mpast.Node) error {
	if len(args) != 1 {
		return ctx.unsupported("putchar() takes exactly one argument")
	}
	if err := lowerExpr(ctx, prog, args[0]); err != nil {
		return err
	}
	prog.emit(instr.PopI(instr.Reg(instr.AX)))
	prog.emit(instr.MovI(instr.Reg(instr.DL), instr.Reg(instr.AL)))
	prog.emit(instr.MovI(instr.Reg(instr.AH), instr.MustImm(2)))
	prog.emit(instr.IntI(0x21))
	return nil
}

// printStmt lowers `print(*args, sep=..., end=...)`. Positional args are
// rendered to text (strings verbatim, numbers via decimal), joined by sep
// and stored as one data item alongside the end terminator and the DOS
// string-output `$` sentinel.
//
// The default end renders as two raw data bytes (0ah, 0dh); a caller-
// supplied end renders as a single quoted data argument instead of being
// split into bytes. That asymmetry matches the source exactly and is
// preserved rather than normalized — see DESIGN.md.
func printStmt(ctx *FuncCtx, prog *Program, args []mpast.Node, kws []mpast.Keyword) error {
	sep := " "
	var endArgs []instr.DataArg
	customEnd := false

	for _, kw := range kws {
		switch kw.Arg {
		case "sep":
			s, ok := kw.Value.(*mpast.Str)
			if !ok {
				return ctx.unsupported("print()'s sep keyword must be a string literal")
			}
			sep = s.S
		case "end":
			s, ok := kw.Value.(*mpast.Str)
			if !ok {
				return ctx.unsupported("print()'s end keyword must be a string literal")
			}
			endArgs = []instr.DataArg{instr.Text(s.S)}
			customEnd = true
		default:
			return ctx.unsupported(fmt.Sprintf("print() keyword %q not supported", kw.Arg))
		}
	}
	if !customEnd {
		endArgs = []instr.DataArg{instr.MustByte('\n'), instr.MustByte('\r')}
	}

	parts := make([]string, len(args))
	for i, a := range args {
		switch e := a.(type) {
		case *mpast.Str:
			parts[i] = e.S
		case *mpast.Num:
			parts[i] = strconv.Itoa(e.N)
		default:
			return ctx.unsupported(fmt.Sprintf("%T not supported as a print() argument", a))
		}
	}

	dataArgs := append([]instr.DataArg{instr.Text(strings.Join(parts, sep))}, endArgs...)
	dataArgs = append(dataArgs, instr.Text("$"))

	dataName := fmt.Sprintf("data%d", len(prog.data))
	prog.data = append(prog.data, instr.NewData(dataName, dataArgs...))

	prog.emit(instr.MovI(instr.Reg(instr.DX), instr.Offset(dataName)))
	prog.emit(instr.MovI(instr.Reg(instr.AH), instr.MustImm(9)))
	prog.emit(instr.IntI(0x21))
	return nil
}
