package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/mpast"
)

// lowerExpr lowers node in a stack-machine style: it leaves exactly one
// 16-bit word representing the expression's value pushed on the machine
// stack.
func lowerExpr(ctx *FuncCtx, prog *Program, node mpast.Node) error {
	switch n := node.(type) {
	case *mpast.Num:
		return pushLiteral(ctx, prog, n.N)

	case *mpast.NameConstant:
		switch n.Value {
		case mpast.FalseConst, mpast.NoneConst:
			return pushLiteral(ctx, prog, 0)
		case mpast.TrueConst:
			return pushLiteral(ctx, prog, 1)
		default:
			return ctx.unsupported(fmt.Sprintf("name constant %q not supported", n.Value))
		}

	case *mpast.Str:
		runes := []rune(n.S)
		if len(runes) != 1 {
			return ctx.unsupported("string literal must be a single character outside print()")
		}
		return pushLiteral(ctx, prog, int(runes[0]))

	case *mpast.Name:
		opr, err := ctx.Resolve(n.Id)
		if err != nil {
			return err
		}
		prog.emit(instr.PushI(opr))
		return nil

	case *mpast.UnaryOp:
		if n.Op != mpast.USub {
			return ctx.unsupported(fmt.Sprintf("unary operator %q not supported", n.Op))
		}
		if err := pushLiteral(ctx, prog, 0); err != nil {
			return err
		}
		if err := lowerExpr(ctx, prog, n.Operand); err != nil {
			return err
		}
		return lowerBinaryPop(prog, instr.Sub)

	case *mpast.BinOp:
		if err := lowerExpr(ctx, prog, n.Left); err != nil {
			return err
		}
		if err := lowerExpr(ctx, prog, n.Right); err != nil {
			return err
		}
		return applyBinOp(ctx, prog, n.Op)

	case *mpast.BoolOp:
		return lowerBoolOp(ctx, prog, n)

	case *mpast.Compare:
		return lowerCompare(ctx, prog, n)

	case *mpast.Call:
		return lowerCallExpr(ctx, prog, n)

	default:
		return ctx.unsupported(fmt.Sprintf("%T not supported in expression position", node))
	}
}

// pushLiteral lowers an integer literal: `mov ax, n; push ax`.
func pushLiteral(ctx *FuncCtx, prog *Program, n int) error {
	imm, err := instr.Imm(n)
	if err != nil {
		return errors.WithStack(&ImmediateOverflowError{Func: ctx.Name, Value: n})
	}
	prog.emit(instr.MovI(instr.Reg(instr.AX), imm))
	prog.emit(instr.PushI(instr.Reg(instr.AX)))
	return nil
}

// lowerBinaryPop assumes both operands are already pushed (left then
// right) and applies `pop dx; pop ax; op ax, dx; push ax`, the lowering
// shared by +, -, &, |, ^ and unary minus.
func lowerBinaryPop(prog *Program, op instr.Mnemonic) error {
	prog.emit(instr.PopI(instr.Reg(instr.DX)))
	prog.emit(instr.PopI(instr.Reg(instr.AX)))
	prog.emit(instr.I2(op, instr.Reg(instr.AX), instr.Reg(instr.DX)))
	prog.emit(instr.PushI(instr.Reg(instr.AX)))
	return nil
}

// applyBinOp assumes both operands of op are already pushed (left then
// right) and emits the instruction sequence that pops them, computes the
// result and pushes it back — the operator half of BinOp/AugAssign
// lowering, shared by both.
func applyBinOp(ctx *FuncCtx, prog *Program, op mpast.BinOpKind) error {
	switch op {
	case mpast.Add:
		return lowerBinaryPop(prog, instr.Add)
	case mpast.Sub:
		return lowerBinaryPop(prog, instr.Sub)
	case mpast.BitAnd:
		return lowerBinaryPop(prog, instr.And)
	case mpast.BitOr:
		return lowerBinaryPop(prog, instr.Or)
	case mpast.BitXor:
		return lowerBinaryPop(prog, instr.Xor)

	case mpast.Mult:
		prog.emit(instr.PopI(instr.Reg(instr.DX)))
		prog.emit(instr.PopI(instr.Reg(instr.AX)))
		prog.emit(instr.MulI(instr.Reg(instr.DX)))
		prog.emit(instr.PushI(instr.Reg(instr.AX)))
		return nil

	case mpast.FloorDiv:
		prog.emit(instr.PopI(instr.Reg(instr.BX)))
		prog.emit(instr.XorI(instr.Reg(instr.DX), instr.Reg(instr.DX)))
		prog.emit(instr.PopI(instr.Reg(instr.AX)))
		prog.emit(instr.DivI(instr.Reg(instr.BX)))
		prog.emit(instr.PushI(instr.Reg(instr.AX)))
		return nil

	case mpast.Mod:
		prog.emit(instr.PopI(instr.Reg(instr.BX)))
		prog.emit(instr.XorI(instr.Reg(instr.DX), instr.Reg(instr.DX)))
		prog.emit(instr.PopI(instr.Reg(instr.AX)))
		prog.emit(instr.DivI(instr.Reg(instr.BX)))
		prog.emit(instr.PushI(instr.Reg(instr.DX)))
		return nil

	case mpast.LShift, mpast.RShift:
		prog.emit(instr.PopI(instr.Reg(instr.CX)))
		prog.emit(instr.PopI(instr.Reg(instr.DX)))
		shiftOp := instr.Sal
		if op == mpast.RShift {
			shiftOp = instr.Sar
		}
		prog.emit(instr.ShiftByCL(shiftOp, instr.Reg(instr.DX)))
		prog.emit(instr.PushI(instr.Reg(instr.DX)))
		return nil

	default:
		return ctx.unsupported(fmt.Sprintf("binary operator %q not supported", op))
	}
}

// lowerBoolOp treats and/or as bitwise, folding left-to-right across
// Values — the source's quirk, preserved deliberately (see DESIGN.md).
func lowerBoolOp(ctx *FuncCtx, prog *Program, n *mpast.BoolOp) error {
	if len(n.Values) == 0 {
		return ctx.unsupported("boolean operator requires at least one operand")
	}
	op := instr.And
	if n.Op == mpast.Or {
		op = instr.Or
	}
	if err := lowerExpr(ctx, prog, n.Values[0]); err != nil {
		return err
	}
	for _, v := range n.Values[1:] {
		if err := lowerExpr(ctx, prog, v); err != nil {
			return err
		}
		if err := lowerBinaryPop(prog, op); err != nil {
			return err
		}
	}
	return nil
}

// lowerCompare lowers a single comparison: `mov bx, 1; pop dx; pop ax;
// cmp ax, dx; Jcc L_true; dec bx; L_true: push bx`.
func lowerCompare(ctx *FuncCtx, prog *Program, n *mpast.Compare) error {
	if err := lowerExpr(ctx, prog, n.Left); err != nil {
		return err
	}
	if err := lowerExpr(ctx, prog, n.Right); err != nil {
		return err
	}
	label := ctx.NewLabel("true")
	prog.emit(instr.MovI(instr.Reg(instr.BX), instr.MustImm(1)))
	prog.emit(instr.PopI(instr.Reg(instr.DX)))
	prog.emit(instr.PopI(instr.Reg(instr.AX)))
	prog.emit(instr.CmpI(instr.Reg(instr.AX), instr.Reg(instr.DX)))
	switch n.Op {
	case mpast.Eq:
		prog.emit(instr.JeI(label))
	case mpast.NotEq:
		prog.emit(instr.JneI(label))
	case mpast.Lt:
		prog.emit(instr.JbI(label))
	case mpast.LtE:
		prog.emit(instr.JbeI(label))
	case mpast.Gt:
		prog.emit(instr.JaI(label))
	case mpast.GtE:
		prog.emit(instr.JaeI(label))
	default:
		return ctx.unsupported(fmt.Sprintf("comparison operator %q not supported (multi-comparison chains are rejected)", n.Op))
	}
	prog.emit(instr.DecI(instr.Reg(instr.BX)))
	prog.emitLabel(label)
	prog.emit(instr.PushI(instr.Reg(instr.BX)))
	return nil
}

// lowerCallExpr lowers a call used as a value: push arguments in reverse
// order, call, rewind the caller-cleaned stack, then push ax (the return
// value) to satisfy the expression invariant. putchar/print never produce
// a usable value and are only valid as expression statements.
func lowerCallExpr(ctx *FuncCtx, prog *Program, n *mpast.Call) error {
	switch n.Func {
	case "putchar", "print":
		return ctx.unsupported(fmt.Sprintf("%s() does not produce a value", n.Func))
	case "range":
		return ctx.unsupported("range() is only valid as a for-loop iterator")
	}
	if len(n.Keywords) != 0 {
		return ctx.unsupported("keyword arguments are only supported by print()")
	}
	if !prog.funcNames[n.Func] {
		return errors.WithStack(&UnresolvedNameError{Func: ctx.Name, Name: n.Func})
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		if err := lowerExpr(ctx, prog, n.Args[i]); err != nil {
			return err
		}
	}
	prog.emit(instr.CallI(n.Func))
	if len(n.Args) > 0 {
		prog.emit(instr.AddI(instr.Reg(instr.SP), instr.MustImm(2*len(n.Args))))
	}
	prog.emit(instr.PushI(instr.Reg(instr.AX)))
	return nil
}

// evalConstInt evaluates a compile-time integer literal, possibly wrapped
// in a single unary minus. Anything else reports ok=false.
func evalConstInt(node mpast.Node) (int, bool) {
	switch n := node.(type) {
	case *mpast.Num:
		return n.N, true
	case *mpast.UnaryOp:
		if n.Op != mpast.USub {
			return 0, false
		}
		v, ok := evalConstInt(n.Operand)
		if !ok {
			return 0, false
		}
		return -v, true
	default:
		return 0, false
	}
}
