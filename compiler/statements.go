package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/mpast"
)

func lowerBody(ctx *FuncCtx, prog *Program, body []mpast.Node) error {
	for _, stmt := range body {
		if err := lowerStmt(ctx, prog, stmt); err != nil {
			return err
		}
	}
	return nil
}

func lowerStmt(ctx *FuncCtx, prog *Program, node mpast.Node) error {
	switch s := node.(type) {
	case *mpast.Assign:
		return lowerAssign(ctx, prog, s)
	case *mpast.AugAssign:
		return lowerAugAssign(ctx, prog, s)
	case *mpast.Expr:
		return lowerExprStmt(ctx, prog, s)
	case *mpast.If:
		return lowerIf(ctx, prog, s)
	case *mpast.While:
		return lowerWhile(ctx, prog, s)
	case *mpast.For:
		return lowerFor(ctx, prog, s)
	case *mpast.Break:
		return lowerBreak(ctx, prog)
	case *mpast.Continue:
		return lowerContinue(ctx, prog)
	case *mpast.Return:
		return lowerReturn(ctx, prog, s.Value)
	case *mpast.Pass:
		return nil
	case *mpast.Ellipsis:
		return nil
	default:
		return ctx.unsupported(fmt.Sprintf("%T not supported as a statement", node))
	}
}

// lowerAssign lowers `x = e`: `pop ax; mov [bp±off(x)], ax` after e.
func lowerAssign(ctx *FuncCtx, prog *Program, s *mpast.Assign) error {
	if err := lowerExpr(ctx, prog, s.Value); err != nil {
		return err
	}
	opr, err := ctx.Resolve(s.Target)
	if err != nil {
		return err
	}
	prog.emit(instr.PopI(instr.Reg(instr.AX)))
	prog.emit(instr.MovI(opr, instr.Reg(instr.AX)))
	return nil
}

// lowerAugAssign lowers `x op= e`: push x, push e, apply op (leaves the
// result pushed), then pop straight into x's slot.
func lowerAugAssign(ctx *FuncCtx, prog *Program, s *mpast.AugAssign) error {
	target, err := ctx.Resolve(s.Target)
	if err != nil {
		return err
	}
	prog.emit(instr.PushI(target))
	if err := lowerExpr(ctx, prog, s.Value); err != nil {
		return err
	}
	if err := applyBinOp(ctx, prog, s.Op); err != nil {
		return err
	}
	prog.emit(instr.PopI(target))
	return nil
}

// lowerExprStmt lowers an expression used as a statement. putchar/print are
// recognized specially here (they emit no stack residue); any other
// expression is lowered generally and its value is left unpopped — the
// source's accepted leak, preserved for output parity (see DESIGN.md).
func lowerExprStmt(ctx *FuncCtx, prog *Program, s *mpast.Expr) error {
	if call, ok := s.Value.(*mpast.Call); ok {
		switch call.Func {
		case "putchar":
			return putchar(ctx, prog, call.Args)
		case "print":
			return printStmt(ctx, prog, call.Args, call.Keywords)
		}
	}
	return lowerExpr(ctx, prog, s.Value)
}

func lowerIf(ctx *FuncCtx, prog *Program, s *mpast.If) error {
	if err := lowerExpr(ctx, prog, s.Test); err != nil {
		return err
	}
	elseLabel := ctx.NewLabel("else")
	prog.emit(instr.PopI(instr.Reg(instr.BX)))
	prog.emit(instr.CmpI(instr.Reg(instr.BX), instr.MustImm(0)))
	prog.emit(instr.I1(instr.Jz, instr.Sym(elseLabel)))

	if err := lowerBody(ctx, prog, s.Body); err != nil {
		return err
	}

	if len(s.Orelse) > 0 {
		endLabel := ctx.NewLabel("end")
		prog.emit(instr.JmpI("", endLabel))
		prog.emitLabel(elseLabel)
		if err := lowerBody(ctx, prog, s.Orelse); err != nil {
			return err
		}
		prog.emitLabel(endLabel)
	} else {
		prog.emitLabel(elseLabel)
	}
	return nil
}

func lowerWhile(ctx *FuncCtx, prog *Program, s *mpast.While) error {
	whileLabel := ctx.NewLabel("while")
	breakLabel := ctx.NewLabel("break")

	prog.emitLabel(whileLabel)
	if err := lowerExpr(ctx, prog, s.Test); err != nil {
		return err
	}
	prog.emit(instr.PopI(instr.Reg(instr.BX)))
	prog.emit(instr.CmpI(instr.Reg(instr.BX), instr.MustImm(0)))
	prog.emit(instr.I1(instr.Jz, instr.Sym(breakLabel)))

	ctx.pushLoop(whileLabel)
	ctx.pushBreak(breakLabel)
	err := lowerBody(ctx, prog, s.Body)
	ctx.popLoop()
	ctx.popBreak()
	if err != nil {
		return err
	}

	prog.emit(instr.JmpI("", whileLabel))
	prog.emitLabel(breakLabel)
	return nil
}

// lowerFor desugars `for i in range(...): body` to
// `i = start; while i cmp stop: body; i += step`, with continue branching
// to a dedicated increment label rather than skipping the increment.
func lowerFor(ctx *FuncCtx, prog *Program, s *mpast.For) error {
	if s.Iter == nil || s.Iter.Func != "range" {
		return ctx.unsupported("for loops require a range() iterator")
	}
	if len(s.Iter.Keywords) != 0 {
		return errors.WithStack(&RangeError{Func: ctx.Name, Detail: "range() does not accept keyword arguments"})
	}

	var startNode, stopNode, stepNode mpast.Node
	switch len(s.Iter.Args) {
	case 1:
		stopNode = s.Iter.Args[0]
	case 2:
		startNode, stopNode = s.Iter.Args[0], s.Iter.Args[1]
	case 3:
		startNode, stopNode, stepNode = s.Iter.Args[0], s.Iter.Args[1], s.Iter.Args[2]
	default:
		return errors.WithStack(&RangeError{Func: ctx.Name, Detail: "range() takes 1 to 3 arguments"})
	}

	step := 1
	if stepNode != nil {
		v, ok := evalConstInt(stepNode)
		if !ok {
			return errors.WithStack(&RangeError{Func: ctx.Name, Detail: "range() step must be an integer literal"})
		}
		if v == 0 {
			return errors.WithStack(&RangeError{Func: ctx.Name, Detail: "range() step must not be zero"})
		}
		step = v
	}

	target, err := ctx.Resolve(s.Target)
	if err != nil {
		return err
	}

	if startNode != nil {
		if err := lowerExpr(ctx, prog, startNode); err != nil {
			return err
		}
	} else if err := pushLiteral(ctx, prog, 0); err != nil {
		return err
	}
	prog.emit(instr.PopI(instr.Reg(instr.AX)))
	prog.emit(instr.MovI(target, instr.Reg(instr.AX)))

	whileLabel := ctx.NewLabel("for")
	incLabel := ctx.NewLabel("inc")
	breakLabel := ctx.NewLabel("break")

	cmpOp := mpast.Lt
	if step < 0 {
		cmpOp = mpast.Gt
	}
	test := &mpast.Compare{Left: &mpast.Name{Id: s.Target}, Op: cmpOp, Right: stopNode}

	prog.emitLabel(whileLabel)
	if err := lowerExpr(ctx, prog, test); err != nil {
		return err
	}
	prog.emit(instr.PopI(instr.Reg(instr.BX)))
	prog.emit(instr.CmpI(instr.Reg(instr.BX), instr.MustImm(0)))
	prog.emit(instr.I1(instr.Jz, instr.Sym(breakLabel)))

	ctx.pushLoop(incLabel)
	ctx.pushBreak(breakLabel)
	err = lowerBody(ctx, prog, s.Body)
	ctx.popLoop()
	ctx.popBreak()
	if err != nil {
		return err
	}

	prog.emitLabel(incLabel)
	prog.emit(instr.PushI(target))
	if err := pushLiteral(ctx, prog, step); err != nil {
		return err
	}
	if err := applyBinOp(ctx, prog, mpast.Add); err != nil {
		return err
	}
	prog.emit(instr.PopI(target))
	prog.emit(instr.JmpI("", whileLabel))
	prog.emitLabel(breakLabel)
	return nil
}

func lowerBreak(ctx *FuncCtx, prog *Program) error {
	if len(ctx.breakStack) == 0 {
		return ctx.unsupported("break outside a loop")
	}
	prog.emit(instr.JmpI("", ctx.topBreak()))
	return nil
}

func lowerContinue(ctx *FuncCtx, prog *Program) error {
	if len(ctx.loopStack) == 0 {
		return ctx.unsupported("continue outside a loop")
	}
	prog.emit(instr.JmpI("", ctx.topLoop()))
	return nil
}

// lowerReturn lowers `return [value]`. Inside main it emits the program
// exit sequence (the literal return value becomes the DOS exit code);
// elsewhere it pops the value into ax and runs the epilogue.
func lowerReturn(ctx *FuncCtx, prog *Program, value mpast.Node) error {
	if ctx.Name == "main" {
		code := 0
		if value != nil {
			v, ok := evalConstInt(value)
			if !ok {
				return ctx.unsupported("main's return value must be an integer literal")
			}
			code = v
		}
		if code < -128 || code > 127 {
			return errors.WithStack(&ReturnOutOfRangeError{Value: code})
		}
		imm, err := instr.Imm(0x4C00 + code)
		if err != nil {
			return errors.WithStack(&ImmediateOverflowError{Func: ctx.Name, Value: code})
		}
		prog.emit(instr.MovI(instr.Reg(instr.AX), imm))
		prog.emit(instr.IntI(0x21))
		return nil
	}

	if value != nil {
		if err := lowerExpr(ctx, prog, value); err != nil {
			return err
		}
		prog.emit(instr.PopI(instr.Reg(instr.AX)))
	}
	prog.emit(instr.MovI(instr.Reg(instr.SP), instr.Reg(instr.BP)))
	prog.emit(instr.PopI(instr.Reg(instr.BP)))
	prog.emit(instr.RetI(0))
	return nil
}
