package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/mpast"
)

// FuncCtx holds per-function state during lowering: the frame layout (args
// and discovered locals), the label-minting counter, and the loop/break
// target stacks that continue/break jump to. It is constructed fresh at
// function entry and discarded at function exit; the generator never holds
// more than one at a time, since nested function definitions are rejected.
type FuncCtx struct {
	Name   string
	Args   []string
	Locals []string

	labelCounter int
	loopStack    []string
	breakStack   []string
}

// NewFuncCtx builds the per-function context for fn, running the Local
// Discovery Pass over its body.
func NewFuncCtx(fn *mpast.FunctionDef) *FuncCtx {
	return &FuncCtx{
		Name:   fn.Name,
		Args:   fn.Args,
		Locals: DiscoverLocals(fn),
	}
}

// paramOffset returns the [bp+d] displacement of parameter i (0-based):
// slot 0 sits at [bp+4], past the saved bp and the return address.
func paramOffset(i int) int { return 2 * (i + 2) }

// localOffset returns the [bp-d] displacement of local j (0-based): slot 0
// sits at [bp-2].
func localOffset(j int) int { return -2 * (j + 1) }

// FrameSize is the number of words the prologue reserves for locals.
func (c *FuncCtx) FrameSize() int { return len(c.Locals) }

// Resolve looks up name in args then locals and returns its frame operand.
func (c *FuncCtx) Resolve(name string) (instr.Operand, error) {
	for i, a := range c.Args {
		if a == name {
			return instr.Mem(instr.BP, paramOffset(i)), nil
		}
	}
	for j, l := range c.Locals {
		if l == name {
			return instr.Mem(instr.BP, localOffset(j)), nil
		}
	}
	return instr.Operand{}, errors.WithStack(&UnresolvedNameError{Func: c.Name, Name: name})
}

// NewLabel mints a fresh label unique within the function: `_<func>_<n>`,
// or `_<func>_<n>_<slug>` when slug is non-empty. counter increases
// monotonically so every minted label is unique across the whole program,
// since function names are validated unique at registration time.
func (c *FuncCtx) NewLabel(slug string) string {
	n := c.labelCounter
	c.labelCounter++
	if slug == "" {
		return fmt.Sprintf("_%s_%d", c.Name, n)
	}
	return fmt.Sprintf("_%s_%d_%s", c.Name, n, slug)
}

func (c *FuncCtx) pushLoop(label string)  { c.loopStack = append(c.loopStack, label) }
func (c *FuncCtx) popLoop()               { c.loopStack = c.loopStack[:len(c.loopStack)-1] }
func (c *FuncCtx) topLoop() string        { return c.loopStack[len(c.loopStack)-1] }
func (c *FuncCtx) pushBreak(label string) { c.breakStack = append(c.breakStack, label) }
func (c *FuncCtx) popBreak()              { c.breakStack = c.breakStack[:len(c.breakStack)-1] }
func (c *FuncCtx) topBreak() string       { return c.breakStack[len(c.breakStack)-1] }
