package compiler

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnsupportedSyntaxError reports an AST construct outside the accepted
// subset: nested functions, multi-comparison chains, non-range for
// iterators, a unary operator other than USub, non-literal print()
// arguments, and so on.
type UnsupportedSyntaxError struct {
	Func   string
	Detail string
}

func (e *UnsupportedSyntaxError) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("unsupported syntax: %s", e.Detail)
	}
	return fmt.Sprintf("unsupported syntax in %s: %s", e.Func, e.Detail)
}

func unsupportedError(funcName, detail string) error {
	return errors.WithStack(&UnsupportedSyntaxError{Func: funcName, Detail: detail})
}

func (c *FuncCtx) unsupported(detail string) error {
	return unsupportedError(c.Name, detail)
}

// UnresolvedNameError reports a reference to a name not in args ∪ locals,
// or a call to a function that was never defined.
type UnresolvedNameError struct {
	Func string
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("undefined name %q referenced in %s", e.Name, e.Func)
}

// RangeError reports an invalid range() call: a zero or non-literal step,
// or the wrong number of arguments.
type RangeError struct {
	Func   string
	Detail string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range() call in %s: %s", e.Func, e.Detail)
}

// ImmediateOverflowError reports an integer literal outside the range its
// context permits (16 bits in code, 8 bits in a data byte).
type ImmediateOverflowError struct {
	Func  string
	Value int
}

func (e *ImmediateOverflowError) Error() string {
	return fmt.Sprintf("immediate %d out of range in %s", e.Value, e.Func)
}

// ReturnOutOfRangeError reports main() returning an exit code outside the
// DOS process-exit-code range -128..127.
type ReturnOutOfRangeError struct {
	Value int
}

func (e *ReturnOutOfRangeError) Error() string {
	return fmt.Sprintf("main() return value %d is out of range -128..127", e.Value)
}
