package instr

import (
	"strconv"

	"github.com/pkg/errors"
)

// Register is one of the 16-bit x86 registers or 8-bit halves this model
// supports.
type Register string

// Supported registers.
const (
	AX Register = "ax"
	BX Register = "bx"
	CX Register = "cx"
	DX Register = "dx"
	BP Register = "bp"
	SP Register = "sp"
	DS Register = "ds"
	SS Register = "ss"
	AL Register = "al"
	AH Register = "ah"
	CL Register = "cl"
	DL Register = "dl"
)

// ErrImmediateOverflow is returned when an immediate value does not fit a
// code operand (MinCodeImmediate..MaxCodeImmediate). Data bytes report
// ErrDataByteOverflow instead.
var ErrImmediateOverflow = errors.New("immediate value out of range")

// MinCodeImmediate and MaxCodeImmediate bound immediates used as code
// operands. The lower bound allows the two's-complement encoding of small
// negative constants (e.g. -1) that the peephole optimizer's strength
// reduction patterns match against; the upper bound is the full unsigned
// 16-bit range.
const (
	MinCodeImmediate = -0x8000
	MaxCodeImmediate = 0xFFFF
	MaxDataByte       = 0xFF
)

type operandKind int

const (
	kindRegister operandKind = iota
	kindImmediate
	kindSymbol
	kindMemory
)

// Operand is a tagged value representing one instruction argument. The zero
// Operand is not valid; construct one with Reg, Imm, Sym, Offset or Mem.
type Operand struct {
	kind operandKind
	reg  Register
	imm  int32
	sym  string
	base Register
	disp int32
	seg  string // non-empty only on a Mov source canonicalized with ds:
}

// Reg returns a register operand.
func Reg(r Register) Operand {
	return Operand{kind: kindRegister, reg: r}
}

// Imm returns an immediate operand. It returns ErrImmediateOverflow if v
// does not fit a 16-bit code immediate.
func Imm(v int) (Operand, error) {
	if v < MinCodeImmediate || v > MaxCodeImmediate {
		return Operand{}, errors.Wrapf(ErrImmediateOverflow, "code immediate %d", v)
	}
	return Operand{kind: kindImmediate, imm: int32(v)}, nil
}

// MustImm is like Imm but panics on overflow. Reserved for immediates whose
// range is guaranteed by the caller (e.g. fixed interrupt numbers).
func MustImm(v int) Operand {
	o, err := Imm(v)
	if err != nil {
		panic(err)
	}
	return o
}

// Sym returns a bare symbolic operand: a segment name, label name or any
// other already-formatted textual operand (e.g. a jmp distance qualifier
// plus target).
func Sym(name string) Operand {
	return Operand{kind: kindSymbol, sym: name}
}

// Offset returns the `offset name` symbolic operand used to take the
// address of a label or data item.
func Offset(name string) Operand {
	return Sym("offset " + name)
}

// Mem returns a [base±disp] memory operand. The only base this generator
// ever addresses through is bp, but the type does not enforce that so the
// model stays general.
func Mem(base Register, disp int) Operand {
	return Operand{kind: kindMemory, base: base, disp: int32(disp)}
}

// IsMemory reports whether o is a bare (uncanonicalized) memory operand.
func (o Operand) IsMemory() bool { return o.kind == kindMemory && o.seg == "" }

// IsImmediate reports whether o is an immediate operand, and its value.
func (o Operand) IsImmediate() (int, bool) {
	if o.kind != kindImmediate {
		return 0, false
	}
	return int(o.imm), true
}

// IsRegister reports whether o is a register operand, and which one.
func (o Operand) IsRegister() (Register, bool) {
	if o.kind != kindRegister {
		return "", false
	}
	return o.reg, true
}

// withSegment returns a copy of a memory operand with an explicit segment
// override prefix. Used only by Mov to canonicalize a bare bracketed source.
func (o Operand) withSegment(seg string) Operand {
	o.seg = seg
	return o
}

func (o Operand) String() string {
	switch o.kind {
	case kindRegister:
		return string(o.reg)
	case kindImmediate:
		return strconv.Itoa(int(o.imm))
	case kindSymbol:
		return o.sym
	case kindMemory:
		addr := memText(o.base, o.disp)
		if o.seg != "" {
			return o.seg + ":" + addr
		}
		return addr
	default:
		return ""
	}
}

func memText(base Register, disp int32) string {
	if disp < 0 {
		return "[" + string(base) + "-" + strconv.Itoa(int(-disp)) + "]"
	}
	return "[" + string(base) + "+" + strconv.Itoa(int(disp)) + "]"
}
