// Package instr is the instruction model for the mpcc code generator: a
// closed set of value types representing assembly operands, data
// directives, instructions and labels, plus their MASM-dialect textual
// rendering.
//
// Operands:
//
//	kind      example            renders as
//	register  AX                 ax
//	register  AL                 al
//	immediate Imm(42)            42
//	immediate Imm(-1)            -1
//	symbolic  Sym("main")        main
//	symbolic  Offset("data0")    offset data0
//	memory    Mem(BP, -2)        [bp-2]
//	memory    Mem(BP, 4)         [bp+4]
//
// Register set: the 16-bit general and segment registers ax, bx, cx, dx,
// bp, sp, ds, ss and the 8-bit halves al, ah, cl, dl.
//
// Memory operands are always of the canonical form [bp±d]. Mov is the only
// instruction that canonicalizes a bare bracketed source operand with an
// implicit ds: segment override (mov dst, ds:[bp-2]); no other instruction
// in this model adds a segment prefix, matching the source compiler's
// Mov class.
//
// Immediate operands must fit in the range -0x8000..0xFFFF for code use and
// 0..0xFF for data-directive byte arguments; outside that range Imm returns
// ErrImmediateOverflow and Byte returns ErrDataByteOverflow.
//
// Instructions are a single sum type, Instruction{Op, Operands}, rather
// than a class hierarchy: the mnemonic constructors below (Mov, Push, Add,
// Je, ...) are thin helpers that build one, mirroring the layout of the
// source's masm module without its per-mnemonic subclasses.
package instr
