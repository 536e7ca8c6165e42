package optimize

import "github.com/EndlessCheng/mpython/instr"

// StrengthReduce rewrites single instructions with a cheaper, semantically
// equivalent form, dropping no-ops entirely:
//
//	mov R, 0 -> xor R, R
//	add R, 1 -> inc R;  add R, -1 -> dec R;  add R, 0 -> (deleted)
//	sub R, 1 -> dec R;  sub R, -1 -> inc R;  sub R, 0 -> (deleted)
//
// All other instructions pass through unchanged.
func StrengthReduce(codes []instr.Instruction) []instr.Instruction {
	out := make([]instr.Instruction, 0, len(codes))
	for _, ins := range codes {
		reduced, drop := reduceOne(ins)
		if drop {
			continue
		}
		out = append(out, reduced)
	}
	return out
}

func reduceOne(ins instr.Instruction) (instr.Instruction, bool) {
	if len(ins.Operands) != 2 {
		return ins, false
	}
	dst, src := ins.Operands[0], ins.Operands[1]
	v, ok := src.IsImmediate()
	if !ok {
		return ins, false
	}
	switch ins.Op {
	case instr.Mov:
		if v == 0 {
			return instr.XorI(dst, dst), false
		}
	case instr.Add:
		switch v {
		case 1:
			return instr.IncI(dst), false
		case 0:
			return ins, true
		case -1:
			return instr.DecI(dst), false
		}
	case instr.Sub:
		switch v {
		case 1:
			return instr.DecI(dst), false
		case 0:
			return ins, true
		case -1:
			return instr.IncI(dst), false
		}
	}
	return ins, false
}
