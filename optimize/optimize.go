package optimize

import "github.com/EndlessCheng/mpython/instr"

// Batch runs the full peephole pipeline over one instruction batch: push/pop
// collapse first, then strength reduction. Batches never cross a label or
// segment boundary (spec §4.5); callers are responsible for splitting the
// instruction stream accordingly.
func Batch(codes []instr.Instruction) []instr.Instruction {
	codes = PushPopCollapse(codes)
	codes = StrengthReduce(codes)
	return codes
}
