// Package optimize implements the peephole passes the assembly writer runs
// over each buffered instruction batch: push/pop collapse and single-
// instruction strength reduction, per spec §4.5.
package optimize

import "github.com/EndlessCheng/mpython/instr"

type state int

const (
	stateDefault state = iota
	statePush
	statePop
)

// PushPopCollapse scans a batch with a three-state machine (DEFAULT → PUSH
// on a push; PUSH accumulates more pushes; the first pop moves to POP,
// which accumulates more pops; any other opcode, or end of batch while in
// POP, triggers a combine and resets) and folds each push/pop run into
// movs. For example:
//
//	push [bp+4]
//	push 42
//	pop  ax
//	pop  ax
//
// becomes:
//
//	mov ax, 42
//	mov ax, ds:[bp+4]
//
// pairing pops with pushes in reverse order, mirroring how the stack
// unwinds; a pair whose push source equals its pop destination is omitted
// rather than emitted as a no-op mov.
func PushPopCollapse(codes []instr.Instruction) []instr.Instruction {
	var optimized []instr.Instruction
	st := stateDefault
	pushes, pops := 0, 0

	combine := func() {
		mid := len(optimized) - pops
		k := pushes
		if pops < k {
			k = pops
		}
		var moves []instr.Instruction
		for i := 0; i < k; i++ {
			popArg := optimized[mid+i].Operands[0]
			pushArg := optimized[mid-i-1].Operands[0]
			if pushArg != popArg {
				moves = append(moves, instr.MovI(popArg, pushArg))
			}
		}
		rest := append([]instr.Instruction{}, optimized[:mid-k]...)
		rest = append(rest, moves...)
		rest = append(rest, optimized[mid+k:]...)
		optimized = rest
	}
	reset := func() {
		st = stateDefault
		pushes, pops = 0, 0
	}

	for _, ins := range codes {
		switch st {
		case stateDefault:
			if ins.Op == instr.Push {
				st = statePush
				pushes++
			} else {
				reset()
			}
		case statePush:
			switch ins.Op {
			case instr.Push:
				pushes++
			case instr.Pop:
				st = statePop
				pops++
			default:
				reset()
			}
		case statePop:
			if ins.Op == instr.Pop {
				pops++
			} else {
				combine()
				if ins.Op == instr.Push {
					st = statePush
					pushes, pops = 1, 0
				} else {
					reset()
				}
			}
		}
		optimized = append(optimized, ins)
	}
	if st == statePop {
		combine()
	}
	return optimized
}
