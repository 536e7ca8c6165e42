package optimize_test

import (
	"testing"

	"github.com/EndlessCheng/mpython/instr"
	"github.com/EndlessCheng/mpython/optimize"
)

func render(codes []instr.Instruction) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

func assertEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// S5 — peephole collapse.
func TestPushPopCollapseReversePairing(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.Mem(instr.BP, 4)),
		instr.PushI(instr.MustImm(42)),
		instr.PopI(instr.Reg(instr.AX)),
		instr.PopI(instr.Reg(instr.AX)),
	}
	got := render(optimize.PushPopCollapse(in))
	want := []string{"mov ax, 42", "mov ax, ds:[bp+4]"}
	assertEqual(t, got, want)
}

func TestPushPopCollapseOmitsNoOpMove(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.Reg(instr.AX)),
		instr.PopI(instr.Reg(instr.AX)),
	}
	got := render(optimize.PushPopCollapse(in))
	if len(got) != 0 {
		t.Fatalf("got %v, want no instructions", got)
	}
}

func TestPushPopCollapseIsDepthPreservingOnBalancedBatch(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.Reg(instr.AX)),
		instr.PushI(instr.Reg(instr.BX)),
		instr.PopI(instr.Reg(instr.CX)),
		instr.PopI(instr.Reg(instr.DX)),
	}
	out := optimize.PushPopCollapse(in)
	for _, ins := range out {
		if ins.Op == instr.Push || ins.Op == instr.Pop {
			t.Fatalf("balanced batch left a push/pop: %v", render(out))
		}
	}
}

func TestPushPopCollapseLeavesUnpairedPushUnchanged(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.Reg(instr.AX)),
		instr.PushI(instr.Reg(instr.BX)),
		instr.PopI(instr.Reg(instr.CX)),
	}
	got := render(optimize.PushPopCollapse(in))
	want := []string{"push ax", "mov cx, bx"}
	assertEqual(t, got, want)
}

func TestPushPopCollapseIsIdempotent(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.Mem(instr.BP, 4)),
		instr.PushI(instr.MustImm(42)),
		instr.PopI(instr.Reg(instr.AX)),
		instr.PopI(instr.Reg(instr.AX)),
	}
	once := optimize.PushPopCollapse(in)
	twice := optimize.PushPopCollapse(once)
	assertEqual(t, render(once), render(twice))
}

func TestPushPopCollapseResetsOnNonStackOpcode(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.Reg(instr.AX)),
		instr.NopI(),
		instr.PopI(instr.Reg(instr.BX)),
	}
	got := render(optimize.PushPopCollapse(in))
	want := []string{"push ax", "nop", "pop bx"}
	assertEqual(t, got, want)
}

// S6 — strength reduction.
func TestStrengthReduceMovZero(t *testing.T) {
	in := []instr.Instruction{instr.MovI(instr.Reg(instr.AX), instr.MustImm(0))}
	got := render(optimize.StrengthReduce(in))
	want := []string{"xor ax, ax"}
	assertEqual(t, got, want)
}

func TestStrengthReduceAddSub(t *testing.T) {
	in := []instr.Instruction{
		instr.AddI(instr.Reg(instr.BX), instr.MustImm(1)),
		instr.AddI(instr.Reg(instr.BX), instr.MustImm(-1)),
		instr.SubI(instr.Reg(instr.CX), instr.MustImm(1)),
		instr.SubI(instr.Reg(instr.CX), instr.MustImm(-1)),
	}
	got := render(optimize.StrengthReduce(in))
	want := []string{"inc bx", "dec bx", "dec cx", "inc cx"}
	assertEqual(t, got, want)
}

func TestStrengthReduceDropsAddSubZero(t *testing.T) {
	in := []instr.Instruction{
		instr.AddI(instr.Reg(instr.BX), instr.MustImm(0)),
		instr.SubI(instr.Reg(instr.CX), instr.MustImm(0)),
	}
	got := optimize.StrengthReduce(in)
	if len(got) != 0 {
		t.Fatalf("got %v, want no instructions", render(got))
	}
}

func TestStrengthReducePassesThroughOtherImmediates(t *testing.T) {
	in := []instr.Instruction{instr.AddI(instr.Reg(instr.BX), instr.MustImm(5))}
	got := render(optimize.StrengthReduce(in))
	want := []string{"add bx, 5"}
	assertEqual(t, got, want)
}

func TestBatchRunsBothPasses(t *testing.T) {
	in := []instr.Instruction{
		instr.PushI(instr.MustImm(0)),
		instr.PopI(instr.Reg(instr.AX)),
	}
	got := render(optimize.Batch(in))
	want := []string{"xor ax, ax"}
	assertEqual(t, got, want)
}
