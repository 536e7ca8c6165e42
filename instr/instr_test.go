package instr_test

import (
	"testing"

	"github.com/EndlessCheng/mpython/instr"
)

func TestOperandRendering(t *testing.T) {
	cases := []struct {
		name string
		o    instr.Operand
		want string
	}{
		{"register", instr.Reg(instr.AX), "ax"},
		{"8-bit half", instr.Reg(instr.AL), "al"},
		{"memory positive", instr.Mem(instr.BP, 4), "[bp+4]"},
		{"memory negative", instr.Mem(instr.BP, -2), "[bp-2]"},
		{"symbol", instr.Sym("main"), "main"},
		{"offset", instr.Offset("data0"), "offset data0"},
	}
	for _, c := range cases {
		if got := c.o.String(); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}

	imm, err := instr.Imm(42)
	if err != nil || imm.String() != "42" {
		t.Errorf("Imm(42) = %v, %v", imm, err)
	}
	if _, err := instr.Imm(0x10000); err == nil {
		t.Error("Imm(0x10000) expected overflow error")
	}
	if _, err := instr.Imm(instr.MinCodeImmediate - 1); err == nil {
		t.Error("Imm below MinCodeImmediate expected overflow error")
	}
}

func TestMovCanonicalizesBareMemorySource(t *testing.T) {
	ins := instr.MovI(instr.Reg(instr.AX), instr.Mem(instr.BP, -2))
	want := "mov ax, ds:[bp-2]"
	if got := ins.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMovDoesNotCanonicalizeDestination(t *testing.T) {
	ins := instr.MovI(instr.Mem(instr.BP, -2), instr.Reg(instr.AX))
	want := "mov [bp-2], ax"
	if got := ins.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPushDoesNotCanonicalizeMemoryOperand(t *testing.T) {
	ins := instr.PushI(instr.Mem(instr.BP, 4))
	want := "push [bp+4]"
	if got := ins.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJmpDistanceQualifier(t *testing.T) {
	if got, want := instr.JmpI(instr.Short, "L1").String(), "jmp short L1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := instr.JmpI("", "L1").String(), "jmp L1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShiftByConst(t *testing.T) {
	seq := instr.ShiftByConst(instr.Sal, instr.Reg(instr.DX), 1)
	if len(seq) != 1 || seq[0].String() != "sal dx, 1" {
		t.Errorf("ShiftByConst(1) = %v", seq)
	}
	seq = instr.ShiftByConst(instr.Sar, instr.Reg(instr.DX), 3)
	if len(seq) != 2 || seq[0].String() != "mov cl, 3" || seq[1].String() != "sar dx, cl" {
		t.Errorf("ShiftByConst(3) = %v", seq)
	}
}

func TestDataRendering(t *testing.T) {
	nl := instr.MustByte('\n')
	cr := instr.MustByte('\r')
	d := instr.NewData("data0", instr.Text("hello"), nl, cr, instr.Text("$"))
	want := "data0 db 'hello', 0ah, 0dh, '$'"
	if got := d.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDataPlaceholder(t *testing.T) {
	d := instr.NewData("")
	if got, want := d.String(), "db ?"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestByteOverflow(t *testing.T) {
	if _, err := instr.Byte(0x100); err == nil {
		t.Error("Byte(0x100) expected overflow error")
	}
}
