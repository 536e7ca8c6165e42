package mpast_test

import (
	"testing"

	"github.com/EndlessCheng/mpython/mpast"
)

func TestDecodeModuleWithNestedNodes(t *testing.T) {
	src := []byte(`{
		"type": "Module",
		"body": [
			{
				"type": "FunctionDef",
				"name": "main",
				"args": [],
				"body": [
					{"type": "Assign", "target": "x", "value": {"type": "Num", "n": 7}},
					{
						"type": "If",
						"test": {"type": "Compare", "left": {"type": "Name", "id": "x"}, "op": "Gt", "right": {"type": "Num", "n": 0}},
						"body": [
							{"type": "Expr", "value": {"type": "Call", "func": "putchar", "args": [{"type": "Name", "id": "x"}]}}
						],
						"orelse": []
					},
					{"type": "Return", "value": null}
				]
			}
		]
	}`)

	mod, err := mpast.DecodeModule(src)
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(mod.Body))
	}
	fn, ok := mod.Body[0].(*mpast.FunctionDef)
	if !ok {
		t.Fatalf("expected *mpast.FunctionDef, got %T", mod.Body[0])
	}
	if fn.Name != "main" {
		t.Errorf("Name = %q, want main", fn.Name)
	}
	if len(fn.Body) != 3 {
		t.Fatalf("expected 3 statements in main's body, got %d", len(fn.Body))
	}

	assign, ok := fn.Body[0].(*mpast.Assign)
	if !ok {
		t.Fatalf("expected *mpast.Assign, got %T", fn.Body[0])
	}
	if assign.Target != "x" {
		t.Errorf("Target = %q, want x", assign.Target)
	}
	num, ok := assign.Value.(*mpast.Num)
	if !ok || num.N != 7 {
		t.Errorf("Value = %#v, want Num{N: 7}", assign.Value)
	}

	ifNode, ok := fn.Body[1].(*mpast.If)
	if !ok {
		t.Fatalf("expected *mpast.If, got %T", fn.Body[1])
	}
	cmp, ok := ifNode.Test.(*mpast.Compare)
	if !ok || cmp.Op != mpast.Gt {
		t.Errorf("Test = %#v, want a Gt Compare", ifNode.Test)
	}
	if len(ifNode.Orelse) != 0 {
		t.Errorf("Orelse = %v, want empty", ifNode.Orelse)
	}

	ret, ok := fn.Body[2].(*mpast.Return)
	if !ok {
		t.Fatalf("expected *mpast.Return, got %T", fn.Body[2])
	}
	if ret.Value != nil {
		t.Errorf("Value = %#v, want nil for a bare return", ret.Value)
	}
}

func TestDecodeRejectsUnknownNodeType(t *testing.T) {
	_, err := mpast.Decode([]byte(`{"type": "Lambda"}`))
	if err == nil {
		t.Error("expected an error decoding an unsupported node type")
	}
}

func TestDecodeModuleRejectsNonModuleRoot(t *testing.T) {
	_, err := mpast.DecodeModule([]byte(`{"type": "Pass"}`))
	if err == nil {
		t.Error("expected an error when the root node is not a Module")
	}
}

func TestDecodeForRequiresRangeCall(t *testing.T) {
	_, err := mpast.Decode([]byte(`{
		"type": "For",
		"target": "i",
		"iter": {"type": "Name", "id": "xs"},
		"body": []
	}`))
	if err == nil {
		t.Error("expected an error when For.iter is not a Call")
	}
}

func TestDecodeCallWithKeywords(t *testing.T) {
	n, err := mpast.Decode([]byte(`{
		"type": "Call",
		"func": "print",
		"args": [{"type": "Str", "s": "hi"}],
		"keywords": [{"arg": "end", "value": {"type": "Str", "s": ""}}]
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	call, ok := n.(*mpast.Call)
	if !ok {
		t.Fatalf("expected *mpast.Call, got %T", n)
	}
	if len(call.Keywords) != 1 || call.Keywords[0].Arg != "end" {
		t.Errorf("Keywords = %#v, want one keyword named end", call.Keywords)
	}
}
