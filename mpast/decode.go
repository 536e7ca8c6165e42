package mpast

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// wireNode is the envelope every JSON-encoded node decodes into first; the
// discriminator Type selects which fields are meaningful and which concrete
// Node gets built.
type wireNode struct {
	Type     NodeType          `json:"type"`
	Name     string            `json:"name,omitempty"`
	Args     json.RawMessage   `json:"args,omitempty"`
	Body     json.RawMessage   `json:"body,omitempty"`
	Target   string            `json:"target,omitempty"`
	Value    json.RawMessage   `json:"value,omitempty"`
	Op       string            `json:"op,omitempty"`
	Left     json.RawMessage   `json:"left,omitempty"`
	Right    json.RawMessage   `json:"right,omitempty"`
	Values   json.RawMessage   `json:"values,omitempty"`
	Test     json.RawMessage   `json:"test,omitempty"`
	Orelse   json.RawMessage   `json:"orelse,omitempty"`
	Iter     json.RawMessage   `json:"iter,omitempty"`
	Func     string            `json:"func,omitempty"`
	Keywords []wireKeyword     `json:"keywords,omitempty"`
	Id       string            `json:"id,omitempty"`
	N        *int              `json:"n,omitempty"`
	S        *string           `json:"s,omitempty"`
	Operand  json.RawMessage   `json:"operand,omitempty"`
}

type wireKeyword struct {
	Arg   string          `json:"arg"`
	Value json.RawMessage `json:"value"`
}

// Decode parses a single JSON-encoded AST node (typically a Module) into the
// corresponding mpast.Node tree.
func Decode(data []byte) (Node, error) {
	return decodeRaw(data)
}

// DecodeModule parses a JSON-encoded program and requires its root to be a
// Module, the shape cmd/mpcc expects from its input file.
func DecodeModule(data []byte) (*Module, error) {
	n, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	m, ok := n.(*Module)
	if !ok {
		return nil, errors.Errorf("root node has type %s, want Module", n.Type())
	}
	return m, nil
}

func decodeRaw(data []byte) (Node, error) {
	if data == nil || string(data) == "null" {
		return nil, nil
	}
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "decode AST node")
	}
	return build(&w)
}

func decodeList(data json.RawMessage) ([]Node, error) {
	if data == nil {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, errors.Wrap(err, "decode node list")
	}
	nodes := make([]Node, 0, len(raws))
	for _, r := range raws {
		n, err := decodeRaw(r)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func build(w *wireNode) (Node, error) {
	base := baseNode{typ: w.Type}
	switch w.Type {
	case TModule:
		body, err := decodeList(w.Body)
		if err != nil {
			return nil, err
		}
		return &Module{baseNode: base, Body: body}, nil

	case TFunctionDef:
		var args []string
		if w.Args != nil {
			if err := json.Unmarshal(w.Args, &args); err != nil {
				return nil, errors.Wrap(err, "decode FunctionDef.args")
			}
		}
		body, err := decodeList(w.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionDef{baseNode: base, Name: w.Name, Args: args, Body: body}, nil

	case TAssign:
		val, err := decodeRaw(w.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{baseNode: base, Target: w.Target, Value: val}, nil

	case TAugAssign:
		val, err := decodeRaw(w.Value)
		if err != nil {
			return nil, err
		}
		return &AugAssign{baseNode: base, Target: w.Target, Op: BinOpKind(w.Op), Value: val}, nil

	case TReturn:
		val, err := decodeRaw(w.Value)
		if err != nil {
			return nil, err
		}
		return &Return{baseNode: base, Value: val}, nil

	case TExpr:
		val, err := decodeRaw(w.Value)
		if err != nil {
			return nil, err
		}
		return &Expr{baseNode: base, Value: val}, nil

	case TCall:
		args, err := decodeList(w.Args)
		if err != nil {
			return nil, err
		}
		kws := make([]Keyword, 0, len(w.Keywords))
		for _, k := range w.Keywords {
			v, err := decodeRaw(k.Value)
			if err != nil {
				return nil, err
			}
			kws = append(kws, Keyword{Arg: k.Arg, Value: v})
		}
		return &Call{baseNode: base, Func: w.Func, Args: args, Keywords: kws}, nil

	case TIf:
		test, err := decodeRaw(w.Test)
		if err != nil {
			return nil, err
		}
		body, err := decodeList(w.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := decodeList(w.Orelse)
		if err != nil {
			return nil, err
		}
		return &If{baseNode: base, Test: test, Body: body, Orelse: orelse}, nil

	case TWhile:
		test, err := decodeRaw(w.Test)
		if err != nil {
			return nil, err
		}
		body, err := decodeList(w.Body)
		if err != nil {
			return nil, err
		}
		return &While{baseNode: base, Test: test, Body: body}, nil

	case TFor:
		iterNode, err := decodeRaw(w.Iter)
		if err != nil {
			return nil, err
		}
		iterCall, ok := iterNode.(*Call)
		if !ok {
			return nil, errors.Errorf("For.iter must be a call to range, got %T", iterNode)
		}
		body, err := decodeList(w.Body)
		if err != nil {
			return nil, err
		}
		return &For{baseNode: base, Target: w.Target, Iter: iterCall, Body: body}, nil

	case TBreak:
		return &Break{baseNode: base}, nil
	case TContinue:
		return &Continue{baseNode: base}, nil
	case TPass:
		return &Pass{baseNode: base}, nil
	case TEllipsis:
		return &Ellipsis{baseNode: base}, nil

	case TName:
		return &Name{baseNode: base, Id: w.Id}, nil

	case TNum:
		if w.N == nil {
			return nil, errors.New("Num node missing n")
		}
		return &Num{baseNode: base, N: *w.N}, nil

	case TStr:
		if w.S == nil {
			return nil, errors.New("Str node missing s")
		}
		return &Str{baseNode: base, S: *w.S}, nil

	case TNameConstant:
		return &NameConstant{baseNode: base, Value: NameConstantKind(w.Op)}, nil

	case TUnaryOp:
		operand, err := decodeRaw(w.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{baseNode: base, Op: UnaryOpKind(w.Op), Operand: operand}, nil

	case TBinOp:
		left, err := decodeRaw(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeRaw(w.Right)
		if err != nil {
			return nil, err
		}
		return &BinOp{baseNode: base, Left: left, Op: BinOpKind(w.Op), Right: right}, nil

	case TBoolOp:
		values, err := decodeList(w.Values)
		if err != nil {
			return nil, err
		}
		return &BoolOp{baseNode: base, Op: BoolOpKind(w.Op), Values: values}, nil

	case TCompare:
		left, err := decodeRaw(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeRaw(w.Right)
		if err != nil {
			return nil, err
		}
		return &Compare{baseNode: base, Left: left, Op: CmpOpKind(w.Op), Right: right}, nil

	default:
		return nil, errors.Errorf("unsupported AST node type %q", w.Type)
	}
}
