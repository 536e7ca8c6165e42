package compiler

import "github.com/EndlessCheng/mpython/mpast"

// DiscoverLocals walks a function body and returns the ordered set of names
// that must be reserved as local-variable slots: every Assign target and
// every For-loop target, in first-appearance order, excluding names already
// bound as parameters. It recurses into If/While/For bodies so a name first
// assigned inside a nested block is still discovered.
//
// The wire AST (mpast.Assign) has a single string Target, so the
// multi-target-assignment rejection this pass's contract otherwise calls
// for is enforced structurally by the decode step rather than checked here
// — see DESIGN.md.
func DiscoverLocals(fn *mpast.FunctionDef) []string {
	seen := make(map[string]bool, len(fn.Args))
	for _, a := range fn.Args {
		seen[a] = true
	}
	var order []string
	declare := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	var walk func(body []mpast.Node)
	walk = func(body []mpast.Node) {
		for _, n := range body {
			switch s := n.(type) {
			case *mpast.Assign:
				declare(s.Target)
			case *mpast.For:
				declare(s.Target)
				walk(s.Body)
			case *mpast.If:
				walk(s.Body)
				walk(s.Orelse)
			case *mpast.While:
				walk(s.Body)
			}
		}
	}
	walk(fn.Body)
	return order
}
