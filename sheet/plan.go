package sheet

import (
	"strings"

	"github.com/influxdata/calcsheet/ast"
	"github.com/influxdata/calcsheet/eval"
)

// parsedFormula is the immutable result of parsing and compiling one formula.
type parsedFormula struct {
	node ast.Node
	// refs are the referenced names in order of first appearance.
	refs []string
	// expr is nil only if compilation failed, which evaluates to #ERR.
	expr eval.Expression
	err  error
}

func parseFormula(source string, es eval.ExecutionState) *parsedFormula {
	node, err := ast.Parse(source)
	if err != nil {
		node = ast.NewErrorNode(ast.ErrorCodeGeneric)
	}
	expr, cerr := eval.NewExpressionWithState(node, es)
	if cerr != nil && err == nil {
		err = cerr
	}
	return &parsedFormula{
		node: node,
		refs: ast.FindReferenceVariables(node),
		expr: expr,
		err:  err,
	}
}

func (p *parsedFormula) eval(scope eval.ReadOnlyScope) eval.Value {
	if p.expr == nil {
		return eval.NewError(eval.ErrGeneric)
	}
	return p.expr.Eval(scope)
}

// formulas yields the parsed form of formula source text.
type formulas interface {
	lookup(source string) *parsedFormula
}

// memoFormulas parses each distinct source once for the lifetime of one calculation.
type memoFormulas struct {
	es     eval.ExecutionState
	parsed map[string]*parsedFormula
}

func newMemoFormulas(es eval.ExecutionState) *memoFormulas {
	return &memoFormulas{
		es:     es,
		parsed: make(map[string]*parsedFormula),
	}
}

func (m *memoFormulas) lookup(source string) *parsedFormula {
	if p, ok := m.parsed[source]; ok {
		return p
	}
	p := parseFormula(source, m.es)
	m.parsed[source] = p
	return p
}

// Dependencies describes how a set of fields is evaluated.
type Dependencies struct {
	// Order lists formula fields in evaluation order.
	Order []string `json:"order"`
	// Cyclic lists formula fields that can never be resolved, in declaration order.
	// They evaluate to #REF!.
	Cyclic []string `json:"cyclic"`
	// References maps each formula field to the names it references.
	// Only names declared as fields are dependency edges.
	References map[string][]string `json:"references"`
	// Passes is the number of resolution passes needed.
	Passes int `json:"passes"`
}

// plan is the evaluation order of a deduplicated field list.
// It depends only on field names, kinds and formula text.
type plan struct {
	// constants and order hold indexes into the deduplicated field list.
	constants []int
	order     []int
	cyclic    []int
	passes    int
	deps      Dependencies
}

// newPlan resolves formula fields in passes. Each pass walks the pending
// formula fields in declaration order and schedules every field whose declared
// references are already resolved. Resolution stops after a pass without
// progress, so it takes at most one pass per formula field.
func newPlan(fields []FieldSpec, src formulas) *plan {
	p := &plan{
		deps: Dependencies{
			Order:      []string{},
			Cyclic:     []string{},
			References: make(map[string][]string),
		},
	}

	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
	}

	resolved := make(map[string]bool, len(fields))
	edges := make(map[int][]string)
	var pending []int
	for i, f := range fields {
		if !f.IsFormula() {
			p.constants = append(p.constants, i)
			resolved[f.Name] = true
			continue
		}
		refs := src.lookup(f.Formula).refs
		p.deps.References[f.Name] = refs
		for _, r := range refs {
			if declared[r] {
				edges[i] = append(edges[i], r)
			}
		}
		pending = append(pending, i)
	}

	ready := func(i int) bool {
		for _, r := range edges[i] {
			if !resolved[r] {
				return false
			}
		}
		return true
	}

	n := len(pending)
	for len(pending) > 0 && p.passes < n {
		p.passes++
		progress := false
		next := pending[:0]
		for _, i := range pending {
			if ready(i) {
				p.order = append(p.order, i)
				resolved[fields[i].Name] = true
				progress = true
				continue
			}
			next = append(next, i)
		}
		pending = next
		if !progress {
			break
		}
	}
	p.cyclic = pending

	for _, i := range p.order {
		p.deps.Order = append(p.deps.Order, fields[i].Name)
	}
	for _, i := range p.cyclic {
		p.deps.Cyclic = append(p.deps.Cyclic, fields[i].Name)
	}
	p.deps.Passes = p.passes
	return p
}

// dependencies returns a copy that callers may modify.
func (p *plan) dependencies() Dependencies {
	d := Dependencies{
		Order:      append([]string{}, p.deps.Order...),
		Cyclic:     append([]string{}, p.deps.Cyclic...),
		References: make(map[string][]string, len(p.deps.References)),
		Passes:     p.deps.Passes,
	}
	for k, v := range p.deps.References {
		d.References[k] = append([]string{}, v...)
	}
	return d
}

// planKey is the canonical text a plan depends on.
func planKey(fields []FieldSpec) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.Name)
		b.WriteByte(0x1f)
		b.WriteString(f.Kind.String())
		if f.IsFormula() {
			b.WriteByte(0x1f)
			b.WriteString(f.Formula)
		}
		b.WriteByte(0x1e)
	}
	return b.String()
}
