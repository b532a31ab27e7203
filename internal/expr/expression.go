// Package expr compiles and evaluates the Common Expression Language (CEL)
// policy that decides a package's risk band: a high_risk tier of
// must-all-pass expressions, and a points-weighted eval tier that produces a
// 0-100 score.
package expr

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// Expression is a single compiled policy rule: a name, an optional
// description, the CEL source it was compiled from, and an optional points
// budget. Points are only meaningful for eval-tier expressions; high_risk
// expressions ignore it.
type Expression struct {
	name        string
	description string
	points      *uint32
	source      string
	program     cel.Program
}

// NewExpression compiles source in env. A compile or program-plan failure
// is wrapped in facts.ErrPolicy, matching the closed error taxonomy's rule
// that expression errors are fatal at load time.
func NewExpression(env *cel.Env, name, description, source string, points *uint32) (Expression, error) {
	ast, iss := env.Compile(source)
	if iss != nil && iss.Err() != nil {
		return Expression{}, fmt.Errorf("%w: expression %q: %s", facts.ErrPolicy, name, iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: expression %q: %v", facts.ErrPolicy, name, err)
	}
	return Expression{
		name:        name,
		description: description,
		points:      points,
		source:      source,
		program:     prg,
	}, nil
}

func (e Expression) Name() string        { return e.name }
func (e Expression) Description() string { return e.description }
func (e Expression) Source() string      { return e.source }

// Points returns the configured points budget and whether one was set.
func (e Expression) Points() (uint32, bool) {
	if e.points == nil {
		return 0, false
	}
	return *e.points, true
}

// eval runs the compiled program against vars, returning a Disposition:
// True/False on a clean boolean result, Failed on an evaluation error or a
// non-boolean result.
func (e Expression) eval(vars map[string]any) Disposition {
	out, _, err := e.program.Eval(vars)
	if err != nil {
		return Failed(err.Error())
	}
	b, ok := out.Value().(bool)
	if !ok {
		return Failed(fmt.Sprintf("expression %q did not evaluate to a boolean", e.name))
	}
	if b {
		return Disposition{Kind: DispositionTrue}
	}
	return Disposition{Kind: DispositionFalse}
}
