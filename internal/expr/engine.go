package expr

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/metrics"
)

// Policy is a compiled high_risk/eval expression set plus the two
// thresholds that turn a points score into a risk band.
type Policy struct {
	highRisk        []Expression
	eval            []Expression
	mediumThreshold float64
	lowThreshold    float64
}

// RawExpression is the unparsed form a Policy is built from: one entry of
// the config file's high_risk or eval array, before compilation.
type RawExpression struct {
	Name        string
	Description string
	Source      string
	Points      *uint32
}

// NewEnv builds the CEL environment every expression compiles against: one
// Dyn-typed variable per metric category (metadata, community, ...), each
// holding a map from a metric's dotted-name suffix to its value, plus `now`.
// A metric name like "community.repo_stars" is therefore CEL member-select
// syntax over the "community" map, exactly the way CEL resolves obj.field
// against a map value — not a single flat identifier, since CEL parses
// dots as field selection rather than as part of an identifier.
func NewEnv() (*cel.Env, error) {
	categories := metrics.Categories()
	opts := make([]cel.EnvOption, 0, len(categories)+1)
	for _, cat := range categories {
		opts = append(opts, cel.Variable(cat.String(), cel.DynType))
	}
	opts = append(opts, cel.Variable("now", cel.TimestampType))

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: building expression environment: %v", facts.ErrPolicy, err)
	}
	return env, nil
}

// NewPolicy compiles every high_risk and eval expression against env. A
// compile failure in any expression fails the whole policy load, per §7's
// "expressions parse" validation rule.
func NewPolicy(env *cel.Env, highRisk, eval []RawExpression, mediumThreshold, lowThreshold float64) (*Policy, error) {
	compiledHigh, err := compileAll(env, highRisk)
	if err != nil {
		return nil, err
	}
	compiledEval, err := compileAll(env, eval)
	if err != nil {
		return nil, err
	}
	return &Policy{
		highRisk:        compiledHigh,
		eval:            compiledEval,
		mediumThreshold: mediumThreshold,
		lowThreshold:    lowThreshold,
	}, nil
}

func compileAll(env *cel.Env, raw []RawExpression) ([]Expression, error) {
	out := make([]Expression, 0, len(raw))
	for _, r := range raw {
		e, err := NewExpression(env, r.Name, r.Description, r.Source, r.Points)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Evaluate runs every expression in the policy against one crate's
// flattened metric set and assigns a risk band. A package escapes the
// high-risk band only if every high_risk expression evaluates true;
// otherwise it is High regardless of score. Score is the eval tier's
// awarded points over its available points, scaled to 0-100 (0 when no
// eval expression carries a points budget).
func (p *Policy) Evaluate(metricSet []metrics.Metric, now time.Time) Appraisal {
	vars := activation(metricSet, now)

	highOutcomes, allHighPassed := evalTier(p.highRisk, vars)
	evalOutcomes, available, awarded := scoreTier(p.eval, vars)

	score := 0.0
	if available > 0 {
		score = float64(awarded) / float64(available) * 100
	}

	risk := Low
	switch {
	case !allHighPassed:
		risk = High
	case score < p.mediumThreshold:
		risk = High
	case score < p.lowThreshold:
		risk = Medium
	}

	outcomes := make([]Outcome, 0, len(highOutcomes)+len(evalOutcomes))
	outcomes = append(outcomes, highOutcomes...)
	outcomes = append(outcomes, evalOutcomes...)

	return Appraisal{
		Risk:            risk,
		Outcomes:        outcomes,
		AvailablePoints: available,
		AwardedPoints:   awarded,
		Score:           score,
	}
}

func evalTier(exprs []Expression, vars map[string]any) ([]Outcome, bool) {
	outcomes := make([]Outcome, 0, len(exprs))
	allPassed := true
	for _, e := range exprs {
		d := e.eval(vars)
		if d.Kind != DispositionTrue {
			allPassed = false
		}
		outcomes = append(outcomes, Outcome{Name: e.Name(), Description: e.Description(), Disposition: d})
	}
	return outcomes, allPassed
}

func scoreTier(exprs []Expression, vars map[string]any) ([]Outcome, uint32, uint32) {
	outcomes := make([]Outcome, 0, len(exprs))
	var available, awarded uint32
	for _, e := range exprs {
		points, has := e.Points()
		if has {
			available += points
		}
		d := e.eval(vars)
		if d.Kind == DispositionTrue && has {
			awarded += points
		}
		outcomes = append(outcomes, Outcome{Name: e.Name(), Description: e.Description(), Disposition: d})
	}
	return outcomes, available, awarded
}

// activation groups the flattened metric set by category, since each
// category is declared as its own CEL map variable (see NewEnv). A metric
// that is absent, or whose name doesn't have a "category.field" shape, is
// simply left out of its category's map; referencing it from an expression
// then fails at evaluation time as an unknown-field access.
func activation(metricSet []metrics.Metric, now time.Time) map[string]any {
	byCategory := make(map[string]map[string]any, len(metrics.Categories()))
	for _, cat := range metrics.Categories() {
		byCategory[cat.String()] = make(map[string]any)
	}

	for _, m := range metricSet {
		if !m.Present {
			continue
		}
		category, field, ok := strings.Cut(m.Def.Name, ".")
		if !ok {
			continue
		}
		fields, ok := byCategory[category]
		if !ok {
			continue
		}
		if v, ok := nativeValue(m.Value); ok {
			fields[field] = v
		}
	}

	vars := make(map[string]any, len(byCategory)+1)
	for category, fields := range byCategory {
		vars[category] = fields
	}
	vars["now"] = now
	return vars
}

func nativeValue(v metrics.Value) (any, bool) {
	switch v.Kind {
	case metrics.KindUInt:
		return v.UInt, true
	case metrics.KindFloat:
		return v.Float, true
	case metrics.KindString:
		return v.String, true
	case metrics.KindBoolean:
		return v.Bool, true
	case metrics.KindDateTime:
		return v.Time, true
	case metrics.KindList:
		list := make([]any, 0, len(v.List))
		for _, item := range v.List {
			if nv, ok := nativeValue(item); ok {
				list = append(list, nv)
			}
		}
		return list, true
	default:
		return nil, false
	}
}
