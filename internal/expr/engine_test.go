package expr

import (
	"testing"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/metrics"
)

func ptr(v uint32) *uint32 { return &v }

func testPolicy(t *testing.T, highRisk, eval []RawExpression, medium, low float64) *Policy {
	t.Helper()
	env, err := NewEnv()
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPolicy(env, highRisk, eval, medium, low)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func metricSet(name string, v metrics.Value) []metrics.Metric {
	return []metrics.Metric{{
		Def:     metrics.Def{Name: name},
		Value:   v,
		Present: true,
	}}
}

func TestHighRiskFailureForcesHighRegardlessOfScore(t *testing.T) {
	p := testPolicy(t,
		[]RawExpression{{Name: "has_license", Source: "metadata.license == 'MIT'"}},
		[]RawExpression{{Name: "always_true", Source: "true", Points: ptr(100)}},
		30, 70,
	)

	set := metricSet("metadata.license", metrics.StringValue("Apache-2.0"))
	appraisal := p.Evaluate(set, time.Now())

	if appraisal.Risk != High {
		t.Fatalf("risk = %v, want High", appraisal.Risk)
	}
	if appraisal.Score != 100 {
		t.Errorf("score = %v, want 100 (eval tier still scored)", appraisal.Score)
	}
}

func TestScoreThresholdBoundaries(t *testing.T) {
	// 3 of 10 points awarded = 30.0, exactly at the medium threshold.
	eval := []RawExpression{
		{Name: "a", Source: "true", Points: ptr(3)},
		{Name: "b", Source: "false", Points: ptr(7)},
	}
	p := testPolicy(t, nil, eval, 30, 70)

	appraisal := p.Evaluate(nil, time.Now())
	if appraisal.Score != 30 {
		t.Fatalf("score = %v, want 30", appraisal.Score)
	}
	if appraisal.Risk != Medium {
		t.Fatalf("risk = %v, want Medium at score==medium_threshold", appraisal.Risk)
	}
}

func TestNoEvalExpressionsYieldsZeroScore(t *testing.T) {
	p := testPolicy(t, nil, nil, 30, 70)
	appraisal := p.Evaluate(nil, time.Now())
	if appraisal.Score != 0 {
		t.Fatalf("score = %v, want 0", appraisal.Score)
	}
	if appraisal.AvailablePoints != 0 || appraisal.AwardedPoints != 0 {
		t.Fatalf("available=%d awarded=%d, want 0/0", appraisal.AvailablePoints, appraisal.AwardedPoints)
	}
}

func TestUnknownVariableReferenceFails(t *testing.T) {
	p := testPolicy(t, nil, []RawExpression{{Name: "e", Source: "community.repo_stars > 10", Points: ptr(1)}}, 30, 70)

	appraisal := p.Evaluate(nil, time.Now())
	if len(appraisal.Outcomes) != 1 {
		t.Fatalf("len(Outcomes) = %d, want 1", len(appraisal.Outcomes))
	}
	if appraisal.Outcomes[0].Disposition.Kind != DispositionFailed {
		t.Fatalf("disposition = %v, want Failed", appraisal.Outcomes[0].Disposition)
	}
	if appraisal.AwardedPoints != 0 {
		t.Errorf("awarded = %d, want 0 for a failed expression", appraisal.AwardedPoints)
	}
}

func TestCompileErrorFailsPolicyLoad(t *testing.T) {
	env, err := NewEnv()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewPolicy(env, []RawExpression{{Name: "bad", Source: "(x > 5"}}, nil, 30, 70)
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestNowVariableIsUsable(t *testing.T) {
	p := testPolicy(t, nil, []RawExpression{{Name: "has_now", Source: "now != timestamp(0)", Points: ptr(1)}}, 30, 70)
	appraisal := p.Evaluate(nil, time.Now())
	if appraisal.Outcomes[0].Disposition.Kind != DispositionTrue {
		t.Fatalf("disposition = %v, want True", appraisal.Outcomes[0].Disposition)
	}
}
