package tracker

import (
	"testing"

	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
)

func TestNoRequests(t *testing.T) {
	tr := New(progress.NoOp{})
	total, completed, msg := tr.summary()
	if total != 0 || completed != 0 || msg != "No requests" {
		t.Errorf("got (%d, %d, %q)", total, completed, msg)
	}
}

func TestAddAndCompleteSingleTopic(t *testing.T) {
	tr := New(progress.NoOp{})
	tr.AddRequests(Coverage, 3)
	tr.CompleteRequest(Coverage)

	total, completed, msg := tr.summary()
	if total != 3 || completed != 1 || msg != "1/3 coverage" {
		t.Errorf("got (%d, %d, %q)", total, completed, msg)
	}
}

func TestMessageFollowsTopicOrder(t *testing.T) {
	tr := New(progress.NoOp{})
	tr.AddRequests(Codebase, 1)
	tr.AddRequests(Repos, 1)
	tr.AddRequests(Docs, 1)
	tr.AddRequests(Coverage, 1)

	_, _, msg := tr.summary()
	want := "0/1 coverage, 0/1 docs, 0/1 repos, 0/1 codebase"
	if msg != want {
		t.Errorf("msg = %q, want %q", msg, want)
	}
}

func TestZeroIssuedTopicOmitted(t *testing.T) {
	tr := New(progress.NoOp{})
	tr.AddRequests(Docs, 0)
	_, _, msg := tr.summary()
	if msg != "No requests" {
		t.Errorf("msg = %q, want %q", msg, "No requests")
	}
}

func TestMultipleTopicsSumTotals(t *testing.T) {
	tr := New(progress.NoOp{})
	tr.AddRequests(Coverage, 10)
	tr.AddRequests(Docs, 5)
	for i := 0; i < 3; i++ {
		tr.CompleteRequest(Coverage)
	}
	tr.CompleteRequest(Docs)

	total, completed, _ := tr.summary()
	if total != 15 || completed != 4 {
		t.Errorf("got total=%d completed=%d", total, completed)
	}
}
