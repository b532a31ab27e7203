// Package tracker monitors outstanding HTTP requests to external services
// (docs.rs, codecov.io, code hosts, repo mirrors) so the progress reporter
// can show the query phase's overall shape instead of a single opaque
// spinner.
package tracker

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
)

// Topic names a class of outstanding request.
type Topic int

const (
	Coverage Topic = iota
	Docs
	Repos
	Codebase
	topicCount
)

func (t Topic) name() string {
	switch t {
	case Coverage:
		return "coverage"
	case Docs:
		return "docs"
	case Repos:
		return "repos"
	case Codebase:
		return "codebase"
	default:
		return "unknown"
	}
}

var allTopics = [topicCount]Topic{Coverage, Docs, Repos, Codebase}

type counter struct {
	issued    atomic.Uint64
	completed atomic.Uint64
}

// Tracker tracks issued/completed counts per topic and feeds a progress
// reporter's determinate callback. The zero value is usable; wire it to a
// reporter via New.
type Tracker struct {
	counters [topicCount]*counter
}

// New creates a Tracker and registers its summary as rep's determinate
// callback.
func New(rep progress.Reporter) *Tracker {
	t := &Tracker{}
	for i := range t.counters {
		t.counters[i] = &counter{}
	}
	rep.SetDeterminate(t.summary)
	return t
}

// AddRequests records count new outstanding requests for topic.
func (t *Tracker) AddRequests(topic Topic, count uint64) {
	t.counters[topic].issued.Add(count)
}

// CompleteRequest marks one outstanding request for topic as done.
func (t *Tracker) CompleteRequest(topic Topic) {
	t.counters[topic].completed.Add(1)
}

// summary computes (total issued, total completed, status line) across
// every topic with at least one issued request, in topic declaration order.
func (t *Tracker) summary() (uint64, uint64, string) {
	var totalIssued, totalCompleted uint64
	var parts []string

	for _, topic := range allTopics {
		c := t.counters[topic]
		issued := c.issued.Load()
		completed := c.completed.Load()
		if issued == 0 {
			continue
		}
		totalIssued += issued
		totalCompleted += completed
		parts = append(parts, fmt.Sprintf("%d/%d %s", completed, issued, topic.name()))
	}

	if len(parts) == 0 {
		return 0, 0, "No requests"
	}
	return totalIssued, totalCompleted, strings.Join(parts, ", ")
}
