package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheHitsAndMisses(t *testing.T) {
	before := testutil.ToFloat64(CacheHits.WithLabelValues("test_doc"))
	CacheHits.WithLabelValues("test_doc").Inc()
	if got := testutil.ToFloat64(CacheHits.WithLabelValues("test_doc")); got != before+1 {
		t.Errorf("CacheHits = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(CacheMisses.WithLabelValues("test_doc"))
	CacheMisses.WithLabelValues("test_doc").Inc()
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("test_doc")); got != before+1 {
		t.Errorf("CacheMisses = %v, want %v", got, before+1)
	}
}

func TestThrottlerPauses(t *testing.T) {
	before := testutil.ToFloat64(ThrottlerPauses.WithLabelValues("test_provider"))
	ThrottlerPauses.WithLabelValues("test_provider").Inc()
	if got := testutil.ToFloat64(ThrottlerPauses.WithLabelValues("test_provider")); got != before+1 {
		t.Errorf("ThrottlerPauses = %v, want %v", got, before+1)
	}
}

func TestObserveProviderBatch(t *testing.T) {
	beforeFound := testutil.ToFloat64(ProviderRequests.WithLabelValues("test_batch", "found"))
	beforeError := testutil.ToFloat64(ProviderRequests.WithLabelValues("test_batch", "error"))

	ObserveProviderBatch("test_batch", time.Now().Add(-10*time.Millisecond), map[string]int{
		"found": 3,
		"error": 1,
	})

	if got := testutil.ToFloat64(ProviderRequests.WithLabelValues("test_batch", "found")); got != beforeFound+3 {
		t.Errorf("found count = %v, want %v", got, beforeFound+3)
	}
	if got := testutil.ToFloat64(ProviderRequests.WithLabelValues("test_batch", "error")); got != beforeError+1 {
		t.Errorf("error count = %v, want %v", got, beforeError+1)
	}
	if count := testutil.CollectAndCount(ProviderLatency); count == 0 {
		t.Error("ProviderLatency has no observations after ObserveProviderBatch")
	}
}
