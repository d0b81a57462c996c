package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(aiGenerationMetric.WithLabelValues("quota"))
	ObserveGeneration("quota", 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(aiGenerationMetric.WithLabelValues("quota")))

	before = testutil.ToFloat64(reactionRetryMetric)
	ReactionRetried()
	assert.Equal(t, before+1, testutil.ToFloat64(reactionRetryMetric))

	gauge := testutil.ToFloat64(wsConnectionsMetric)
	WSConnected()
	WSConnected()
	WSDisconnected()
	assert.Equal(t, gauge+1, testutil.ToFloat64(wsConnectionsMetric))
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 429: "4xx", 502: "5xx"}
	for status, want := range tests {
		assert.Equal(t, want, statusClass(status), "status %d", status)
	}
}
