package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestStartServiceSpan_EndSpan(t *testing.T) {
	ctx, span := StartServiceSpan(context.Background(), "ArticleService", "Create")
	require.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestMetricsRegistered(t *testing.T) {
	RecordAuthAttempt("login", errors.New("bad credentials"))
	RecordAuthAttempt("register", nil)
	TrackQuery("select", "articles")()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["mdd_auth_attempts_total"])
	assert.True(t, names["mdd_database_query_latency_seconds"])
}
