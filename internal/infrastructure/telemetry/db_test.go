package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/kegledger/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestInstrumentDatabase_Disabled(t *testing.T) {
	repos := testutil.NewSQLiteRepos(t)

	require.NoError(t, InstrumentDatabase(repos.DB.DB, DBConfig{}, nil))

	assert.Nil(t, repos.DB.DB.Callback().Create().Get("otel:before:create"))
	assert.Nil(t, repos.DB.DB.Callback().Create().Get("telemetry:after_create"))
}

func TestInstrumentDatabase_SpansAndSlowQueries(t *testing.T) {
	repos := testutil.NewSQLiteRepos(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	reader, provider := newManualMeter(t)

	err := InstrumentDatabase(repos.DB.DB, DBConfig{
		Enabled:            true,
		DBSystem:           "sqlite",
		SlowQueryThreshold: time.Nanosecond,
		TracerProvider:     tp,
		Meter:              provider.Meter("test"),
	}, zap.NewNop())
	require.NoError(t, err)

	client := repos.SeedClient(t, "Bar du Port")
	_, err = repos.Client.FindByID(context.Background(), client.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	slow := 0
	for _, span := range spans {
		for _, kv := range span.Attributes() {
			if kv.Key == "db.slow_query" && kv.Value.AsBool() {
				slow++
			}
		}
	}
	assert.Positive(t, slow, "statements slower than 1ns are marked on their span")

	counts := sumBy(t, collect(t, reader), "keg_db_slow_queries_total", "table")
	assert.Positive(t, counts["clients"])
}
