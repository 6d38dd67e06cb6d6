package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_NoHostKeepsNoop(t *testing.T) {
	tracer, closeFn, err := InitTracer(Config{})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()

	assert.IsType(t, opentracing.NoopTracer{}, tracer)
}

func TestInitTracer_Jaeger(t *testing.T) {
	old := opentracing.GlobalTracer()
	defer opentracing.SetGlobalTracer(old)

	tracer, closeFn, err := InitTracer(Config{Host: "127.0.0.1", Port: 6831})
	require.NoError(t, err)
	defer closeFn()

	assert.Same(t, tracer, opentracing.GlobalTracer())
}
