package shared_test

import (
	"context"
	"testing"

	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, shared.GetTraceID(context.Background()))

	ctx := shared.SetTraceID(context.Background())
	traceID := shared.GetTraceID(ctx)
	assert.Len(t, traceID, 32)
	assert.True(t, shared.ValidTraceID(traceID))

	other := shared.GetTraceID(shared.SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

func TestValidTraceID(t *testing.T) {
	t.Parallel()

	assert.True(t, shared.ValidTraceID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.False(t, shared.ValidTraceID(""))
	assert.False(t, shared.ValidTraceID("short"))
	assert.False(t, shared.ValidTraceID("has spaces in it"))
	assert.False(t, shared.ValidTraceID("line\nbreak-injection"))
}
