package progrock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/minic/internal/adapters/telemetry/progrock"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_RecordAndClose(t *testing.T) {
	recorder := progrock.New()

	_, v := recorder.Record(context.Background(), "src/main.mini")
	require.NotNil(t, v)

	v.Log("compiling")
	v.Cached()
	v.Complete(nil)

	assert.NoError(t, recorder.Close())
}
