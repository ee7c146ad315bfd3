package kernellog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceGlobalsAndL(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ReplaceGlobals(Wrap(zap.New(core)))
	t.Cleanup(func() { ReplaceGlobals(Wrap(zap.NewNop())) })

	L().Info(context.Background(), "hello", WithNotebookID("nb-1"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := Wrap(zap.New(core)).With(WithCellID("c-1"))
	l.Warn(context.Background(), "careful")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "c-1", entries[0].ContextMap()["cell_id"])
}
