package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/jsgraph/internal/testutil"
)

// newTestHook returns an in-memory hook with sequential ids and a step clock.
func newTestHook() *MemHook {
	return NewMemHook(
		WithIDGenerator(testutil.NewSequentialIDs()),
		WithClock(testutil.NewStepClock().Now),
	)
}

func mustNode(t *testing.T, h Hook, opts ...Option) *Node {
	t.Helper()
	n, err := NewNode(context.Background(), h, opts...)
	require.NoError(t, err)
	return n
}

func mustAttach(t *testing.T, from, to *Node) *Edge {
	t.Helper()
	e, err := from.AttachOutbound(context.Background(), to)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}
