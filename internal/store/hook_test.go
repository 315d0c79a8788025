package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/schema"
	"github.com/roach88/jsgraph/internal/testutil"
	"github.com/roach88/jsgraph/internal/wire"
)

// TestPersistedHook_SurvivesReopen builds a graph, commits it, reopens the
// database and checks the graph reads back the same.
func TestPersistedHook_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")

	s, err := Open(path)
	require.NoError(t, err)
	h := graph.NewPersistedHook(s, "alice",
		graph.WithIDGenerator(testutil.NewSequentialIDs()),
		graph.WithClock(testutil.NewStepClock().Now),
		graph.WithValidator(schema.Validate),
	)

	city, err := graph.NewNode(ctx, h, graph.WithName("city"), graph.WithContext(wire.Record{"pop": wire.Int(9000)}))
	require.NoError(t, err)
	street, err := graph.NewNode(ctx, h, graph.WithName("street"))
	require.NoError(t, err)
	_, err = city.AttachOutbound(ctx, street)
	require.NoError(t, err)
	region, err := graph.NewNode(ctx, h, graph.WithName("region"), graph.WithDimension(1))
	require.NoError(t, err)
	require.NoError(t, city.MakeMemberOf(ctx, region))
	greet, err := graph.NewAction(ctx, h, graph.WithName("greet"), graph.WithValue(wire.String("hi")))
	require.NoError(t, err)
	require.NoError(t, city.EntryActionIDs.AddObj(ctx, greet))

	require.NoError(t, h.Commit(ctx))
	want, err := city.ToWire(ctx, 1, true)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	h2 := graph.NewPersistedHook(s2, "alice", graph.WithValidator(schema.Validate))
	defer h2.Close()

	loaded, err := h2.GetObj(ctx, city.ID())
	require.NoError(t, err)
	got, err := loaded.Base().ToWire(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	node := loaded.(*graph.Node)
	owners, err := node.OwnerNodes(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "region", owners[0].Name)
	assert.True(t, node.IsMemberOf(owners[0]))

	nodes, err := h2.ListByType(ctx, graph.TypeNode)
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestPersistedHook_DestroyCommitsDeletes(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	h := graph.NewPersistedHook(s, "alice")

	a, err := graph.NewNode(ctx, h)
	require.NoError(t, err)
	b, err := graph.NewNode(ctx, h)
	require.NoError(t, err)
	e, err := a.AttachOutbound(ctx, b)
	require.NoError(t, err)
	require.NoError(t, h.Commit(ctx))

	require.NoError(t, b.Destroy(ctx))
	require.NoError(t, h.Commit(ctx))

	n, err := s.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.Load(ctx, e.ID())
	assert.True(t, graph.IsNotFound(err))

	// a was re-saved without the edge.
	fresh := graph.NewPersistedHook(s, "alice")
	reloaded, err := fresh.GetObj(ctx, a.ID())
	require.NoError(t, err)
	assert.Zero(t, reloaded.(*graph.Node).OutboundEdgeIDs.Len())
}

func TestPersistedHook_DeleteUserCascade(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	alice := graph.NewPersistedHook(s, "alice")
	bob := graph.NewPersistedHook(s, "bob")

	for range 3 {
		_, err := graph.NewNode(ctx, alice)
		require.NoError(t, err)
	}
	_, err := graph.NewNode(ctx, bob)
	require.NoError(t, err)
	require.NoError(t, alice.Commit(ctx))
	require.NoError(t, bob.Commit(ctx))

	n, err := alice.DeleteUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	left, err := bob.ListByUser(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestPersistedHook_CrossUserAttachKeepsOwnership(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	alice := graph.NewPersistedHook(s, "alice")
	bob := graph.NewPersistedHook(s, "bob")

	home, err := graph.NewNode(ctx, alice, graph.WithName("home"))
	require.NoError(t, err)
	require.NoError(t, alice.Commit(ctx))

	obj, err := bob.GetObj(ctx, home.ID())
	require.NoError(t, err)
	visitor, err := graph.NewNode(ctx, bob, graph.WithName("visitor"))
	require.NoError(t, err)
	_, err = visitor.AttachOutbound(ctx, obj.(*graph.Node))
	require.NoError(t, err)
	require.NoError(t, bob.Commit(ctx))

	row, err := s.Load(ctx, home.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice", row.User)
	rows, err := alice.ListByUser(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	n, err := alice.DeleteUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.Load(ctx, home.ID())
	assert.True(t, graph.IsNotFound(err))
}
