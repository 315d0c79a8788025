package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/store"
	"github.com/roach88/jsgraph/internal/testutil"
	"github.com/roach88/jsgraph/internal/wire"
)

func newHook() *graph.MemHook {
	return graph.NewMemHook(
		graph.WithIDGenerator(testutil.NewSequentialIDs()),
		graph.WithClock(testutil.NewStepClock().Now),
	)
}

func TestLoad_Town(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "town.yaml"))
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "town", doc.Nodes[0].Key)
	assert.Equal(t, 1, doc.Nodes[0].Dimension)
	assert.Len(t, doc.Edges, 2)
	assert.Len(t, doc.Members, 2)
	require.Len(t, doc.Nodes[1].EntryActions, 1)
	assert.Equal(t, "greet", doc.Nodes[1].EntryActions[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fixture file")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "nodes: []\n", "nodes list is required"},
		{"unknown field", "nodes:\n  - key: a\n    colour: red\n", "failed to parse YAML"},
		{"missing key", "nodes:\n  - name: a\n", "key is required"},
		{"duplicate key", "nodes:\n  - key: a\n  - key: a\n", "duplicate key"},
		{"negative dimension", "nodes:\n  - key: a\n    dimension: -1\n", "dimension must be >= 0"},
		{"edge from unknown", "nodes:\n  - key: a\nedges:\n  - {from: x, to: a}\n", `edges[0]: unknown node "x"`},
		{"edge to unknown", "nodes:\n  - key: a\nedges:\n  - {from: a, to: y}\n", `edges[0]: unknown node "y"`},
		{"member unknown", "nodes:\n  - key: a\nmembers:\n  - {member: a, owner: z}\n", `members[0]: unknown node "z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild_Town(t *testing.T) {
	ctx := context.Background()
	doc, err := Load(filepath.Join("testdata", "town.yaml"))
	require.NoError(t, err)

	h := newHook()
	nodes, err := Build(ctx, h, doc)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	town, cafe, tram := nodes["town"], nodes["cafe"], nodes["tram"]
	assert.Equal(t, "Lisbon", town.Name)
	assert.Equal(t, "city", town.Kind)
	assert.Equal(t, 1, town.Dimension)
	assert.True(t, wire.Equal(wire.Int(545000), town.Context["population"]))
	assert.True(t, wire.Equal(wire.Bool(true), town.Context["coastal"]))

	ok, err := cafe.IsAttachedOut(ctx, tram)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tram.IsAttachedOut(ctx, cafe)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := cafe.OutboundEdges(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "walks_to", out[0].Name)

	back, err := tram.OutboundEdges(ctx)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, graph.DefaultName, back[0].Name)

	assert.True(t, cafe.IsMemberOf(town))
	assert.True(t, tram.IsMemberOf(town))
	members, err := town.MemberNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*graph.Node{cafe, tram}, members)

	entry, err := cafe.EntryActionIDs.GetObjByName(ctx, "greet")
	require.NoError(t, err)
	greet := entry.(*graph.Action)
	assert.Equal(t, wire.String("bom dia"), greet.Value)
	assert.Equal(t, cafe.ID(), greet.OwnerID())

	exit, err := cafe.ExitActionIDs.GetObjByName(ctx, "tally")
	require.NoError(t, err)
	assert.True(t, wire.Equal(wire.List{wire.Int(1), wire.Int(2), wire.Int(3)}, exit.(*graph.Action).Value))

	// 3 nodes, 2 edges, 2 actions
	assert.Equal(t, 7, h.Len())
}

func TestBuild_DefaultsWhenUnnamed(t *testing.T) {
	doc, err := Parse([]byte("nodes:\n  - key: a\n"))
	require.NoError(t, err)

	nodes, err := Build(context.Background(), newHook(), doc)
	require.NoError(t, err)
	assert.Equal(t, graph.DefaultName, nodes["a"].Name)
	assert.Equal(t, graph.DefaultKind, nodes["a"].Kind)
	assert.Equal(t, 0, nodes["a"].Dimension)
}

func TestBuild_RejectsDimensionMismatch(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "edge across dimensions",
			yaml: "nodes:\n  - key: a\n  - key: b\n    dimension: 1\nedges:\n  - {from: a, to: b}\n",
			want: "cannot attach",
		},
		{
			name: "member of same dimension",
			yaml: "nodes:\n  - key: a\n  - key: b\nmembers:\n  - {member: a, owner: b}\n",
			want: "cannot contain",
		},
		{
			name: "owner two dimensions up",
			yaml: "nodes:\n  - key: a\n  - key: b\n    dimension: 2\nmembers:\n  - {member: a, owner: b}\n",
			want: "cannot contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = Build(context.Background(), newHook(), doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild_RejectsFloatContext(t *testing.T) {
	doc, err := Parse([]byte("nodes:\n  - key: a\n    context: {ratio: 0.5}\n"))
	require.NoError(t, err)

	_, err = Build(context.Background(), newHook(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `node "a": context`)
}

func TestBuild_PersistedHook(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - key: a\n  - key: b\nedges:\n  - {from: a, to: b}\n"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "f.db"))
	require.NoError(t, err)
	h := graph.NewPersistedHook(st, "tester",
		graph.WithIDGenerator(testutil.NewSequentialIDs()))
	defer h.Close()

	nodes, err := Build(ctx, h, doc)
	require.NoError(t, err)

	// a, b and the edge, none committed yet
	assert.Equal(t, 3, h.Pending())
	require.NoError(t, h.Commit(ctx))
	assert.Equal(t, 0, h.Pending())

	n, err := st.Count(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := nodes["a"].IsAttachedOut(ctx, nodes["b"])
	require.NoError(t, err)
	assert.True(t, ok)
}
