package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/testutil"
	"github.com/roach88/jsgraph/internal/wire"
)

func sampleRecords(t *testing.T) map[graph.EntityType]wire.Record {
	t.Helper()
	ctx := context.Background()
	h := graph.NewMemHook(
		graph.WithIDGenerator(testutil.NewSequentialIDs()),
		graph.WithClock(testutil.NewStepClock().Now),
	)

	el, err := graph.NewElement(ctx, h, graph.WithOwner(testutil.SeqID(40)))
	require.NoError(t, err)
	a, err := graph.NewNode(ctx, h, graph.WithContext(wire.Record{"k": wire.List{wire.Int(1)}}))
	require.NoError(t, err)
	b, err := graph.NewNode(ctx, h)
	require.NoError(t, err)
	e, err := a.AttachOutbound(ctx, b)
	require.NoError(t, err)
	act, err := graph.NewAction(ctx, h, graph.WithValue(wire.Record{"x": wire.Null{}}))
	require.NoError(t, err)

	out := make(map[graph.EntityType]wire.Record)
	for _, ent := range []graph.Entity{el, a, e, act} {
		rec, err := ent.Base().Serialize(ctx, 0, true)
		require.NoError(t, err)
		out[ent.Type()] = rec
	}
	return out
}

func TestValidate_AcceptsSerializedRecords(t *testing.T) {
	for typ, rec := range sampleRecords(t) {
		t.Run(string(typ), func(t *testing.T) {
			assert.NoError(t, Validate(rec))
		})
	}
}

func TestValidate_AcceptsExpandedCollections(t *testing.T) {
	rec := sampleRecords(t)[graph.TypeNode]
	rec[graph.KeyOutboundEdgeIDs] = wire.List{wire.Record{
		"id":   wire.String(testutil.SeqID(7).String()),
		"name": wire.String("basic"),
	}}
	assert.NoError(t, Validate(rec))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		typ    graph.EntityType
		mutate func(wire.Record)
		path   string
	}{
		{
			name:   "missing name",
			typ:    graph.TypeNode,
			mutate: func(r wire.Record) { delete(r, graph.KeyName) },
			path:   "name",
		},
		{
			name:   "bad id",
			typ:    graph.TypeElement,
			mutate: func(r wire.Record) { r[graph.KeyID] = wire.String("not-an-id") },
			path:   "id",
		},
		{
			name:   "dimension not int",
			typ:    graph.TypeNode,
			mutate: func(r wire.Record) { r[graph.KeyDimension] = wire.String("1") },
			path:   "dimension",
		},
		{
			name:   "bad id in collection",
			typ:    graph.TypeNode,
			mutate: func(r wire.Record) { r[graph.KeyMemberNodeIDs] = wire.List{wire.String("x")} },
		},
		{
			name:   "unknown field",
			typ:    graph.TypeEdge,
			mutate: func(r wire.Record) { r["weight"] = wire.Int(3) },
		},
		{
			name:   "context not a record",
			typ:    graph.TypeAction,
			mutate: func(r wire.Record) { r[graph.KeyContext] = wire.String("x") },
			path:   "context",
		},
		{
			name:   "malformed timestamp",
			typ:    graph.TypeAction,
			mutate: func(r wire.Record) { r[graph.KeyTimestamp] = wire.String("yesterday") },
			path:   "timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecords(t)[tt.typ]
			tt.mutate(rec)

			err := Validate(rec)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, string(tt.typ), ve.Type)
			if tt.path != "" {
				assert.Contains(t, ve.Path, tt.path)
			}
		})
	}
}

func TestValidate_UnknownType(t *testing.T) {
	err := Validate(wire.Record{graph.KeyEntityType: wire.String("walker")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, graph.KeyEntityType, ve.Path)

	assert.Error(t, Validate(wire.Record{}))
}

func TestValidator_New(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	rec := sampleRecords(t)[graph.TypeEdge]
	assert.NoError(t, v.Validate(rec))
	assert.Contains(t, Source(), "#Edge")
}

func TestValidate_GuardsPersistedHookLoads(t *testing.T) {
	ctx := context.Background()
	rec := sampleRecords(t)[graph.TypeNode]
	delete(rec, graph.KeyKind)
	body, err := wire.Marshal(rec)
	require.NoError(t, err)
	id := testutil.SeqID(2)

	backend := &oneRow{row: graph.Row{ID: id, User: "u", Type: graph.TypeNode, Body: body}}
	h := graph.NewPersistedHook(backend, "u", graph.WithValidator(Validate))

	_, err = h.GetObj(ctx, id)
	require.Error(t, err)
	assert.True(t, graph.IsCorruptState(err))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

// oneRow is a read-only backend holding a single row.
type oneRow struct {
	row graph.Row
}

func (b *oneRow) Load(_ context.Context, id jid.ID) (graph.Row, error) {
	if id != b.row.ID {
		return graph.Row{}, graph.NewNotFound(id)
	}
	return b.row, nil
}

func (b *oneRow) Apply(context.Context, graph.Batch) error { return nil }

func (b *oneRow) ListByUser(context.Context, string) ([]graph.Row, error) {
	return []graph.Row{b.row}, nil
}

func (b *oneRow) ListByType(context.Context, string, graph.EntityType) ([]graph.Row, error) {
	return []graph.Row{b.row}, nil
}

func (b *oneRow) DeleteUser(context.Context, string) (int, error) { return 0, nil }

func (b *oneRow) Close() error { return nil }
