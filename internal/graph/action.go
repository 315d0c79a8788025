package graph

import (
	"context"

	"github.com/roach88/jsgraph/internal/wire"
)

// KeyValue is the record key of an action's value.
const KeyValue = "value"

// Action is a named value attached to a node's entry or exit action lists.
type Action struct {
	Element

	Value wire.Value
}

func newAction(h Hook, s *settings) *Action {
	a := &Action{Value: s.value}
	if a.Value == nil {
		a.Value = wire.Null{}
	}
	a.init(h, TypeAction, a, s)
	return a
}

// NewAction creates an action and saves it unless WithoutSave is given.
func NewAction(ctx context.Context, h Hook, opts ...Option) (*Action, error) {
	s, err := newSettings(h, opts)
	if err != nil {
		return nil, err
	}
	a := newAction(h, s)
	if err := saveUnlessSuppressed(ctx, a, s); err != nil {
		return nil, err
	}
	return a, nil
}

// Fields lists the action's serialized fields.
func (a *Action) Fields() []Field {
	return []Field{{
		Name: KeyValue,
		Get: func() wire.Value {
			if a.Value == nil {
				return wire.Null{}
			}
			return a.Value
		},
		Set: func(v wire.Value) error {
			a.Value = v
			return nil
		},
	}}
}
