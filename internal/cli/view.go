package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/jsgraph/internal/graph"
)

// entityView is the summary printed for an entity.
type entityView struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Owner string `json:"owner,omitempty"`
}

func viewOf(e graph.Entity) entityView {
	b := e.Base()
	v := entityView{
		ID:   e.ID().String(),
		Type: string(e.Type()),
		Name: b.Name,
		Kind: b.Kind,
	}
	if owner := b.OwnerID(); !owner.IsNil() {
		v.Owner = owner.String()
	}
	return v
}

func (v entityView) String() string {
	return fmt.Sprintf("%s  %-7s %s (%s)", v.ID, v.Type, v.Name, v.Kind)
}

type entityList []entityView

func viewsOf(es []graph.Entity) entityList {
	out := make(entityList, 0, len(es))
	for _, e := range es {
		out = append(out, viewOf(e))
	}
	return out
}

func (l entityList) String() string {
	if len(l) == 0 {
		return "(none)"
	}
	lines := make([]string, len(l))
	for i, v := range l {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

// linkResult reports an attach, detach or membership change.
type linkResult struct {
	Op     string `json:"op"`
	From   string `json:"from"`
	To     string `json:"to"`
	EdgeID string `json:"edge_id,omitempty"`
}

func (r linkResult) String() string {
	s := fmt.Sprintf("%s %s -> %s", r.Op, r.From, r.To)
	if r.EdgeID != "" {
		s += " via " + r.EdgeID
	}
	return s
}
