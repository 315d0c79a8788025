package fixture

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/wire"
)

// Doc is a parsed fixture.
type Doc struct {
	Nodes   []NodeDecl   `yaml:"nodes"`
	Edges   []EdgeDecl   `yaml:"edges,omitempty"`
	Members []MemberDecl `yaml:"members,omitempty"`
}

// NodeDecl declares one node. Key is local to the fixture and never stored.
type NodeDecl struct {
	Key          string         `yaml:"key"`
	Name         string         `yaml:"name,omitempty"`
	Kind         string         `yaml:"kind,omitempty"`
	Dimension    int            `yaml:"dimension,omitempty"`
	Context      map[string]any `yaml:"context,omitempty"`
	EntryActions []ActionDecl   `yaml:"entry_actions,omitempty"`
	ExitActions  []ActionDecl   `yaml:"exit_actions,omitempty"`
}

// ActionDecl declares an entry or exit action of a node.
type ActionDecl struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value,omitempty"`
}

// EdgeDecl declares a directed edge between two declared nodes.
type EdgeDecl struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Name string `yaml:"name,omitempty"`
}

// MemberDecl declares that Member belongs to Owner.
type MemberDecl struct {
	Member string `yaml:"member"`
	Owner  string `yaml:"owner"`
}

// Load reads and parses a fixture file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or references undeclared keys.
func Load(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture from YAML bytes.
func Parse(data []byte) (*Doc, error) {
	var doc Doc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateDoc(&doc); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &doc, nil
}

func validateDoc(d *Doc) error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("nodes list is required and must be non-empty")
	}

	keys := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.Key == "" {
			return fmt.Errorf("nodes[%d]: key is required", i)
		}
		if keys[n.Key] {
			return fmt.Errorf("nodes[%d]: duplicate key %q", i, n.Key)
		}
		if n.Dimension < 0 {
			return fmt.Errorf("nodes[%d]: dimension must be >= 0", i)
		}
		keys[n.Key] = true
	}

	for i, e := range d.Edges {
		if !keys[e.From] {
			return fmt.Errorf("edges[%d]: unknown node %q", i, e.From)
		}
		if !keys[e.To] {
			return fmt.Errorf("edges[%d]: unknown node %q", i, e.To)
		}
	}
	for i, m := range d.Members {
		if !keys[m.Member] {
			return fmt.Errorf("members[%d]: unknown node %q", i, m.Member)
		}
		if !keys[m.Owner] {
			return fmt.Errorf("members[%d]: unknown node %q", i, m.Owner)
		}
	}
	return nil
}

// Build creates the fixture's entities on h and returns the nodes by key.
// Entities are saved through h but not committed. Edges and memberships the
// dimension rules reject are errors here, unlike the graph API which drops
// them silently.
func Build(ctx context.Context, h graph.Hook, d *Doc) (map[string]*graph.Node, error) {
	nodes := make(map[string]*graph.Node, len(d.Nodes))
	for _, decl := range d.Nodes {
		n, err := buildNode(ctx, h, decl)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", decl.Key, err)
		}
		nodes[decl.Key] = n
	}

	for i, decl := range d.Edges {
		from, to := nodes[decl.From], nodes[decl.To]
		if from == nil || to == nil {
			return nil, fmt.Errorf("edges[%d]: unknown node", i)
		}
		if !from.CanAttach(to) {
			return nil, fmt.Errorf("edges[%d]: %s (dimension %d) cannot attach to %s (dimension %d)",
				i, decl.From, from.Dimension, decl.To, to.Dimension)
		}
		if err := buildEdge(ctx, h, from, to, decl.Name); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	for i, decl := range d.Members {
		member, owner := nodes[decl.Member], nodes[decl.Owner]
		if member == nil || owner == nil {
			return nil, fmt.Errorf("members[%d]: unknown node", i)
		}
		if !owner.CanContain(member) {
			return nil, fmt.Errorf("members[%d]: %s (dimension %d) cannot contain %s (dimension %d)",
				i, decl.Owner, owner.Dimension, decl.Member, member.Dimension)
		}
		if err := member.MakeMemberOf(ctx, owner); err != nil {
			return nil, fmt.Errorf("members[%d]: %w", i, err)
		}
	}

	slog.Debug("fixture built",
		"nodes", len(d.Nodes), "edges", len(d.Edges), "members", len(d.Members))
	return nodes, nil
}

func buildNode(ctx context.Context, h graph.Hook, decl NodeDecl) (*graph.Node, error) {
	opts := []graph.Option{graph.WithDimension(decl.Dimension)}
	if decl.Name != "" {
		opts = append(opts, graph.WithName(decl.Name))
	}
	if decl.Kind != "" {
		opts = append(opts, graph.WithKind(decl.Kind))
	}
	if decl.Context != nil {
		v, err := wire.FromGo(decl.Context)
		if err != nil {
			return nil, fmt.Errorf("context: %w", err)
		}
		opts = append(opts, graph.WithContext(v.(wire.Record)))
	}

	n, err := graph.NewNode(ctx, h, opts...)
	if err != nil {
		return nil, err
	}
	if err := addActions(ctx, h, n, n.EntryActionIDs, decl.EntryActions); err != nil {
		return nil, fmt.Errorf("entry_actions: %w", err)
	}
	if err := addActions(ctx, h, n, n.ExitActionIDs, decl.ExitActions); err != nil {
		return nil, fmt.Errorf("exit_actions: %w", err)
	}
	return n, nil
}

func addActions(ctx context.Context, h graph.Hook, n *graph.Node, l *graph.IDList, decls []ActionDecl) error {
	for i, decl := range decls {
		v, err := wire.FromGo(decl.Value)
		if err != nil {
			return fmt.Errorf("[%d] value: %w", i, err)
		}
		opts := []graph.Option{graph.WithValue(v), graph.WithOwner(n.ID())}
		if decl.Name != "" {
			opts = append(opts, graph.WithName(decl.Name))
		}
		a, err := graph.NewAction(ctx, h, opts...)
		if err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
		if err := l.AddObj(ctx, a); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

func buildEdge(ctx context.Context, h graph.Hook, from, to *graph.Node, name string) error {
	if name == "" {
		_, err := from.AttachOutbound(ctx, to)
		return err
	}
	e, err := graph.NewEdge(ctx, h, from, to, graph.WithName(name), graph.WithoutSave())
	if err != nil {
		return err
	}
	return from.AttachOutboundEdge(ctx, e)
}
