package graph

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func lineGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(
		[]Node{{ID: "A", Population: 10}, {ID: "B", Population: 10}, {ID: "C", Population: 10}, {ID: "D", Population: 10}},
		[]Edge{{From: "A", To: "B"}, {From: "B", To: "C"}, {From: "C", To: "D"}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		edges   []Edge
		wantErr error
	}{
		{
			name:    "empty graph",
			wantErr: ErrNoNodes,
		},
		{
			name:    "empty node ID",
			nodes:   []Node{{ID: ""}},
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "duplicate node",
			nodes:   []Node{{ID: "A"}, {ID: "A"}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "negative population",
			nodes:   []Node{{ID: "A", Population: -1}},
			wantErr: ErrNegativePopulation,
		},
		{
			name:    "unknown endpoint",
			nodes:   []Node{{ID: "A"}},
			edges:   []Edge{{From: "A", To: "X"}},
			wantErr: ErrUnknownEndpoint,
		},
		{
			name:    "self loop",
			nodes:   []Node{{ID: "A"}},
			edges:   []Edge{{From: "A", To: "A"}},
			wantErr: ErrSelfLoopEdge,
		},
		{
			name:  "valid",
			nodes: []Node{{ID: "A", Population: 5}, {ID: "B", Population: 7}},
			edges: []Edge{{From: "A", To: "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.nodes, tt.edges)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGraphAccessors(t *testing.T) {
	g := lineGraph(t)

	if got := g.NodeCount(); got != 4 {
		t.Errorf("NodeCount() = %d, want 4", got)
	}
	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3", got)
	}
	if got := g.TotalPopulation(); got != 40 {
		t.Errorf("TotalPopulation() = %v, want 40", got)
	}
	if pop, ok := g.Population("B"); !ok || pop != 10 {
		t.Errorf("Population(B) = %v, %v, want 10, true", pop, ok)
	}
	if _, ok := g.Population("X"); ok {
		t.Error("Population(X) ok = true, want false")
	}
	if !g.HasNode("C") || g.HasNode("Z") {
		t.Error("HasNode gave wrong answers")
	}

	neighbors := g.Neighbors("B")
	slices.Sort(neighbors)
	if !slices.Equal(neighbors, []string{"A", "C"}) {
		t.Errorf("Neighbors(B) = %v, want [A C]", neighbors)
	}
}

func TestIncidentEdges(t *testing.T) {
	g := lineGraph(t)

	tests := []struct {
		node string
		want []int
	}{
		{"A", []int{0}},
		{"B", []int{0, 1}},
		{"C", []int{1, 2}},
		{"D", []int{2}},
	}

	for _, tt := range tests {
		got := g.IncidentEdges(tt.node)
		if !slices.Equal(got, tt.want) {
			t.Errorf("IncidentEdges(%s) = %v, want %v", tt.node, got, tt.want)
		}
	}
}

func TestEdgeOrderPreserved(t *testing.T) {
	g := lineGraph(t)

	want := []Edge{{From: "A", To: "B"}, {From: "B", To: "C"}, {From: "C", To: "D"}}
	for i, e := range want {
		if g.Edge(i) != e {
			t.Errorf("Edge(%d) = %v, want %v", i, g.Edge(i), e)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	g := lineGraph(t)

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !slices.Equal(got.Nodes(), g.Nodes()) {
		t.Errorf("round trip nodes = %v, want %v", got.Nodes(), g.Nodes())
	}
	if !slices.Equal(got.Edges(), g.Edges()) {
		t.Errorf("round trip edges = %v, want %v", got.Edges(), g.Edges())
	}
}

func TestReadRejectsInvalid(t *testing.T) {
	// Structurally valid JSON, semantically invalid graph.
	doc := []byte(`{"nodes":[{"id":"A"}],"edges":[{"from":"A","to":"missing"}]}`)
	if _, err := Read(bytes.NewReader(doc)); !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("Read() error = %v, want ErrUnknownEndpoint", err)
	}
}
