package partition

import (
	"errors"
	"maps"
	"path/filepath"
	"testing"

	"github.com/flipchain/flipchain/pkg/graph"
)

// grid33 builds a 3x3 grid graph with unit populations:
//
//	n00 n01 n02
//	n10 n11 n12
//	n20 n21 n22
func grid33(t *testing.T) *graph.Graph {
	t.Helper()
	ids := []string{"n00", "n01", "n02", "n10", "n11", "n12", "n20", "n21", "n22"}
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = graph.Node{ID: id, Population: 1}
	}
	edges := []graph.Edge{
		{From: "n00", To: "n01"}, {From: "n01", To: "n02"},
		{From: "n10", To: "n11"}, {From: "n11", To: "n12"},
		{From: "n20", To: "n21"}, {From: "n21", To: "n22"},
		{From: "n00", To: "n10"}, {From: "n10", To: "n20"},
		{From: "n01", To: "n11"}, {From: "n11", To: "n21"},
		{From: "n02", To: "n12"}, {From: "n12", To: "n22"},
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatalf("graph.New() error = %v", err)
	}
	return g
}

// columns assigns each grid column to its own district.
func columns() map[string]string {
	return map[string]string{
		"n00": "D1", "n10": "D1", "n20": "D1",
		"n01": "D2", "n11": "D2", "n21": "D2",
		"n02": "D3", "n12": "D3", "n22": "D3",
	}
}

// makeProposal recomputes the speculative district state for moving node to
// district dst, mirroring what the flip proposer produces.
func makeProposal(t *testing.T, g *graph.Graph, p *Partition, node, dst string) FlipProposal {
	t.Helper()
	src, ok := p.District(node)
	if !ok {
		t.Fatalf("node %q not assigned", node)
	}
	pop, _ := g.Population(node)

	fromNodes := maps.Clone(p.NodesIn(src))
	delete(fromNodes, node)
	toNodes := maps.Clone(p.NodesIn(dst))
	toNodes[node] = struct{}{}

	return FlipProposal{
		Node:      node,
		From:      src,
		To:        dst,
		FromPop:   p.DistrictPopulation(src) - pop,
		ToPop:     p.DistrictPopulation(dst) + pop,
		FromNodes: fromNodes,
		ToNodes:   toNodes,
	}
}

// bruteForceCut recomputes cut-edge state from scratch.
func bruteForceCut(g *graph.Graph, p *Partition) ([]bool, int) {
	flags := make([]bool, g.EdgeCount())
	count := 0
	for i, e := range g.Edges() {
		df, _ := p.District(e.From)
		dt, _ := p.District(e.To)
		if df != dt {
			flags[i] = true
			count++
		}
	}
	return flags, count
}

func checkInvariants(t *testing.T, g *graph.Graph, p *Partition) {
	t.Helper()

	// Population conservation.
	var sum float64
	for _, d := range p.Districts() {
		sum += p.DistrictPopulation(d)
	}
	if sum != g.TotalPopulation() {
		t.Errorf("district populations sum to %v, want %v", sum, g.TotalPopulation())
	}

	// Cut bookkeeping matches a full rescan.
	flags, count := bruteForceCut(g, p)
	if p.CutEdgeCount() != count {
		t.Errorf("CutEdgeCount() = %d, brute force = %d", p.CutEdgeCount(), count)
	}
	for i, want := range flags {
		if p.IsCutEdge(i) != want {
			t.Errorf("IsCutEdge(%d) = %v, brute force = %v", i, p.IsCutEdge(i), want)
		}
	}

	// District node sets are disjoint and cover the node set.
	seen := make(map[string]string)
	for _, d := range p.Districts() {
		for n := range p.NodesIn(d) {
			if prev, dup := seen[n]; dup {
				t.Errorf("node %q in districts %q and %q", n, prev, d)
			}
			seen[n] = d
		}
	}
	if len(seen) != g.NodeCount() {
		t.Errorf("district node sets cover %d nodes, want %d", len(seen), g.NodeCount())
	}
}

func TestNewDerivesAggregates(t *testing.T) {
	g := grid33(t)
	p, err := New(g, columns())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := p.Districts(); len(got) != 3 {
		t.Fatalf("Districts() = %v, want 3 districts", got)
	}
	for _, d := range p.Districts() {
		if pop := p.DistrictPopulation(d); pop != 3 {
			t.Errorf("DistrictPopulation(%s) = %v, want 3", d, pop)
		}
	}
	// Six horizontal edges cross column boundaries.
	if got := p.CutEdgeCount(); got != 6 {
		t.Errorf("CutEdgeCount() = %d, want 6", got)
	}
	checkInvariants(t, g, p)
}

func TestNewValidation(t *testing.T) {
	g := grid33(t)

	tests := []struct {
		name    string
		mutate  func(a map[string]string)
		wantErr error
	}{
		{
			name:    "missing node",
			mutate:  func(a map[string]string) { delete(a, "n11") },
			wantErr: ErrUnassignedNode,
		},
		{
			name:    "unknown node",
			mutate:  func(a map[string]string) { a["ghost"] = "D1" },
			wantErr: ErrUnknownNode,
		},
		{
			name:    "empty district ID",
			mutate:  func(a map[string]string) { a["n11"] = "" },
			wantErr: ErrInvalidDistrict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := columns()
			tt.mutate(a)
			if _, err := New(g, a); !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyMatchesBruteForce(t *testing.T) {
	g := grid33(t)
	p, err := New(g, columns())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Walk a fixed flip sequence and re-check all invariants after each commit.
	moves := []struct{ node, to string }{
		{"n01", "D1"},
		{"n02", "D2"},
		{"n21", "D3"},
		{"n11", "D1"},
		{"n21", "D2"},
	}
	for _, m := range moves {
		prop := makeProposal(t, g, p, m.node, m.to)
		if err := p.Apply(g, prop, false); err != nil {
			t.Fatalf("Apply(%s→%s) error = %v", m.node, m.to, err)
		}
		checkInvariants(t, g, p)

		if d, _ := p.District(m.node); d != m.to {
			t.Errorf("after flip, District(%s) = %q, want %q", m.node, d, m.to)
		}
	}
}

func TestApplyGuards(t *testing.T) {
	g := grid33(t)
	p, _ := New(g, columns())

	t.Run("stale proposal", func(t *testing.T) {
		prop := makeProposal(t, g, p, "n01", "D1")
		prop.From = "D3" // node n01 is in D2
		if err := p.Apply(g, prop, false); !errors.Is(err, ErrStaleProposal) {
			t.Errorf("Apply() error = %v, want ErrStaleProposal", err)
		}
	})

	t.Run("empties origin district", func(t *testing.T) {
		prop := makeProposal(t, g, p, "n01", "D1")
		prop.FromNodes = map[string]struct{}{}
		if err := p.Apply(g, prop, false); !errors.Is(err, ErrEmptiesDistrict) {
			t.Errorf("Apply() error = %v, want ErrEmptiesDistrict", err)
		}
	})
}

func TestSnapshotAndRevert(t *testing.T) {
	g := grid33(t)
	p, _ := New(g, columns())
	before := p.Copy()

	prop := makeProposal(t, g, p, "n01", "D1")
	if err := p.Apply(g, prop, true); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if p.Parent() == nil {
		t.Fatal("Parent() = nil after snapshotting Apply")
	}
	if p.Parent().Parent() != nil {
		t.Error("snapshot's own parent link must be cleared")
	}
	if p.Equal(before) {
		t.Fatal("partition unchanged after Apply")
	}

	if err := p.Revert(); err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if !p.Equal(before) {
		t.Error("Revert() did not restore the pre-flip state field for field")
	}
	if p.Parent() != nil {
		t.Error("parent link must be cleared after Revert")
	}

	if err := p.Revert(); !errors.Is(err, ErrNoParent) {
		t.Errorf("second Revert() error = %v, want ErrNoParent", err)
	}
}

func TestApplyWithoutSnapshotLeavesNoParent(t *testing.T) {
	g := grid33(t)
	p, _ := New(g, columns())

	prop := makeProposal(t, g, p, "n01", "D1")
	if err := p.Apply(g, prop, false); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if p.Parent() != nil {
		t.Error("Parent() != nil after non-snapshotting Apply")
	}
}

func TestCopyIsIndependent(t *testing.T) {
	g := grid33(t)
	p, _ := New(g, columns())
	c := p.Copy()

	prop := makeProposal(t, g, p, "n01", "D1")
	if err := p.Apply(g, prop, false); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if d, _ := c.District("n01"); d != "D2" {
		t.Errorf("copy's District(n01) = %q, want D2", d)
	}
	if c.CutEdgeCount() != 6 {
		t.Errorf("copy's CutEdgeCount() = %d, want 6", c.CutEdgeCount())
	}
	checkInvariants(t, g, c)
}

func TestAssignmentFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignment.json")
	want := columns()

	if err := WriteAssignmentFile(want, path); err != nil {
		t.Fatalf("WriteAssignmentFile() error = %v", err)
	}
	got, err := ReadAssignmentFile(path)
	if err != nil {
		t.Fatalf("ReadAssignmentFile() error = %v", err)
	}
	if !maps.Equal(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}
